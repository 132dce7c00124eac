package shell

import (
	"errors"
	"strings"
	"syscall"
)

// Exit codes following common shell convention.
const (
	// ExitSuccess is the exit code of a successful run.
	ExitSuccess = 0
	// ExitLaunchFailure is the exit code reported when a program could not
	// be found or could not be launched.
	ExitLaunchFailure = 127
	// exitSignalBase is added to the signal number when a child is killed by
	// a signal.
	exitSignalBase = 128
)

// ErrEmptyCommand is returned when a command has no program name.
var ErrEmptyCommand = errors.New("empty command")

// ErrEmptyPipeline is returned when a pipeline has no stages.
var ErrEmptyPipeline = errors.New("empty pipeline")

// ErrResourceExhausted is returned when the OS could not allocate the
// resources needed to run a command, e.g. a pipe or a new process. It is
// distinct from any Result because no exit code meaningfully represents it;
// retry policy is the caller's.
var ErrResourceExhausted = errors.New("resource exhausted")

// Result is the outcome of one execute, pipeline, cd or setenv operation.
//
// ErrorText is set only when ExitCode is non-zero and diagnostic text was
// recoverable: the OS error for launch and directory failures, or whatever a
// launched child wrote to a captured error stream. A child that exits
// non-zero with an uncaptured stderr yields an empty ErrorText.
type Result struct {
	ExitCode  int
	ErrorText string
}

// Ok reports whether the operation succeeded.
func (r Result) Ok() bool {
	return r.ExitCode == ExitSuccess
}

// launchFailure builds the Result for a program that never started.
func launchFailure(name string, err error) Result {
	return Result{
		ExitCode:  ExitLaunchFailure,
		ErrorText: name + ": " + diagnostic(err),
	}
}

// diagnostic strips Go error wrapping down to the OS-level message, e.g.
// "stat /x/y: no such file or directory" -> "No such file or directory".
func diagnostic(err error) string {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		msg := errno.Error()
		return strings.ToUpper(msg[:1]) + msg[1:]
	}
	if errors.Is(err, ErrNotFound) {
		return "command not found"
	}
	return err.Error()
}

// isResourceExhausted reports whether err is an OS resource allocation
// failure rather than a property of the command itself.
func isResourceExhausted(err error) bool {
	for _, errno := range []syscall.Errno{
		syscall.EAGAIN, // fork limit
		syscall.ENOMEM,
		syscall.EMFILE, // per-process fd limit
		syscall.ENFILE, // system-wide fd limit
	} {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}
