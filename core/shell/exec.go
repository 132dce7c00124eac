package shell

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"syscall"
)

// Command is an argument vector: program name followed by arguments. The
// first element must be non-empty. Redirection-looking tokens are passed to
// the program as plain arguments; the runner implements no shell grammar.
type Command []string

// Stdio is the set of stream bindings handed to a spawned child.
type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Runner spawns external programs against a shell instance's environment
// table and directory state. It blocks until the child is reaped.
type Runner struct {
	env  *Environment
	dirs *DirState
}

// NewRunner creates a Runner. env and dirs are borrowed, not copied; the
// runner consults them at each spawn.
func NewRunner(env *Environment, dirs *DirState) *Runner {
	return &Runner{env: env, dirs: dirs}
}

// Run executes a single command to completion with the given stream
// bindings.
//
// The returned error is non-nil only for contract violations (empty command)
// and ErrResourceExhausted conditions. Everything else, including a program
// that could not be found (exit code 127) or launched, is reported through
// the Result.
func (r *Runner) Run(argv Command, stdio Stdio) (Result, error) {
	if len(argv) == 0 || argv[0] == "" {
		return Result{}, ErrEmptyCommand
	}

	cmd, err := r.prepare(argv, stdio)
	if err != nil {
		return launchFailure(argv[0], err), nil
	}

	if err := cmd.Start(); err != nil {
		if isResourceExhausted(err) {
			return Result{}, fmt.Errorf("%w: %v", ErrResourceExhausted, err)
		}
		return launchFailure(argv[0], err), nil
	}

	return waitResult(cmd, stdio.Err), nil
}

// prepare resolves argv[0] and builds the exec.Cmd without starting it.
func (r *Runner) prepare(argv Command, stdio Stdio) (*exec.Cmd, error) {
	path, err := LookPath(r.env, r.dirs.Getwd(), argv[0])
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(path)
	// Children see the name they were invoked by, not the resolved path.
	cmd.Args = append([]string(nil), argv...)
	// Snapshot: later Setenv calls never reach a running child.
	cmd.Env = r.env.Environ()
	cmd.Dir = r.dirs.Getwd()
	cmd.Stdin = stdio.In
	cmd.Stdout = stdio.Out
	cmd.Stderr = stdio.Err
	return cmd, nil
}

// waitResult reaps a started child and maps its termination status onto a
// Result. A signal death is reported as 128+signal.
func waitResult(cmd *exec.Cmd, errStream io.Writer) Result {
	err := cmd.Wait()
	if err == nil {
		return Result{ExitCode: ExitSuccess}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			code = exitSignalBase + int(ws.Signal())
		}
		return Result{ExitCode: code, ErrorText: capturedText(errStream)}
	}

	// Wait itself failed (e.g. an I/O error copying streams).
	return Result{ExitCode: ExitLaunchFailure, ErrorText: err.Error()}
}

// capturedText recovers error-stream content when, and only when, the caller
// bound a capturing writer (anything exposing Bytes, like *bytes.Buffer).
// The runner never scrapes diagnostics on the caller's behalf otherwise.
func capturedText(w io.Writer) string {
	type byteser interface {
		Bytes() []byte
	}
	if buf, ok := w.(byteser); ok {
		return strings.TrimSpace(string(buf.Bytes()))
	}
	return ""
}
