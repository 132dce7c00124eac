package shell

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
)

// ErrNoPreviousDirectory is returned by Chdir("-") before any successful
// directory change has recorded a previous directory.
var ErrNoPreviousDirectory = errors.New("cd: no previous directory")

// PreviousDirToken is the Chdir argument that toggles back to the previous
// working directory, like `cd -` in POSIX shells.
const PreviousDirToken = "-"

// DirState tracks the shell's working directory without touching the
// process-wide one. Children are pointed at the current directory through
// their spawn attributes, so multiple shells in one process don't fight over
// os.Chdir.
//
// History is a single slot: Chdir("-") swaps current and previous, and a
// second Chdir("-") swaps back. It is not a directory stack.
type DirState struct {
	current  string
	previous string
}

// NewDirState creates a DirState rooted at the process's working directory.
func NewDirState() (*DirState, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return &DirState{current: wd}, nil
}

// NewDirStateAt creates a DirState rooted at the given directory, which must
// exist.
func NewDirStateAt(dir string) (*DirState, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := checkIsDir(abs); err != nil {
		return nil, err
	}
	return &DirState{current: abs}, nil
}

// Getwd returns the current working directory, always absolute.
func (d *DirState) Getwd() string {
	return d.current
}

// Previous returns the previous working directory and whether one exists.
func (d *DirState) Previous() (string, bool) {
	return d.previous, d.previous != ""
}

// Chdir changes the current directory. Relative targets resolve against the
// current directory. The target PreviousDirToken swaps current and previous.
// On any failure the state is left unchanged.
func (d *DirState) Chdir(target string) error {
	if target == PreviousDirToken {
		if d.previous == "" {
			return ErrNoPreviousDirectory
		}
		d.current, d.previous = d.previous, d.current
		return nil
	}

	resolved := target
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(d.current, resolved)
	}
	resolved = filepath.Clean(resolved)

	if err := checkIsDir(resolved); err != nil {
		return err
	}

	d.previous = d.current
	d.current = resolved
	return nil
}

func checkIsDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &fs.PathError{Op: "chdir", Path: path, Err: syscall.ENOTDIR}
	}
	return nil
}
