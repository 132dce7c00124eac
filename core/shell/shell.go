// Package shell implements the execution backbone of the interactive shell:
// it runs external programs singly or chained into pipelines, tracks a
// working directory with single-slot previous-directory history, and owns a
// mutable environment table consulted by the shell and every spawned child.
//
// The package implements no shell grammar. Globbing, redirection operators,
// subshells and job control are out of scope; tokenization is the caller's
// job. It also never prints or logs: every failure comes back as a Result or
// an error for the caller to render.
package shell

import (
	"errors"
	"os"
)

// Environment variable names the shell keeps in sync with its directory
// state, for programs that consult them.
const (
	EnvPWD    = "PWD"
	EnvOldPWD = "OLDPWD"
	EnvHome   = "HOME"
	EnvPath   = "PATH"
)

// Shell is the top-level contract exposed to callers. Outer layers, such as
// the interactive loop or an assistant, consume Execute, ExecutePipeline,
// Cd, Getwd, Getenv and Setenv and never reach into the components directly.
//
// Operations are synchronous and blocking; a caller must not issue a second
// operation while one is outstanding on the same Shell.
type Shell struct {
	env    *Environment
	dirs   *DirState
	runner *Runner
	stdio  Stdio

	startDir string
	lastExit int
}

// Option configures a Shell during New.
type Option func(*Shell)

// WithStdio sets the default stream bindings used by Execute and
// ExecutePipeline. The default is the process's own stdio.
func WithStdio(stdio Stdio) Option {
	return func(s *Shell) { s.stdio = stdio }
}

// WithEnviron seeds the environment table from the given "key=value" list
// instead of the process environment.
func WithEnviron(environ []string) Option {
	return func(s *Shell) { s.env = NewEnvironmentFromList(environ) }
}

// WithStartDir roots the directory state at dir instead of the process's
// working directory.
func WithStartDir(dir string) Option {
	return func(s *Shell) { s.startDir = dir }
}

// New creates a Shell seeded from the inherited process environment and the
// process's initial working directory.
func New(opts ...Option) (*Shell, error) {
	s := &Shell{
		stdio: Stdio{In: os.Stdin, Out: os.Stdout, Err: os.Stderr},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.env == nil {
		s.env = NewEnvironmentFromProcess()
	}

	var err error
	if s.startDir != "" {
		s.dirs, err = NewDirStateAt(s.startDir)
	} else {
		s.dirs, err = NewDirState()
	}
	if err != nil {
		return nil, err
	}

	s.runner = NewRunner(s.env, s.dirs)
	return s, nil
}

// Execute runs one external command to completion against the shell's own
// stream bindings. See Runner.Run for the error contract.
func (s *Shell) Execute(argv []string) (Result, error) {
	return s.ExecuteWith(argv, s.stdio)
}

// ExecuteWith is Execute with explicit stream bindings, letting the caller
// capture the child's output.
func (s *Shell) ExecuteWith(argv []string, stdio Stdio) (Result, error) {
	res, err := s.runner.Run(Command(argv), stdio)
	if err != nil {
		return Result{}, err
	}
	s.lastExit = res.ExitCode
	return res, nil
}

// ExecutePipeline runs the commands as a pipeline against the shell's own
// stream bindings. The result reflects the last stage.
func (s *Shell) ExecutePipeline(argvs [][]string) (Result, error) {
	return s.ExecutePipelineWith(argvs, s.stdio)
}

// ExecutePipelineWith is ExecutePipeline with explicit stream bindings.
func (s *Shell) ExecutePipelineWith(argvs [][]string, stdio Stdio) (Result, error) {
	stages := make([]Command, len(argvs))
	for i, argv := range argvs {
		stages[i] = Command(argv)
	}
	res, err := s.runner.RunPipeline(stages, stdio)
	if err != nil {
		return Result{}, err
	}
	s.lastExit = res.ExitCode
	return res, nil
}

// Cd changes the working directory. The target PreviousDirToken toggles to
// the previous directory. On success PWD and OLDPWD are updated; on failure
// the state is left untouched and the Result carries the OS diagnostic.
func (s *Shell) Cd(target string) Result {
	oldwd := s.dirs.Getwd()

	if err := s.dirs.Chdir(target); err != nil {
		res := Result{ExitCode: 1, ErrorText: cdErrorText(target, err)}
		s.lastExit = res.ExitCode
		return res
	}

	// Same convention as login shells; children that print the logical
	// working directory consult these.
	_ = s.env.Setenv(EnvOldPWD, oldwd)
	_ = s.env.Setenv(EnvPWD, s.dirs.Getwd())

	s.lastExit = ExitSuccess
	return Result{}
}

func cdErrorText(target string, err error) string {
	if errors.Is(err, ErrNoPreviousDirectory) {
		return err.Error()
	}
	return "cd: " + target + ": " + diagnostic(err)
}

// Getwd returns the current working directory, always absolute.
func (s *Shell) Getwd() string {
	return s.dirs.Getwd()
}

// Getenv retrieves a variable from the environment table. The boolean
// distinguishes unset from empty.
func (s *Shell) Getenv(name string) (string, bool) {
	return s.env.LookupEnv(name)
}

// Setenv adds or overwrites a variable in the environment table. Mutations
// never affect already-running children, which hold a snapshot.
func (s *Shell) Setenv(name, value string) Result {
	if err := s.env.Setenv(name, value); err != nil {
		return Result{ExitCode: 1, ErrorText: err.Error()}
	}
	return Result{}
}

// Unsetenv removes a variable from the environment table.
func (s *Shell) Unsetenv(name string) Result {
	if err := s.env.Unsetenv(name); err != nil {
		return Result{ExitCode: 1, ErrorText: err.Error()}
	}
	return Result{}
}

// Expand replaces ${var} or $var references using the environment table.
func (s *Shell) Expand(text string) string {
	return s.env.ExpandEnv(text)
}

// Environ returns a sorted snapshot of the environment table.
func (s *Shell) Environ() []string {
	return s.env.Environ()
}

// LastExitCode returns the exit code of the most recent Execute,
// ExecutePipeline, Cd or failed Setenv, for prompt rendering and $?-style
// uses.
func (s *Shell) LastExitCode() int {
	return s.lastExit
}
