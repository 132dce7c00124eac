package shell

import (
	"fmt"
	"os"
	"os/exec"
)

// RunPipeline wires the stages together with OS pipes, launches them all,
// and waits for them all. The first stage reads stdio.In, the last writes
// stdio.Out, and every stage shares stdio.Err.
//
// The overall Result is the last stage's termination status, matching common
// shell semantics: upstream failures are not masked into the final code but
// are also not separately surfaced. Per-stage error text is not aggregated;
// a caller wanting full diagnostics for an intermediate stage must re-invoke
// that command outside the pipeline.
//
// Stage processes run concurrently, coordinated only by pipe backpressure.
// The calling goroutine does no work while they run; it only waits.
func (r *Runner) RunPipeline(stages []Command, stdio Stdio) (Result, error) {
	switch len(stages) {
	case 0:
		return Result{}, ErrEmptyPipeline
	case 1:
		return r.Run(stages[0], stdio)
	}

	for _, argv := range stages {
		if len(argv) == 0 || argv[0] == "" {
			return Result{}, ErrEmptyCommand
		}
	}

	n := len(stages)
	readEnds := make([]*os.File, n-1)
	writeEnds := make([]*os.File, n-1)
	closeEnds := func() {
		for i := range readEnds {
			if readEnds[i] != nil {
				readEnds[i].Close()
				readEnds[i] = nil
			}
			if writeEnds[i] != nil {
				writeEnds[i].Close()
				writeEnds[i] = nil
			}
		}
	}
	// Guaranteed cleanup on every exit path. Normally a no-op because the
	// ends are closed right after launch; leaked pipe descriptors across
	// repeated invocations are the main correctness risk here.
	defer closeEnds()

	for i := range readEnds {
		pr, pw, err := os.Pipe()
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrResourceExhausted, err)
		}
		readEnds[i], writeEnds[i] = pr, pw
	}

	// One environment and directory snapshot for the whole pipeline.
	environ := r.env.Environ()
	dir := r.dirs.Getwd()

	cmds := make([]*exec.Cmd, n)
	results := make([]Result, n)
	var startErr error

	for i, argv := range stages {
		path, err := LookPath(r.env, dir, argv[0])
		if err != nil {
			// The stage never runs. Its pipe ends still get closed below so
			// neighbors see EOF instead of deadlocking.
			results[i] = launchFailure(argv[0], err)
			continue
		}

		cmd := exec.Command(path)
		cmd.Args = append([]string(nil), argv...)
		cmd.Env = environ
		cmd.Dir = dir
		if i == 0 {
			cmd.Stdin = stdio.In
		} else {
			cmd.Stdin = readEnds[i-1]
		}
		if i == n-1 {
			cmd.Stdout = stdio.Out
		} else {
			cmd.Stdout = writeEnds[i]
		}
		cmd.Stderr = stdio.Err

		if err := cmd.Start(); err != nil {
			if isResourceExhausted(err) {
				startErr = fmt.Errorf("%w: %v", ErrResourceExhausted, err)
				break
			}
			results[i] = launchFailure(argv[0], err)
			continue
		}
		cmds[i] = cmd
	}

	// The children own their descriptor duplicates now. The parent must
	// drop every pipe end before waiting or downstream stages never see
	// EOF.
	closeEnds()

	// Reap left to right. Wait order does not imply completion order.
	for i, cmd := range cmds {
		if cmd == nil {
			continue
		}
		results[i] = waitResult(cmd, stdio.Err)
	}

	if startErr != nil {
		return Result{}, startErr
	}

	return results[n-1], nil
}
