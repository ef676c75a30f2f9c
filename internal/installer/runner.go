package installer

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Result is the outcome of one external process.
//   - ExitCode: process exit status, -1 when it never ran to completion.
//   - Output: combined stdout and stderr.
//   - Err: set when the process could not be started or was killed by the context.
type Result struct {
	ExitCode int
	Output   []byte
	Err      error
}

// Ok reports whether the process ran and exited with an accepted code.
func (r Result) Ok(accept func(int) bool) bool {
	if r.Err != nil {
		return false
	}
	if accept == nil {
		return r.ExitCode == 0
	}
	return accept(r.ExitCode)
}

// Error describes a non-ok result for log lines and wrapped errors.
func (r Result) Error() string {
	if r.Err != nil {
		return r.Err.Error()
	}
	return fmt.Sprintf("exit status %d", r.ExitCode)
}

// Runner invokes external processes and blocks until they exit.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) Result
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) Result {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	res := Result{Output: output}
	if err == nil {
		return res
	}

	var exitErr *exec.ExitError
	switch {
	case ctx.Err() != nil:
		res.ExitCode = -1
		res.Err = fmt.Errorf("%s: %w", name, ctx.Err())
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		res.ExitCode = -1
		res.Err = err
	}
	return res
}
