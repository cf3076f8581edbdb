// Package exec is the internal process invocation wrapper. It is the ONLY
// package in the module that imports os/exec; every child process the
// gateway spawns goes through Runner.
//
// Arguments are always passed as a discrete argv array. Nothing here ever
// concatenates tokens into a shell command line or involves a shell.
package exec

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

// killGracePeriod bounds cleanup after the context deadline fires. The
// caller is never blocked longer than timeout + this grace period.
const killGracePeriod = 5 * time.Second

// RunConfig describes one child-process invocation.
type RunConfig struct {
	// Binary is the name or path of the executable.
	Binary string

	// Args are the arguments, excluding the binary name.
	Args []string

	// Env is the child environment. If nil, a minimal safe environment
	// is used.
	Env []string
}

// RunResult is the outcome of a completed child process.
type RunResult struct {
	// ExitCode is the process exit code (-1 if killed by signal).
	ExitCode int

	// Stdout is the captured standard output.
	Stdout []byte

	// Stderr is the captured standard error.
	Stderr []byte

	// Duration is the wall clock time of the run.
	Duration time.Duration
}

// Runner executes commands via exec.CommandContext.
type Runner struct {
	minimalEnv []string
}

// NewRunner creates a runner with a minimal safe environment.
func NewRunner() *Runner {
	return &Runner{
		minimalEnv: []string{
			"PATH=/usr/local/bin:/usr/bin:/bin",
			"HOME=/tmp",
			"LANG=C.UTF-8",
		},
	}
}

// Run executes the configured command. The context MUST carry a deadline;
// expiry kills the whole process group within killGracePeriod.
//
// The returned error is non-nil only when the process could not be
// started or was cut short by the context; a non-zero exit code is a
// normal completion reported through RunResult.ExitCode.
func (r *Runner) Run(ctx context.Context, config *RunConfig) (*RunResult, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if _, ok := ctx.Deadline(); !ok {
		return nil, fmt.Errorf("context must have a deadline for timeout enforcement")
	}

	// Binary and args are validated upstream; argv execution without a
	// shell prevents injection even for tokens carrying double quotes.
	// #nosec G204 -- arguments are validated before reaching this point
	cmd := exec.CommandContext(ctx, config.Binary, config.Args...)

	if len(config.Env) > 0 {
		cmd.Env = config.Env
	} else {
		cmd.Env = r.minimalEnv
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Children get their own process group so a timeout kills helpers
	// the tool may have spawned, not just the direct child.
	cmd.SysProcAttr = sysProcAttr()
	cmd.Cancel = func() error { return terminate(cmd) }
	cmd.WaitDelay = killGracePeriod

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	result := &RunResult{
		ExitCode: -1,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: duration,
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		// Context expiry takes precedence over whatever exit state the
		// killed process reports.
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if _, ok := err.(*exec.ExitError); ok {
			// Non-zero exit is a normal completion.
			return result, nil
		}
		// Spawn failure: binary missing, permission denied, ...
		return nil, err
	}

	return result, nil
}
