// Package executor runs validated command vectors as direct child-process
// invocations of the mediated tool, under the policy's wall-clock timeout.
//
// The executor trusts its input: callers must have run the vector through
// the validation pipeline first. It still never involves a shell, so even
// an unvalidated token could not be interpreted as shell syntax.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	internalexec "github.com/victoralfred/kubegate/internal/exec"
	"github.com/victoralfred/kubegate/policy"
)

// DefaultMaxConcurrent bounds simultaneous child processes.
const DefaultMaxConcurrent = 16

// Limiter gates invocations per subcommand before a process is spawned.
type Limiter interface {
	Allow(subcommand string) bool
}

// runner abstracts the internal process runner for tests.
type runner interface {
	Run(ctx context.Context, config *internalexec.RunConfig) (*internalexec.RunResult, error)
}

// Executor executes validated vectors. Safe for concurrent use; each
// invocation is independent.
type Executor struct {
	binary  string
	policy  *policy.Policy
	limiter Limiter
	logger  *slog.Logger
	runner  runner
	sem     chan struct{}
}

// Builder assembles an Executor.
type Builder struct {
	binary        string
	policy        *policy.Policy
	limiter       Limiter
	logger        *slog.Logger
	runner        runner
	maxConcurrent int
}

// NewBuilder creates a builder with defaults: the kubectl binary and
// DefaultMaxConcurrent parallel invocations.
func NewBuilder() *Builder {
	return &Builder{
		binary:        "kubectl",
		maxConcurrent: DefaultMaxConcurrent,
	}
}

// WithPolicy sets the policy. Required.
func (b *Builder) WithPolicy(p *policy.Policy) *Builder {
	b.policy = p
	return b
}

// WithBinary overrides the mediated binary name.
func (b *Builder) WithBinary(binary string) *Builder {
	b.binary = binary
	return b
}

// WithLimiter sets the per-subcommand rate limiter.
func (b *Builder) WithLimiter(l Limiter) *Builder {
	b.limiter = l
	return b
}

// WithLogger sets the structured logger.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMaxConcurrent bounds simultaneous child processes.
func (b *Builder) WithMaxConcurrent(n int) *Builder {
	b.maxConcurrent = n
	return b
}

// withRunner substitutes the process runner. Test hook.
func (b *Builder) withRunner(r runner) *Builder {
	b.runner = r
	return b
}

// Build creates the executor.
func (b *Builder) Build() (*Executor, error) {
	if b.policy == nil {
		return nil, errors.New("executor: policy is required")
	}
	if b.maxConcurrent <= 0 {
		b.maxConcurrent = DefaultMaxConcurrent
	}
	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}
	r := b.runner
	if r == nil {
		r = internalexec.NewRunner()
	}
	return &Executor{
		binary:  b.binary,
		policy:  b.policy,
		limiter: b.limiter,
		logger:  logger,
		runner:  r,
		sem:     make(chan struct{}, b.maxConcurrent),
	}, nil
}

// Run executes a validated vector and always returns a structured
// Outcome. The policy timeout bounds the whole invocation; on expiry the
// child process group is killed and the outcome reports a timeout.
func (e *Executor) Run(ctx context.Context, args []string) *Outcome {
	outcome := &Outcome{
		ID:         uuid.New().String(),
		ReturnCode: -1,
	}

	if e.limiter != nil && len(args) > 0 && !e.limiter.Allow(args[0]) {
		outcome.Status = StatusRateLimited
		outcome.Error = fmt.Sprintf("rate limit exceeded for command %q", args[0])
		e.logger.Warn("invocation rate limited", "id", outcome.ID, "subcommand", args[0])
		return outcome
	}

	select {
	case e.sem <- struct{}{}:
		defer func() { <-e.sem }()
	case <-ctx.Done():
		outcome.Status = StatusError
		outcome.Error = ctx.Err().Error()
		return outcome
	}

	timeout := e.policy.Timeout()
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	e.logger.Info("executing command", "id", outcome.ID, "binary", e.binary, "args", args)

	result, err := e.runner.Run(execCtx, &internalexec.RunConfig{
		Binary: e.binary,
		Args:   args,
	})

	if result != nil {
		outcome.Stdout = string(result.Stdout)
		outcome.Stderr = string(result.Stderr)
		outcome.ReturnCode = result.ExitCode
		outcome.Duration = result.Duration
	}

	switch {
	case err == nil:
		outcome.Success = result.ExitCode == 0
		if outcome.Success {
			outcome.Status = StatusSuccess
		} else {
			outcome.Status = StatusError
		}
	case errors.Is(err, context.DeadlineExceeded):
		outcome.Status = StatusTimeout
		outcome.Error = fmt.Sprintf("command timed out after %d seconds", int(timeout/time.Second))
		e.logger.Error("command timed out", "id", outcome.ID, "timeout", timeout)
	case errors.Is(err, context.Canceled):
		outcome.Status = StatusError
		outcome.Error = "invocation canceled"
	default:
		// The process never ran: binary missing, permission denied, ...
		outcome.Status = StatusSpawnFailure
		outcome.Error = err.Error()
		e.logger.Error("failed to start command", "id", outcome.ID, "error", err)
	}

	return outcome
}

// Binary returns the mediated binary name.
func (e *Executor) Binary() string {
	return e.binary
}
