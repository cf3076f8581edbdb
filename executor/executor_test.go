package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	internalexec "github.com/victoralfred/kubegate/internal/exec"
	"github.com/victoralfred/kubegate/policy"
)

// mockRunner substitutes the internal process runner.
type mockRunner struct {
	runFunc func(ctx context.Context, config *internalexec.RunConfig) (*internalexec.RunResult, error)
}

func (m *mockRunner) Run(ctx context.Context, config *internalexec.RunConfig) (*internalexec.RunResult, error) {
	if m.runFunc != nil {
		return m.runFunc(ctx, config)
	}
	return &internalexec.RunResult{
		ExitCode: 0,
		Stdout:   []byte("ok\n"),
		Duration: 10 * time.Millisecond,
	}, nil
}

// mockLimiter substitutes the rate limiter.
type mockLimiter struct {
	allowFunc func(subcommand string) bool
}

func (m *mockLimiter) Allow(subcommand string) bool {
	if m.allowFunc != nil {
		return m.allowFunc(subcommand)
	}
	return true
}

func buildExecutor(t *testing.T, r runner, l Limiter) *Executor {
	t.Helper()
	b := NewBuilder().WithPolicy(policy.Default()).withRunner(r)
	if l != nil {
		b = b.WithLimiter(l)
	}
	e, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return e
}

func TestBuild_RequiresPolicy(t *testing.T) {
	if _, err := NewBuilder().Build(); err == nil {
		t.Fatal("expected error without policy")
	}
}

func TestRun_Success(t *testing.T) {
	var gotConfig *internalexec.RunConfig
	e := buildExecutor(t, &mockRunner{
		runFunc: func(ctx context.Context, config *internalexec.RunConfig) (*internalexec.RunResult, error) {
			gotConfig = config
			if _, ok := ctx.Deadline(); !ok {
				t.Error("executor must set a deadline")
			}
			return &internalexec.RunResult{ExitCode: 0, Stdout: []byte("pods\n")}, nil
		},
	}, nil)

	outcome := e.Run(context.Background(), []string{"get", "pods", "-n", "default"})

	if !outcome.Success || outcome.Status != StatusSuccess {
		t.Errorf("outcome = %+v, want success", outcome)
	}
	if outcome.Stdout != "pods\n" || outcome.ReturnCode != 0 {
		t.Errorf("outcome = %+v", outcome)
	}
	if outcome.ID == "" {
		t.Error("invocation ID not assigned")
	}
	if gotConfig.Binary != "kubectl" {
		t.Errorf("binary = %q, want kubectl", gotConfig.Binary)
	}
	if len(gotConfig.Args) != 4 || gotConfig.Args[0] != "get" {
		t.Errorf("args = %v", gotConfig.Args)
	}
}

func TestRun_NonZeroExit(t *testing.T) {
	e := buildExecutor(t, &mockRunner{
		runFunc: func(ctx context.Context, config *internalexec.RunConfig) (*internalexec.RunResult, error) {
			return &internalexec.RunResult{ExitCode: 1, Stderr: []byte("not found")}, nil
		},
	}, nil)

	outcome := e.Run(context.Background(), []string{"get", "pods"})

	if outcome.Success {
		t.Error("non-zero exit must not be success")
	}
	if outcome.Status != StatusError || outcome.ReturnCode != 1 {
		t.Errorf("outcome = %+v", outcome)
	}
	if outcome.Error != "" {
		t.Errorf("non-zero exit is a normal completion, got error %q", outcome.Error)
	}
	if outcome.Stderr != "not found" {
		t.Errorf("stderr = %q", outcome.Stderr)
	}
}

func TestRun_Timeout(t *testing.T) {
	e := buildExecutor(t, &mockRunner{
		runFunc: func(ctx context.Context, config *internalexec.RunConfig) (*internalexec.RunResult, error) {
			return &internalexec.RunResult{ExitCode: -1}, context.DeadlineExceeded
		},
	}, nil)

	outcome := e.Run(context.Background(), []string{"drain", "node-1"})

	if outcome.Success || outcome.Status != StatusTimeout {
		t.Errorf("outcome = %+v, want timeout", outcome)
	}
	if outcome.Error != "command timed out after 60 seconds" {
		t.Errorf("error = %q", outcome.Error)
	}
}

func TestRun_SpawnFailure(t *testing.T) {
	e := buildExecutor(t, &mockRunner{
		runFunc: func(ctx context.Context, config *internalexec.RunConfig) (*internalexec.RunResult, error) {
			return nil, errors.New(`exec: "kubectl": executable file not found in $PATH`)
		},
	}, nil)

	outcome := e.Run(context.Background(), []string{"get", "pods"})

	if outcome.Success || outcome.Status != StatusSpawnFailure {
		t.Errorf("outcome = %+v, want spawn failure", outcome)
	}
	if outcome.Error == "" || outcome.ReturnCode != -1 {
		t.Errorf("outcome = %+v", outcome)
	}
}

func TestRun_RateLimited(t *testing.T) {
	ran := false
	e := buildExecutor(t,
		&mockRunner{
			runFunc: func(ctx context.Context, config *internalexec.RunConfig) (*internalexec.RunResult, error) {
				ran = true
				return &internalexec.RunResult{}, nil
			},
		},
		&mockLimiter{allowFunc: func(string) bool { return false }},
	)

	outcome := e.Run(context.Background(), []string{"delete", "pod", "x"})

	if ran {
		t.Error("rate-limited invocation must not spawn a process")
	}
	if outcome.Status != StatusRateLimited || outcome.Success {
		t.Errorf("outcome = %+v, want rate limited", outcome)
	}
}

func TestRun_CanceledContext(t *testing.T) {
	e := buildExecutor(t, &mockRunner{
		runFunc: func(ctx context.Context, config *internalexec.RunConfig) (*internalexec.RunResult, error) {
			return nil, context.Canceled
		},
	}, nil)

	outcome := e.Run(context.Background(), []string{"get", "pods"})
	if outcome.Status != StatusError || outcome.Error != "invocation canceled" {
		t.Errorf("outcome = %+v", outcome)
	}
}

func TestRun_ConcurrentInvocations(t *testing.T) {
	block := make(chan struct{})
	e := buildExecutor(t, &mockRunner{
		runFunc: func(ctx context.Context, config *internalexec.RunConfig) (*internalexec.RunResult, error) {
			<-block
			return &internalexec.RunResult{ExitCode: 0}, nil
		},
	}, nil)

	done := make(chan *Outcome, 4)
	for i := 0; i < 4; i++ {
		go func() { done <- e.Run(context.Background(), []string{"get", "pods"}) }()
	}
	close(block)

	for i := 0; i < 4; i++ {
		select {
		case outcome := <-done:
			if !outcome.Success {
				t.Errorf("outcome = %+v", outcome)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("concurrent invocations did not complete")
		}
	}
}
