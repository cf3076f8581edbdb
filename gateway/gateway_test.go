package gateway

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/victoralfred/kubegate/executor"
	"github.com/victoralfred/kubegate/policy"
)

// mockExecutor records the vector it was asked to run.
type mockExecutor struct {
	runFunc func(ctx context.Context, args []string) *executor.Outcome
	lastRun []string
	calls   int
}

func (m *mockExecutor) Run(ctx context.Context, args []string) *executor.Outcome {
	m.calls++
	m.lastRun = args
	if m.runFunc != nil {
		return m.runFunc(ctx, args)
	}
	return &executor.Outcome{
		ID:      "test-id",
		Success: true,
		Stdout:  "ok\n",
		Status:  executor.StatusSuccess,
	}
}

func newTestGateway(p *policy.Policy) (*Gateway, *mockExecutor) {
	exec := &mockExecutor{}
	return New(p, exec), exec
}

func TestRunCommand_AcceptedAndExecuted(t *testing.T) {
	g, exec := newTestGateway(policy.Default())

	outcome := g.RunCommand(context.Background(), []string{"get", "pods", "-n", "default"})

	if !outcome.Success {
		t.Fatalf("outcome = %+v", outcome)
	}
	if !reflect.DeepEqual(exec.lastRun, []string{"get", "pods", "-n", "default"}) {
		t.Errorf("executed vector = %v", exec.lastRun)
	}
}

func TestRunCommand_ToolPrefixStrippedBeforeExecution(t *testing.T) {
	g, exec := newTestGateway(policy.Default())

	g.RunCommand(context.Background(), `["kubectl","get","pods"]`)

	if !reflect.DeepEqual(exec.lastRun, []string{"get", "pods"}) {
		t.Errorf("executed vector = %v", exec.lastRun)
	}
}

func TestRunCommand_RejectionsNeverSpawn(t *testing.T) {
	cases := []struct {
		name    string
		args    interface{}
		wantErr string
	}{
		{"disallowed subcommand", []string{"exec", "pod-1", "--", "sh"}, "not allowed"},
		{"dangerous flag", []string{"get", "pods", "--context", "prod"}, "not permitted"},
		{"metacharacters", []string{"get", "pods;rm -rf /"}, "invalid characters"},
		{"bad JSON string", `["get",`, "invalid JSON"},
		{"empty", []string{}, "no command"},
	}

	for _, tc := range cases {
		g, exec := newTestGateway(policy.Default())
		outcome := g.RunCommand(context.Background(), tc.args)

		if outcome.Success {
			t.Errorf("%s: expected rejection, got %+v", tc.name, outcome)
		}
		if outcome.Status != executor.StatusRejected {
			t.Errorf("%s: status = %q", tc.name, outcome.Status)
		}
		if !strings.Contains(outcome.Error, tc.wantErr) {
			t.Errorf("%s: error = %q, want substring %q", tc.name, outcome.Error, tc.wantErr)
		}
		if exec.calls != 0 {
			t.Errorf("%s: rejection must not reach the executor", tc.name)
		}
	}
}

func TestRunImage_AssemblesVector(t *testing.T) {
	p := policy.New(policy.Config{AllowedImages: []string{"busybox:1.36"}})
	g, exec := newTestGateway(p)

	outcome := g.RunImage(context.Background(), RunImageRequest{
		Name:      "debug-pod",
		Image:     "busybox:1.36",
		Namespace: "default",
		Command:   []string{"sh", "-c-less", "ls"},
	})

	if !outcome.Success {
		t.Fatalf("outcome = %+v", outcome)
	}
	want := []string{
		"run", "debug-pod", "--image=busybox:1.36", "--restart=Never",
		"-n", "default", "--rm", "-i", "--", "sh", "-c-less", "ls",
	}
	if !reflect.DeepEqual(exec.lastRun, want) {
		t.Errorf("vector = %v, want %v", exec.lastRun, want)
	}
}

func TestRunImage_RemoveFalseOmitsCleanupFlags(t *testing.T) {
	p := policy.New(policy.Config{AllowedImages: []string{"busybox:1.36"}})
	g, exec := newTestGateway(p)

	remove := false
	g.RunImage(context.Background(), RunImageRequest{
		Name:   "debug-pod",
		Image:  "busybox:1.36",
		Remove: &remove,
	})

	want := []string{"run", "debug-pod", "--image=busybox:1.36", "--restart=Never"}
	if !reflect.DeepEqual(exec.lastRun, want) {
		t.Errorf("vector = %v, want %v", exec.lastRun, want)
	}
}

func TestRunImage_Rejections(t *testing.T) {
	enabled := policy.New(policy.Config{AllowedImages: []string{"busybox:1.36"}})

	cases := []struct {
		name    string
		pol     *policy.Policy
		req     RunImageRequest
		wantErr string
	}{
		{
			"invalid name",
			enabled,
			RunImageRequest{Name: "Bad_Name!", Image: "busybox:1.36"},
			"resource name",
		},
		{
			"flag-like name",
			enabled,
			RunImageRequest{Name: "--rm", Image: "busybox:1.36"},
			"hyphen",
		},
		{
			"feature disabled",
			policy.Default(),
			RunImageRequest{Name: "debug", Image: "busybox:1.36"},
			"disabled",
		},
		{
			"image not allowed",
			enabled,
			RunImageRequest{Name: "debug", Image: "evil:latest"},
			"not allowed",
		},
		{
			"namespace metacharacters",
			enabled,
			RunImageRequest{Name: "debug", Image: "busybox:1.36", Namespace: "kube;system"},
			"invalid characters",
		},
		{
			"command metacharacters",
			enabled,
			RunImageRequest{Name: "debug", Image: "busybox:1.36", Command: []string{"sh", "id|nc"}},
			"invalid characters",
		},
	}

	for _, tc := range cases {
		g, exec := newTestGateway(tc.pol)

		outcome := g.RunImage(context.Background(), tc.req)

		if outcome.Success || outcome.Status != executor.StatusRejected {
			t.Errorf("%s: outcome = %+v, want rejection", tc.name, outcome)
		}
		if !strings.Contains(outcome.Error, tc.wantErr) {
			t.Errorf("%s: error = %q, want substring %q", tc.name, outcome.Error, tc.wantErr)
		}
		if exec.calls != 0 {
			t.Errorf("%s: rejection must not reach the executor", tc.name)
		}
	}
}

func TestPolicySnapshot(t *testing.T) {
	g, _ := newTestGateway(policy.Default())

	snap := g.PolicySnapshot()
	if len(snap.AllowedCommands) == 0 || snap.RunImageEnabled {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.TimeoutSeconds != 60 {
		t.Errorf("timeout seconds = %d, want 60", snap.TimeoutSeconds)
	}
}
