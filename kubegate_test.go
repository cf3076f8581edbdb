package kubegate

import (
	"context"
	"strings"
	"testing"
)

func TestNew_DefaultPolicyRejectsWriteEscalation(t *testing.T) {
	gw, err := New(DefaultPolicy())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	cases := []struct {
		name string
		args []string
	}{
		{"exec", []string{"exec", "pod-1", "--", "sh"}},
		{"identity flag", []string{"get", "pods", "--as", "system:admin"}},
		{"cluster flag", []string{"get", "pods", "--kubeconfig=/tmp/kc"}},
		{"metacharacters", []string{"get", "pods;id"}},
		{"overrides", []string{"delete", "pod", "x", "--overrides={}"}},
	}

	for _, tc := range cases {
		outcome := gw.RunCommand(context.Background(), tc.args)
		if outcome.Success {
			t.Errorf("%s: accepted %v", tc.name, tc.args)
		}
		if outcome.Status != StatusRejected {
			t.Errorf("%s: status = %q, want %q", tc.name, outcome.Status, StatusRejected)
		}
		if outcome.ReturnCode != -1 {
			t.Errorf("%s: return code = %d, want -1", tc.name, outcome.ReturnCode)
		}
	}
}

func TestNew_RunImageDisabledByDefault(t *testing.T) {
	gw, err := New(DefaultPolicy())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	outcome := gw.RunImage(context.Background(), RunImageRequest{
		Name:  "debug",
		Image: "busybox:1.36",
	})
	if outcome.Success || !strings.Contains(outcome.Error, "disabled") {
		t.Errorf("outcome = %+v, want feature-disabled rejection", outcome)
	}
}

func TestNewPolicy_SnapshotReflectsConfig(t *testing.T) {
	pol := NewPolicy(PolicyConfig{
		AllowedCommands: []string{"get", "logs"},
		AllowedImages:   []string{"busybox:1.36"},
	})

	snap := pol.Snapshot()
	if len(snap.AllowedCommands) != 2 || !snap.RunImageEnabled {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.TimeoutSeconds != 60 {
		t.Errorf("timeout seconds = %d, want default 60", snap.TimeoutSeconds)
	}
}
