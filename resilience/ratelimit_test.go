package resilience

import "testing"

func TestNewLimiter_DisabledAlwaysAllows(t *testing.T) {
	l := NewLimiter(DefaultConfig())
	for i := 0; i < 1000; i++ {
		if !l.Allow("delete") {
			t.Fatal("disabled limiter must always allow")
		}
	}
}

func TestLimiter_GlobalBurstExhausts(t *testing.T) {
	l := NewLimiter(Config{
		Enabled:           true,
		RequestsPerSecond: 0.001,
		Burst:             3,
	})

	for i := 0; i < 3; i++ {
		if !l.Allow("get") {
			t.Fatalf("request %d within burst should be allowed", i)
		}
	}
	if l.Allow("get") {
		t.Error("request beyond burst should be denied")
	}
}

func TestLimiter_PerSubcommandOverride(t *testing.T) {
	l := NewLimiter(Config{
		Enabled:           true,
		RequestsPerSecond: 0.001,
		Burst:             100,
		PerSubcommand: map[string]SubcommandLimit{
			"delete": {RequestsPerSecond: 0.001, Burst: 1},
		},
	})

	if !l.Allow("delete") {
		t.Fatal("first delete within burst should be allowed")
	}
	if l.Allow("delete") {
		t.Error("second delete should hit the dedicated limit")
	}
	if !l.Allow("get") {
		t.Error("get should still draw from the shared bucket")
	}
}
