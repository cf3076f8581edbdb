package executor

import "time"

// Status labels for logs, metrics and the audit trail.
const (
	StatusSuccess      = "success"
	StatusError        = "error"
	StatusTimeout      = "timeout"
	StatusSpawnFailure = "spawn_failure"
	StatusRateLimited  = "rate_limited"
	StatusRejected     = "rejected"
)

// Outcome is the caller-safe result of one invocation. Every code path
// through the gateway terminates in an Outcome; no failure propagates to
// the caller as an uncaught fault.
type Outcome struct {
	// ID identifies the invocation in logs and the audit trail. It is
	// not part of the caller-facing payload.
	ID string `json:"-"`

	// Success is true only for a normal exit with return code zero.
	Success bool `json:"success"`

	// Stdout is the captured standard output.
	Stdout string `json:"stdout"`

	// Stderr is the captured standard error.
	Stderr string `json:"stderr"`

	// ReturnCode is the process exit code (-1 when no process completed).
	ReturnCode int `json:"return_code"`

	// Error describes a timeout, spawn failure or validation rejection.
	// Empty on normal completion.
	Error string `json:"error,omitempty"`

	// Status is one of the Status* labels above. Not caller-facing.
	Status string `json:"-"`

	// Duration is the wall clock time of the invocation.
	Duration time.Duration `json:"-"`
}
