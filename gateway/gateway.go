// Package gateway exposes the mediated operations: run a validated
// kubectl command, run a single pre-approved container image, and
// inspect the active policy.
//
// Every operation terminates in a structured outcome. Validation
// rejections are caller-input problems: they are logged at warning
// level, counted, audited, and returned as data, never raised as faults.
package gateway

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/victoralfred/kubegate/executor"
	"github.com/victoralfred/kubegate/observability"
	"github.com/victoralfred/kubegate/policy"
	"github.com/victoralfred/kubegate/validation"
)

// Tool names as exposed over the transport.
const (
	ToolKubectl   = "kubectl"
	ToolRunImage  = "run_image"
	ToolGetConfig = "get_config"
)

// Executor runs a validated vector and always returns an outcome.
type Executor interface {
	Run(ctx context.Context, args []string) *executor.Outcome
}

// Gateway wires the validation pipeline to the executor.
type Gateway struct {
	policy    *policy.Policy
	validator *validation.CommandValidator
	exec      Executor
	telemetry observability.Telemetry
	audit     observability.AuditLogger
	logger    *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithTelemetry sets the telemetry sink.
func WithTelemetry(t observability.Telemetry) Option {
	return func(g *Gateway) { g.telemetry = t }
}

// WithAudit sets the audit logger.
func WithAudit(a observability.AuditLogger) Option {
	return func(g *Gateway) { g.audit = a }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) { g.logger = l }
}

// New creates a gateway bound to one policy and executor.
func New(p *policy.Policy, exec Executor, opts ...Option) *Gateway {
	g := &Gateway{
		policy:    p,
		validator: validation.NewCommandValidator(p),
		exec:      exec,
		telemetry: observability.NoopTelemetry(),
		audit:     observability.NopAuditLogger(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RunCommand normalizes and validates caller-supplied arguments, then
// executes the vector. args may be a list of strings or a JSON-encoded
// string standing in for one.
func (g *Gateway) RunCommand(ctx context.Context, args interface{}) *executor.Outcome {
	ctx, end := g.telemetry.StartSpan(ctx, "gateway.run_command")
	defer end()

	tokens, err := validation.Normalize(args)
	if err != nil {
		return g.rejected(ctx, ToolKubectl, nil, err)
	}

	validated, err := g.validator.Validate(tokens)
	if err != nil {
		return g.rejected(ctx, ToolKubectl, tokens, err)
	}

	outcome := g.exec.Run(ctx, validated)
	g.finish(ctx, ToolKubectl, validated, outcome)
	return outcome
}

// PolicySnapshot returns a read-only summary of the active policy.
func (g *Gateway) PolicySnapshot() policy.Snapshot {
	return g.policy.Snapshot()
}

// rejected turns a validation error into a structured outcome and
// records it. No process has been spawned at this point.
func (g *Gateway) rejected(ctx context.Context, tool string, args []string, err error) *executor.Outcome {
	code := string(validation.CodeOf(err))
	g.logger.Warn("validation failed",
		"tool", tool, "code", code, "error", err.Error())
	g.telemetry.RecordRejection(tool, code)

	outcome := &executor.Outcome{
		ID:         uuid.New().String(),
		Success:    false,
		ReturnCode: -1,
		Error:      err.Error(),
		Status:     executor.StatusRejected,
	}
	g.record(ctx, tool, args, outcome)
	return outcome
}

// finish records a completed execution.
func (g *Gateway) finish(ctx context.Context, tool string, args []string, outcome *executor.Outcome) {
	g.telemetry.RecordInvocation(tool, outcome.Status, outcome.Duration.Seconds())
	g.record(ctx, tool, args, outcome)
}

func (g *Gateway) record(ctx context.Context, tool string, args []string, outcome *executor.Outcome) {
	event := &observability.AuditEvent{
		Timestamp: time.Now().UTC(),
		ID:        outcome.ID,
		Tool:      tool,
		Args:      args,
		Status:    outcome.Status,
		ExitCode:  outcome.ReturnCode,
		Error:     outcome.Error,
		Duration:  outcome.Duration.Milliseconds(),
	}
	if err := g.audit.Log(ctx, event); err != nil {
		g.logger.Error("audit log write failed", "error", err)
	}
}
