// Package observability provides OpenTelemetry instrumentation and an
// append-only audit trail for gateway invocations.
package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry records what the gateway does: spans around each tool call,
// counters for accepted/rejected invocations and an execution duration
// histogram.
type Telemetry interface {
	// StartSpan starts a trace span; the returned func ends it.
	StartSpan(ctx context.Context, name string) (context.Context, func())

	// RecordInvocation records one finished tool call.
	RecordInvocation(tool, status string, durationSeconds float64)

	// RecordRejection records one validation rejection by code.
	RecordRejection(tool, code string)
}

// TelemetryConfig configures the OTEL instruments.
type TelemetryConfig struct {
	ServiceName   string
	MetricsPrefix string
	EnableTracing bool
	EnableMetrics bool
}

// DefaultTelemetryConfig returns the default telemetry configuration.
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		ServiceName:   "kubegate",
		MetricsPrefix: "kubegate_",
		EnableTracing: true,
		EnableMetrics: true,
	}
}

type telemetry struct {
	config TelemetryConfig
	tracer trace.Tracer

	invocations metric.Int64Counter
	rejections  metric.Int64Counter
	duration    metric.Float64Histogram
}

// NewTelemetry creates OTEL-backed telemetry. It uses the globally
// registered meter and tracer providers; without a configured SDK the
// instruments are no-ops, so this is always safe to construct.
func NewTelemetry(config TelemetryConfig) (Telemetry, error) {
	t := &telemetry{
		config: config,
		tracer: otel.Tracer(config.ServiceName),
	}
	meter := otel.Meter(config.ServiceName)

	var err error
	t.invocations, err = meter.Int64Counter(
		config.MetricsPrefix+"invocations_total",
		metric.WithDescription("Total number of tool invocations"),
	)
	if err != nil {
		return nil, err
	}

	t.rejections, err = meter.Int64Counter(
		config.MetricsPrefix+"validation_rejections_total",
		metric.WithDescription("Total number of validation rejections"),
	)
	if err != nil {
		return nil, err
	}

	t.duration, err = meter.Float64Histogram(
		config.MetricsPrefix+"execution_duration_seconds",
		metric.WithDescription("Duration of kubectl executions"),
	)
	if err != nil {
		return nil, err
	}

	return t, nil
}

// StartSpan implements Telemetry.
func (t *telemetry) StartSpan(ctx context.Context, name string) (context.Context, func()) {
	if !t.config.EnableTracing {
		return ctx, func() {}
	}
	ctx, span := t.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindServer))
	return ctx, func() { span.End() }
}

// RecordInvocation implements Telemetry.
func (t *telemetry) RecordInvocation(tool, status string, durationSeconds float64) {
	if !t.config.EnableMetrics {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("status", status),
	)
	t.invocations.Add(context.Background(), 1, attrs)
	t.duration.Record(context.Background(), durationSeconds, attrs)
}

// RecordRejection implements Telemetry.
func (t *telemetry) RecordRejection(tool, code string) {
	if !t.config.EnableMetrics {
		return
	}
	t.rejections.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("code", code),
	))
}

// NoopTelemetry returns a telemetry implementation that records nothing.
func NoopTelemetry() Telemetry {
	return noopTelemetry{}
}

type noopTelemetry struct{}

func (noopTelemetry) StartSpan(ctx context.Context, name string) (context.Context, func()) {
	return ctx, func() {}
}
func (noopTelemetry) RecordInvocation(tool, status string, durationSeconds float64) {}
func (noopTelemetry) RecordRejection(tool, code string)                            {}
