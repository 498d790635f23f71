// Package telemetry defines the abstract Logger/Metrics/Tracer surface used
// throughout the engine so concrete backends (zap, Prometheus, OpenTelemetry)
// can be swapped without touching engine logic, and so unit tests can run
// against no-op implementations.
package telemetry

import (
	"context"
	"time"
)

type (
	// Logger emits structured log lines. Key-value pairs follow the
	// zap/zerolog convention of alternating key, value, key, value...
	Logger interface {
		Debug(ctx context.Context, msg string, kv ...any)
		Info(ctx context.Context, msg string, kv ...any)
		Warn(ctx context.Context, msg string, kv ...any)
		Error(ctx context.Context, msg string, kv ...any)
	}

	// Metrics records counters, timers, and gauges. Labels are supplied as
	// alternating key, value pairs, matching Logger's convention.
	Metrics interface {
		IncCounter(name string, value float64, labels ...string)
		RecordTimer(name string, d time.Duration, labels ...string)
		RecordGauge(name string, value float64, labels ...string)
	}

	// Tracer creates named spans. The engine packages (agent, schedule,
	// engine) do not call a Tracer themselves.
	Tracer interface {
		Start(ctx context.Context, name string) (context.Context, Span)
	}

	// Span represents a single unit of traced work.
	Span interface {
		End()
		AddEvent(name string, kv ...any)
		RecordError(err error)
	}
)
