package otelsink

import "context"

// Span is the narrow surface a handler needs to annotate and close a trace
// span: set typed attributes, then end it exactly once.
type Span interface {
	SetAttribute(key string, value any)
	End()
}

// Tracer is the telemetry-context collaborator named for the reactor: span
// creation scoped to a context, and a fire-and-forget counter increment for
// callers that want a metric without a whole span.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, Span)
	CounterAdd(name string, delta int64, attrs ...Attr)
}

// Attr is a single span/counter attribute; Value accepts the attribute kinds
// the OpenTelemetry API itself accepts (string, bool, int64, float64).
type Attr struct {
	Key   string
	Value any
}

type noopSpan struct{}

func (noopSpan) SetAttribute(string, any) {}
func (noopSpan) End()                     {}

type noopTracer struct{}

func (noopTracer) StartSpan(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, noopSpan{}
}

func (noopTracer) CounterAdd(string, int64, ...Attr) {}

// Noop returns a Tracer whose every operation is a zero-cost no-op, the
// default when Config.Enabled is false.
func Noop() Tracer {
	return noopTracer{}
}
