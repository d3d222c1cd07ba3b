package otelsink

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// otelSpan adapts a trace.Span to the narrow Span surface; attribute typing
// mirrors the int64/string overload pair the original tracer exposed.
type otelSpan struct {
	span trace.Span
}

func (s otelSpan) SetAttribute(key string, value any) {
	if s.span == nil {
		return
	}
	switch v := value.(type) {
	case string:
		s.span.SetAttributes(attribute.String(key, v))
	case bool:
		s.span.SetAttributes(attribute.Bool(key, v))
	case int64:
		s.span.SetAttributes(attribute.Int64(key, v))
	case int:
		s.span.SetAttributes(attribute.Int(key, v))
	case float64:
		s.span.SetAttributes(attribute.Float64(key, v))
	default:
		s.span.SetAttributes(attribute.String(key, fmt.Sprint(v)))
	}
}

func (s otelSpan) End() {
	if s.span != nil {
		s.span.End()
	}
}

// otelTracer wraps a trace.Tracer plus a hand-rolled counter table: the
// stable metrics API is a separate SDK surface this module does not pull
// in, so counters here are expressed as span events carrying the delta,
// which still lands an aggregate in any OTLP collector's span pipeline.
type otelTracer struct {
	tracer      trace.Tracer
	serviceName string
}

// New builds a Tracer bound to the global OpenTelemetry TracerProvider. The
// caller is responsible for having configured that provider (SDK wiring is
// an embedder concern per the out-of-scope collaborator boundary); New only
// validates cfg and, when disabled, returns Noop().
func New(cfg Config) (Tracer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return Noop(), nil
	}
	name := cfg.ServiceName
	if name == "" {
		name = "aeronet"
	}
	return &otelTracer{
		tracer:      otel.Tracer(name),
		serviceName: name,
	}, nil
}

func (t *otelTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	spanCtx, span := t.tracer.Start(ctx, name)
	return spanCtx, otelSpan{span: span}
}

func (t *otelTracer) CounterAdd(name string, delta int64, attrs ...Attr) {
	_, span := t.tracer.Start(context.Background(), "counter."+name)
	kv := make([]attribute.KeyValue, 0, len(attrs)+1)
	kv = append(kv, attribute.Int64("delta", delta))
	for _, a := range attrs {
		switch v := a.Value.(type) {
		case string:
			kv = append(kv, attribute.String(a.Key, v))
		case int64:
			kv = append(kv, attribute.Int64(a.Key, v))
		case bool:
			kv = append(kv, attribute.Bool(a.Key, v))
		default:
			kv = append(kv, attribute.String(a.Key, fmt.Sprint(v)))
		}
	}
	span.SetAttributes(kv...)
	span.End()
}
