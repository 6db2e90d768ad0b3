// Package telemetry adapts OpenTelemetry tracing behind the ports.Tracer
// interface, with a no-op fallback when trace export is disabled.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/loom/internal/core/ports"
)

var (
	_ ports.Tracer = (*Otel)(nil)
	_ ports.Tracer = (*Noop)(nil)
)

// Otel traces through an OpenTelemetry tracer provider.
type Otel struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// NewOtel creates a tracer backed by a fresh SDK provider and installs it as
// the global provider.
func NewOtel() *Otel {
	provider := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(provider)
	return &Otel{
		provider: provider,
		tracer:   provider.Tracer("loom"),
	}
}

// Start implements ports.Tracer.
func (o *Otel) Start(ctx context.Context, name string) (context.Context, ports.Span) {
	ctx, span := o.tracer.Start(ctx, name)
	return ctx, &otelSpan{span: span}
}

// Shutdown flushes and stops the provider.
func (o *Otel) Shutdown(ctx context.Context) error {
	return o.provider.Shutdown(ctx)
}

type otelSpan struct {
	span trace.Span
}

func (s *otelSpan) End() {
	s.span.End()
}

func (s *otelSpan) RecordError(err error) {
	s.span.RecordError(err)
}

func (s *otelSpan) SetAttribute(key string, value any) {
	switch v := value.(type) {
	case string:
		s.span.SetAttributes(attribute.String(key, v))
	case int:
		s.span.SetAttributes(attribute.Int(key, v))
	case int64:
		s.span.SetAttributes(attribute.Int64(key, v))
	case bool:
		s.span.SetAttributes(attribute.Bool(key, v))
	case float64:
		s.span.SetAttributes(attribute.Float64(key, v))
	default:
		s.span.SetAttributes(attribute.String(key, fmt.Sprint(v)))
	}
}

// Noop discards all spans.
type Noop struct{}

// NewNoop creates a tracer that records nothing.
func NewNoop() *Noop {
	return &Noop{}
}

// Start implements ports.Tracer.
func (n *Noop) Start(ctx context.Context, _ string) (context.Context, ports.Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End()                     {}
func (noopSpan) RecordError(error)        {}
func (noopSpan) SetAttribute(string, any) {}
