package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope for evaluator spans.
const tracerName = "github.com/sigridjineth/HyperLiquidBench"

// Tracer returns the evaluator's tracer from the global provider. Without
// InitTracing the provider is a no-op and spans cost nothing.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartSpan starts an evaluator span on the global tracer.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// InitTracing installs an SDK tracer provider and returns its shutdown
// function. Span processors (exporters) are optional; with none configured,
// spans are recorded and dropped, which still exercises span timing for
// tests via sdktrace options.
func InitTracing(ctx context.Context, opts ...sdktrace.TracerProviderOption) func(context.Context) error {
	provider := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(provider)
	return provider.Shutdown
}
