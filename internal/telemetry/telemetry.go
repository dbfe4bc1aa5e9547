// Package telemetry provides OpenTelemetry tracing for layout generation.
//
// Every roomscatter invocation is one service instance. The resource carries
// the command and the layout settings it ran with, so spans from a failed
// layout can be matched to the configuration that produced them.
package telemetry

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const serviceName = "roomscatter"

// scopePrefix names tracers after the package that owns them.
const scopePrefix = "github.com/samdwyer/roomscatter/internal/"

// Run describes the invocation spans are exported for.
type Run struct {
	Version string
	Command string
	Seed    int64 // 0 when the seed is picked at generation time
	Rooms   int
	Passes  int
}

func (r Run) attributes() []attribute.KeyValue {
	version := r.Version
	if version == "" {
		version = "dev"
	}
	attrs := []attribute.KeyValue{
		attribute.String("service.name", serviceName),
		attribute.String("service.version", version),
		attribute.String("service.instance.id", uuid.NewString()),
		attribute.String("roomscatter.command", r.Command),
		attribute.Int("roomscatter.layout.total_rooms", r.Rooms),
		attribute.Int("roomscatter.layout.max_passes", r.Passes),
	}
	if r.Seed != 0 {
		attrs = append(attrs, attribute.Int64("roomscatter.seed", r.Seed))
	}
	return attrs
}

// Setup exports spans for run to the collector named by the standard
// OTEL_EXPORTER_OTLP_* variables. The returned shutdown flushes pending
// spans and must be called on every exit path.
func Setup(ctx context.Context, run Run) (shutdown func(context.Context) error, err error) {
	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
	}
	return Install(ctx, run, sdktrace.WithBatcher(exporter))
}

// Install registers a tracer provider built from opts as the global
// provider. Tests use it with a span recorder instead of an exporter.
func Install(ctx context.Context, run Run, opts ...sdktrace.TracerProviderOption) (shutdown func(context.Context) error, err error) {
	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithOS(),
		resource.WithProcessRuntimeVersion(),
		resource.WithAttributes(run.attributes()...),
	)
	// A missing host name still leaves a usable resource.
	if err != nil && !errors.Is(err, resource.ErrPartialResource) {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(append(opts, sdktrace.WithResource(res))...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

// Tracer returns the tracer for an internal package, e.g. Tracer("world").
func Tracer(pkg string) trace.Tracer {
	return otel.GetTracerProvider().Tracer(scopePrefix + pkg)
}

// NoopTracer returns a tracer that records nothing.
func NoopTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer(scopePrefix + "noop")
}
