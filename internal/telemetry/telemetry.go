// Package telemetry wires OpenTelemetry tracing and metrics.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"gitlab.com/afonsoc/finance-tracker/internal/config"
)

const serviceName = "finance-tracker"

// Providers bundles the SDK providers so callers can shut them down.
type Providers struct {
	tracer *sdktrace.TracerProvider
	meter  *metric.MeterProvider
}

// Setup configures global tracer and meter providers per the exporter
// choice. With ExporterNone it installs nothing and returns an empty
// Providers whose Shutdown is a no-op.
func Setup(ctx context.Context, cfg *config.Config) (*Providers, error) {
	if cfg.OTelExporter == config.ExporterNone {
		return &Providers{}, nil
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
	))
	if err != nil {
		return nil, fmt.Errorf("build telemetry resource: %w", err)
	}

	var traceExp sdktrace.SpanExporter
	var metricExp metric.Exporter
	switch cfg.OTelExporter {
	case config.ExporterStdout:
		if traceExp, err = stdouttrace.New(); err != nil {
			return nil, fmt.Errorf("create stdout trace exporter: %w", err)
		}
		if metricExp, err = stdoutmetric.New(); err != nil {
			return nil, fmt.Errorf("create stdout metric exporter: %w", err)
		}
	case config.ExporterOTLP:
		traceExp, err = otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(cfg.OTelEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("create otlp trace exporter: %w", err)
		}
		metricExp, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(cfg.OTelEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("create otlp metric exporter: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown telemetry exporter %q", cfg.OTelExporter)
	}

	tracer := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExp),
		sdktrace.WithResource(res),
	)
	meter := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(metricExp)),
		metric.WithResource(res),
	)

	otel.SetTracerProvider(tracer)
	otel.SetMeterProvider(meter)

	return &Providers{tracer: tracer, meter: meter}, nil
}

// Shutdown flushes and stops the providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var firstErr error
	if p.tracer != nil {
		if err := p.tracer.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if p.meter != nil {
		if err := p.meter.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
