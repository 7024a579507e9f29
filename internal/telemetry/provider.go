package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config configures a Provider.
type Config struct {
	// CollectorEndpoint is the OTLP gRPC collector endpoint. Required for
	// either tracing or metrics to export anywhere.
	CollectorEndpoint string

	// EnableTracing turns on span creation and OTLP trace export.
	EnableTracing bool

	// EnableMetrics turns on the request duration histogram and counters.
	EnableMetrics bool

	// ServiceName names the resource attached to exported telemetry.
	ServiceName string
}

// Provider is the interface floodr's internals use for tracing and
// metrics. NewDisabled returns a Provider backed by no-op tracer/meter
// implementations so callers never need to special-case "observability
// off".
type Provider interface {
	Tracer() trace.Tracer
	Meter() metric.Meter
	Instruments() *Instruments
	Enabled() bool
	Shutdown(ctx context.Context) error
}

type provider struct {
	tracer      trace.Tracer
	meter       metric.Meter
	instruments *Instruments
	enabled     bool

	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
}

func (p *provider) Tracer() trace.Tracer      { return p.tracer }
func (p *provider) Meter() metric.Meter       { return p.meter }
func (p *provider) Instruments() *Instruments { return p.instruments }
func (p *provider) Enabled() bool             { return p.enabled }

func (p *provider) Shutdown(ctx context.Context) error {
	var firstErr error
	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NewDisabled returns a Provider whose Tracer and Meter are no-ops.
func NewDisabled() Provider {
	meter := otel.Meter("floodr")
	instruments, _ := NewInstruments(meter)
	return &provider{
		tracer:      noop.NewTracerProvider().Tracer("floodr"),
		meter:       meter,
		instruments: instruments,
	}
}

// New builds a Provider from cfg. When neither tracing nor metrics are
// enabled, it returns the same no-op provider NewDisabled does.
func New(ctx context.Context, cfg Config) (Provider, error) {
	if !cfg.EnableTracing && !cfg.EnableMetrics {
		return NewDisabled(), nil
	}
	if cfg.CollectorEndpoint == "" {
		return nil, fmt.Errorf("telemetry: collector endpoint required when tracing or metrics is enabled")
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "floodr"
	}
	res, err := sdkresource.New(ctx, sdkresource.WithAttributes(
		attribute.String("service.name", serviceName),
	))
	if err != nil {
		return nil, fmt.Errorf("telemetry: building resource: %w", err)
	}

	p := &provider{enabled: true}

	if cfg.EnableTracing {
		var exporter *otlptrace.Exporter
		exporter, err = otlptracegrpc.New(ctx, otlptracegrpc.WithEndpoint(cfg.CollectorEndpoint), otlptracegrpc.WithInsecure())
		if err != nil {
			return nil, fmt.Errorf("telemetry: building trace exporter: %w", err)
		}
		p.tracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
		)
		p.tracer = p.tracerProvider.Tracer("floodr")
	} else {
		p.tracer = noop.NewTracerProvider().Tracer("floodr")
	}

	if cfg.EnableMetrics {
		metricExporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint), otlpmetricgrpc.WithInsecure())
		if err != nil {
			return nil, fmt.Errorf("telemetry: building metric exporter: %w", err)
		}
		p.meterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(15*time.Second))),
			sdkmetric.WithResource(res),
		)
		p.meter = p.meterProvider.Meter("floodr")
	} else {
		p.meter = otel.Meter("floodr")
	}

	instruments, err := NewInstruments(p.meter)
	if err != nil {
		return nil, fmt.Errorf("telemetry: building instruments: %w", err)
	}
	p.instruments = instruments

	return p, nil
}
