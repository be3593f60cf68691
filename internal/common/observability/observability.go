package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Observability owns the otel meter and tracer providers for one process.
// A zero value is safe to use and records nothing.
type Observability struct {
	meterProvider    *metric.MeterProvider
	tracerProvider   *sdktrace.TracerProvider
	dispatchCounter  otelmetric.Int64Counter
	dispatchDuration otelmetric.Float64Histogram
}

// New registers global providers. Metrics are exported through the default prometheus registry.
func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return &Observability{}, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.1))),
	)
	otel.SetTracerProvider(tracerProvider)

	meter := provider.Meter(serviceName)

	dispatchCounter, err := meter.Int64Counter(
		"notifications.dispatched",
		otelmetric.WithDescription("Lead notification dispatches"),
	)
	if err != nil {
		return &Observability{meterProvider: provider, tracerProvider: tracerProvider}, err
	}

	dispatchDuration, err := meter.Float64Histogram(
		"notifications.duration",
		otelmetric.WithDescription("Lead notification dispatch duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return &Observability{meterProvider: provider, tracerProvider: tracerProvider}, err
	}

	return &Observability{
		meterProvider:    provider,
		tracerProvider:   tracerProvider,
		dispatchCounter:  dispatchCounter,
		dispatchDuration: dispatchDuration,
	}, nil
}

// RecordDispatch records one dispatcher call with its outcome label.
func (o *Observability) RecordDispatch(ctx context.Context, duration time.Duration, notificationType, outcome string) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("type", notificationType),
		attribute.String("outcome", outcome),
	)
	if o.dispatchCounter != nil {
		o.dispatchCounter.Add(ctx, 1, attrs)
	}
	if o.dispatchDuration != nil {
		o.dispatchDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil {
			return err
		}
	}
	if o.meterProvider != nil {
		return o.meterProvider.Shutdown(ctx)
	}
	return nil
}
