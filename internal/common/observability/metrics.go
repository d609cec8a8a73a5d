// internal/common/observability/metrics.go
package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider     *metric.MeterProvider
	meter             otelmetric.Meter
	screeningCounter  otelmetric.Int64Counter
	screeningDuration otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	screeningCounter, _ := meter.Int64Counter(
		"screenings.processed",
		otelmetric.WithDescription("Number of entity screenings processed"),
	)

	screeningDuration, _ := meter.Float64Histogram(
		"screenings.duration",
		otelmetric.WithDescription("Entity screening duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:     provider,
		meter:             meter,
		screeningCounter:  screeningCounter,
		screeningDuration: screeningDuration,
	}
}

func (o *Observability) RecordScreening(ctx context.Context, status string) {
	if o.screeningCounter != nil {
		o.screeningCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordScreeningDuration(ctx context.Context, duration time.Duration, status string) {
	if o.screeningDuration != nil {
		o.screeningDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
