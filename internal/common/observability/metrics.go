// internal/common/observability/metrics.go
package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability exposes turn-level otel instruments through a Prometheus reader.
type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	turnCounter   otelmetric.Int64Counter
	turnDuration  otelmetric.Float64Histogram
	stageFailures otelmetric.Int64Counter
	tracing       *Tracing
}

// New registers the exporter with reg. Pass prometheus.DefaultRegisterer to
// serve the instruments on the process /metrics endpoint.
func New(serviceName string, reg prometheus.Registerer) (*Observability, error) {
	exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	turnCounter, err := meter.Int64Counter(
		"advisor_turns_processed",
		otelmetric.WithDescription("Number of conversation turns processed"),
	)
	if err != nil {
		return nil, err
	}

	turnDuration, err := meter.Float64Histogram(
		"advisor_turn_duration",
		otelmetric.WithDescription("Conversation turn processing duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	stageFailures, err := meter.Int64Counter(
		"advisor_stages_failed",
		otelmetric.WithDescription("Number of pipeline stages that failed"),
	)
	if err != nil {
		return nil, err
	}

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		turnCounter:   turnCounter,
		turnDuration:  turnDuration,
		stageFailures: stageFailures,
	}, nil
}

// WithTracing attaches a tracer provider so Shutdown flushes it too.
func (o *Observability) WithTracing(t *Tracing) *Observability {
	o.tracing = t
	return o
}

func (o *Observability) RecordTurn(ctx context.Context, nextSlot string, duration time.Duration, failedStages int) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("next_slot", nextSlot),
		attribute.Bool("degraded", failedStages > 0),
	)
	o.turnCounter.Add(ctx, 1, attrs)
	o.turnDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	if failedStages > 0 {
		o.stageFailures.Add(ctx, int64(failedStages), otelmetric.WithAttributes(attribute.String("next_slot", nextSlot)))
	}
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var err error
	if o.meterProvider != nil {
		err = o.meterProvider.Shutdown(ctx)
	}
	if o.tracing != nil {
		if terr := o.tracing.Shutdown(ctx); terr != nil && err == nil {
			err = terr
		}
	}
	return err
}
