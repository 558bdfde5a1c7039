package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const metricNamespace = "github.com/homechef/api"

// Estimate outcomes recorded on homechef.estimates.
const (
	OutcomeOK         = "ok"
	OutcomeInvalid    = "invalid"
	OutcomeNotFound   = "not_found"
	OutcomeSuperseded = "superseded"
	OutcomeError      = "error"
)

// EstimateMetrics records estimator activity.
type EstimateMetrics struct {
	count    metric.Int64Counter
	cost     metric.Float64Histogram
	duration metric.Float64Histogram
}

// NewEstimateMetrics registers instruments on meter, falling back to the global provider.
func NewEstimateMetrics(meter metric.Meter) (*EstimateMetrics, error) {
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(metricNamespace)
	}
	count, err := meter.Int64Counter(
		"homechef.estimates",
		metric.WithDescription("Estimates computed, by outcome and time policy"),
	)
	if err != nil {
		return nil, err
	}
	cost, err := meter.Float64Histogram(
		"homechef.estimate.cost",
		metric.WithUnit("{XAF}"),
		metric.WithDescription("Total cost of successful estimates"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(
		"homechef.estimate.duration",
		metric.WithUnit("ms"),
		metric.WithDescription("Time spent computing an estimate"),
	)
	if err != nil {
		return nil, err
	}
	return &EstimateMetrics{count: count, cost: cost, duration: duration}, nil
}

// Record notes one estimate. Cost is only recorded for successful outcomes. A nil receiver is a no-op.
func (m *EstimateMetrics) Record(ctx context.Context, outcome, policy string, cost float64, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("time_policy", policy),
	)
	m.count.Add(ctx, 1, attrs)
	m.duration.Record(ctx, float64(elapsed)/float64(time.Millisecond), attrs)
	if outcome == OutcomeOK {
		m.cost.Record(ctx, cost, metric.WithAttributes(attribute.String("time_policy", policy)))
	}
}
