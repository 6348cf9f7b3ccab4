package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SearchMetrics records search counters through an OpenTelemetry meter.
type SearchMetrics struct {
	states   metric.Int64Counter
	duration metric.Float64Histogram
	timeouts metric.Int64Counter
}

// NewSearchMetrics registers the search instruments on meter.
func NewSearchMetrics(meter metric.Meter) (*SearchMetrics, error) {
	states, err := meter.Int64Counter("search.states_visited",
		metric.WithDescription("Board states expanded by move searches"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create states counter: %w", err)
	}
	duration, err := meter.Float64Histogram("search.duration",
		metric.WithDescription("Wall-clock time of a move search"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}
	timeouts, err := meter.Int64Counter("search.timeouts",
		metric.WithDescription("Searches cut short by their deadline"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create timeout counter: %w", err)
	}
	return &SearchMetrics{states: states, duration: duration, timeouts: timeouts}, nil
}

// RecordSearch adds one finished search.
func (m *SearchMetrics) RecordSearch(ctx context.Context, algorithm string, states int, elapsed time.Duration, timedOut bool) {
	attrs := metric.WithAttributes(attribute.String("algorithm", algorithm))
	m.states.Add(ctx, int64(states), attrs)
	m.duration.Record(ctx, float64(elapsed)/float64(time.Millisecond), attrs)
	if timedOut {
		m.timeouts.Add(ctx, 1, attrs)
	}
}
