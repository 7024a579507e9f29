package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instruments holds the metric instruments floodr records against during
// dispatch. A nil *Instruments is valid and every method on it is a no-op,
// so callers never need to special-case "metrics disabled".
type Instruments struct {
	requestDuration   metric.Float64Histogram
	requestTotal      metric.Int64Counter
	longtailCancelled metric.Int64Counter
}

// NewInstruments creates the floodr.request.duration histogram and the
// floodr.request.total / floodr.longtail.cancelled.total counters on m.
func NewInstruments(m metric.Meter) (*Instruments, error) {
	duration, err := m.Float64Histogram(
		"floodr.request.duration",
		metric.WithDescription("per-request duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	total, err := m.Int64Counter(
		"floodr.request.total",
		metric.WithDescription("requests executed, tagged by outcome"),
	)
	if err != nil {
		return nil, err
	}

	cancelled, err := m.Int64Counter(
		"floodr.longtail.cancelled.total",
		metric.WithDescription("requests cancelled by the longtail controller"),
	)
	if err != nil {
		return nil, err
	}

	return &Instruments{
		requestDuration:   duration,
		requestTotal:      total,
		longtailCancelled: cancelled,
	}, nil
}

// RecordRequest records one completed request's duration on the histogram
// and increments the total counter, both tagged with the request's outcome.
func (i *Instruments) RecordRequest(ctx context.Context, seconds float64, statusCode int, ok bool) {
	if i == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.Bool("ok", ok),
		attribute.Int("status_code", statusCode),
	)
	i.requestDuration.Record(ctx, seconds, attrs)
	i.requestTotal.Add(ctx, 1, attrs)
}

// RecordCancelled increments the longtail-cancelled counter by n.
func (i *Instruments) RecordCancelled(ctx context.Context, n int64) {
	if i == nil || n <= 0 {
		return
	}
	i.longtailCancelled.Add(ctx, n)
}
