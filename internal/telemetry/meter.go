package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Counter is a monotonic counter instrument.
type Counter struct {
	c metric.Int64Counter
}

// Counter returns a new counter instrument named "<subsystem>.<name>".
//
// If the meter rejects the instrument a no-op counter is returned; telemetry
// failures never affect the behavior of the subsystem.
func (r *Recorder) Counter(name, unit, desc string) Counter {
	c, err := r.meter.Int64Counter(
		r.prefix+"."+name,
		metric.WithUnit(unit),
		metric.WithDescription(desc),
	)
	if err != nil {
		return Counter{}
	}

	return Counter{c}
}

// Add increments the counter by n.
func (c Counter) Add(ctx context.Context, n int64, attrs ...attribute.KeyValue) {
	if c.c == nil {
		return
	}

	c.c.Add(ctx, n, metric.WithAttributes(attrs...))
}
