package telemetry

import (
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

// instrumentationName is the name reported to OpenTelemetry for all tracers
// and meters created by this module.
const instrumentationName = "github.com/tethysim/nodeid"

// Provider provides Recorder instances scoped to particular subsystems.
//
// The zero value of a *Provider is equivalent to a provider configured with
// no-op tracer and meter providers.
type Provider struct {
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// Recorder records traces and metrics for a particular subsystem.
type Recorder struct {
	tracer trace.Tracer
	meter  metric.Meter
	prefix string
}

// Recorder returns a new Recorder whose instruments are named with the given
// subsystem prefix, such as "nodeid.allocation".
func (p *Provider) Recorder(subsystem string) *Recorder {
	var (
		tracerProvider trace.TracerProvider
		meterProvider  metric.MeterProvider
	)

	if p != nil {
		tracerProvider = p.TracerProvider
		meterProvider = p.MeterProvider
	}

	if tracerProvider == nil {
		tracerProvider = nooptrace.NewTracerProvider()
	}

	if meterProvider == nil {
		meterProvider = noopmetric.NewMeterProvider()
	}

	return &Recorder{
		tracer: tracerProvider.Tracer(instrumentationName),
		meter:  meterProvider.Meter(instrumentationName),
		prefix: subsystem,
	}
}
