package heartbeat

import (
	"context"
	"sync"
	"time"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/jonboulle/clockwork"
	"github.com/tethysim/nodeid/instance"
	"github.com/tethysim/nodeid/internal/telemetry"
	"github.com/tethysim/nodeid/internal/x/loggingx"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultPeriod is the default interval between heartbeats.
var DefaultPeriod = 5 * time.Minute

// Reporter renews the check time of a single instance record at a fixed
// interval.
//
// It does not verify that the record still belongs to this process. See Lost.
type Reporter struct {
	// Store is the store that holds the instance record.
	Store instance.Store

	// ID is the FID whose record is renewed.
	ID int

	// Period is the interval between heartbeats. If it is zero, DefaultPeriod
	// is used.
	Period time.Duration

	// Timeout is the time allowed for each heartbeat. If it is zero, the
	// period is used.
	Timeout time.Duration

	// Clock is the source of heartbeat times. If it is nil, the real clock is
	// used.
	Clock clockwork.Clock

	// Logger is the target for log messages. If it is nil,
	// logging.DefaultLogger is used.
	Logger logging.Logger

	// Telemetry provides the meter. It may be nil.
	Telemetry *telemetry.Provider

	once  sync.Once
	beats telemetry.Counter
}

// Run renews the check time every period until ctx is canceled.
//
// The first heartbeat occurs one period after Run() is called. Failed
// heartbeats are logged and never cause Run() to return. It always returns a
// non-nil error, the error from ctx.
func (r *Reporter) Run(ctx context.Context) error {
	period := r.period()

	logging.Log(
		r.logger(),
		"reporting liveness every %s",
		period,
	)

	ticker := r.clock().NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			r.Tick(ctx)
		}
	}
}

// Tick performs a single heartbeat.
func (r *Reporter) Tick(ctx context.Context) Outcome {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = r.period()
	}

	tickCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	now := r.clock().Now()
	ok, err := r.Store.TouchCheckTime(tickCtx, r.ID, now)

	var o Outcome

	switch {
	case err != nil:
		o = Faulted

		if ctx.Err() == nil {
			logging.Log(
				r.logger(),
				"unable to renew heartbeat, retrying in %s: %s",
				r.period(),
				err,
			)
		}
	case !ok:
		o = Lost

		logging.Log(
			r.logger(),
			"unable to renew heartbeat, the instance record no longer exists",
		)
	default:
		o = Renewed

		logging.Debug(
			r.logger(),
			"heartbeat renewed at %s",
			now.Format(time.RFC3339),
		)
	}

	r.counter().Add(ctx, 1, attribute.String("outcome", o.String()))

	return o
}

func (r *Reporter) period() time.Duration {
	if r.Period > 0 {
		return r.Period
	}
	return DefaultPeriod
}

func (r *Reporter) clock() clockwork.Clock {
	if r.Clock != nil {
		return r.Clock
	}
	return clockwork.NewRealClock()
}

func (r *Reporter) logger() logging.Logger {
	l := r.Logger
	if l == nil {
		l = logging.DefaultLogger
	}
	return loggingx.WithFID(l, r.ID)
}

func (r *Reporter) counter() telemetry.Counter {
	r.once.Do(func() {
		r.beats = r.Telemetry.
			Recorder("nodeid.heartbeat").
			Counter(
				"beats",
				"{beat}",
				"The number of heartbeats, by outcome.",
			)
	})

	return r.beats
}
