package allocate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/dogmatiq/linger"
	"github.com/dogmatiq/linger/backoff"
	"github.com/jonboulle/clockwork"
	"github.com/tethysim/nodeid/instance"
	"github.com/tethysim/nodeid/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// DefaultExpiryWindow is the default time after which an instance record
	// without a heartbeat is considered abandoned.
	DefaultExpiryWindow = 1 * time.Hour

	// DefaultTimeout is the default time allowed to acquire a FID.
	DefaultTimeout = 10 * time.Second

	// DefaultBackoff is the default strategy used to delay the next attempt
	// after a candidate is abandoned.
	DefaultBackoff backoff.Strategy = backoff.WithTransforms(
		backoff.Exponential(5*time.Millisecond),
		linger.FullJitter,
		linger.Limiter(0, 250*time.Millisecond),
	)
)

// Allocator acquires a FID by racing other processes for instance records.
type Allocator struct {
	// Store is the store that holds the instance records.
	Store instance.Store

	// Sampler chooses candidate FIDs. If it is nil, a CandidateGenerator over
	// [MinFID, MaxFID(DefaultFIDBits)] is used.
	Sampler Sampler

	// Metadata describes this process. If it is the zero value,
	// instance.CurrentMetadata() is used.
	Metadata instance.Metadata

	// ExpiryWindow is the time after which a record without a heartbeat may be
	// reclaimed. If it is zero, DefaultExpiryWindow is used.
	ExpiryWindow time.Duration

	// Timeout is the total time allowed to acquire a FID. If it is zero,
	// DefaultTimeout is used.
	Timeout time.Duration

	// Backoff is the strategy used to delay the next attempt after a candidate
	// is abandoned. If it is nil, DefaultBackoff is used.
	Backoff backoff.Strategy

	// Clock is the source of check times. If it is nil, the real clock is used.
	Clock clockwork.Clock

	// Logger is the target for log messages. If it is nil,
	// logging.DefaultLogger is used.
	Logger logging.Logger

	// Telemetry provides the tracer and meter. It may be nil.
	Telemetry *telemetry.Provider
}

// Result is the outcome of a successful allocation.
type Result struct {
	// ID is the allocated FID.
	ID int

	// Record is the instance record as written by this process.
	Record instance.Record

	// Attempts is the number of candidates that were sampled.
	Attempts int

	// Reclaimed is true if the FID was taken over from an expired record.
	Reclaimed bool
}

// Allocate acquires a FID.
//
// It blocks until a FID is held, the store fails, or the timeout elapses. A
// lost race for a candidate is never reported to the caller. If the timeout
// elapses the returned error matches ErrAllocationTimeout; if the store fails
// it is a *StorageFault.
func (a *Allocator) Allocate(ctx context.Context) (res Result, err error) {
	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, a.timeout())
	defer cancel()

	m := a.newMachine()

	ctx, span := m.recorder.StartSpan(ctx, "allocate")
	defer func() {
		span.SetAttributes(
			attribute.Int("nodeid.attempts", res.Attempts),
			attribute.Bool("nodeid.reclaimed", res.Reclaimed),
		)
		if err == nil {
			span.SetAttributes(attribute.Int("nodeid.fid", res.ID))
		}
		span.End(err)
	}()

	res, err = m.run(ctx)
	if err == nil {
		return res, nil
	}

	var fault *StorageFault
	if errors.As(err, &fault) {
		logging.Log(m.logger, "unable to allocate a FID: %s", err)
		return res, err
	}

	if parent.Err() != nil {
		return res, parent.Err()
	}

	if ctx.Err() != nil {
		logging.Log(
			m.logger,
			"unable to allocate a FID within %s after %d attempt(s)",
			a.timeout(),
			res.Attempts,
		)

		return res, fmt.Errorf(
			"%w after %d attempt(s): %w",
			ErrAllocationTimeout,
			res.Attempts,
			context.DeadlineExceeded,
		)
	}

	return res, err
}

func (a *Allocator) newMachine() *machine {
	m := &machine{
		store:    a.Store,
		sampler:  a.Sampler,
		metadata: a.Metadata,
		window:   a.ExpiryWindow,
		backoff:  a.Backoff,
		clock:    a.Clock,
		logger:   a.Logger,
		recorder: a.Telemetry.Recorder("nodeid.allocation"),
	}

	if m.sampler == nil {
		m.sampler = CandidateGenerator{
			Min: MinFID,
			Max: MaxFID(DefaultFIDBits),
		}
	}

	if m.metadata == (instance.Metadata{}) {
		m.metadata = instance.CurrentMetadata()
	}

	if m.window == 0 {
		m.window = DefaultExpiryWindow
	}

	if m.backoff == nil {
		m.backoff = DefaultBackoff
	}

	if m.clock == nil {
		m.clock = clockwork.NewRealClock()
	}

	if m.logger == nil {
		m.logger = logging.DefaultLogger
	}

	m.attempts = m.recorder.Counter(
		"attempts",
		"{attempt}",
		"The number of candidate FIDs sampled, by outcome.",
	)

	return m
}

func (a *Allocator) timeout() time.Duration {
	if a.Timeout > 0 {
		return a.Timeout
	}
	return DefaultTimeout
}

// machine is the state of a single call to Allocator.Allocate().
type machine struct {
	store    instance.Store
	sampler  Sampler
	metadata instance.Metadata
	window   time.Duration
	backoff  backoff.Strategy
	clock    clockwork.Clock
	logger   logging.Logger
	recorder *telemetry.Recorder
	attempts telemetry.Counter

	state     State
	candidate int
	existing  instance.Record
	result    Result
}

// run drives the state machine until it reaches a terminal state.
func (m *machine) run(ctx context.Context) (Result, error) {
	m.state = Sampling

	for {
		// A write accepted by the store holds the FID, even if the deadline
		// passed while it was being committed.
		if m.state == Succeeded {
			return m.result, nil
		}

		if ctx.Err() != nil {
			m.state = Failed
			return m.result, ctx.Err()
		}

		var err error

		switch m.state {
		case Sampling:
			err = m.sample()
		case Probing:
			err = m.probe(ctx)
		case Inserting:
			err = m.insert(ctx)
		case Reclaiming:
			err = m.reclaim(ctx)
		case Retrying:
			err = m.retry(ctx)
		}

		if err != nil {
			m.state = Failed
			return m.result, err
		}
	}
}

func (m *machine) sample() error {
	c, err := m.sampler.Sample()
	if err != nil {
		return err
	}

	m.result.Attempts++
	m.candidate = c
	m.state = Probing

	return nil
}

func (m *machine) probe(ctx context.Context) error {
	r, ok, err := m.store.Load(ctx, m.candidate)
	if err != nil {
		return m.fault(ctx, err)
	}

	if !ok {
		m.state = Inserting
		return nil
	}

	now := m.clock.Now()

	if !r.IsExpired(now, m.window) {
		logging.Debug(
			m.logger,
			"FID %d is held by a live instance on %s (pid %d, last checked %s ago)",
			m.candidate,
			r.Metadata.HostName,
			r.Metadata.PID,
			r.Age(now),
		)

		m.abandon(ctx, "live")
		return nil
	}

	logging.Log(
		m.logger,
		"FID %d was abandoned by %s (pid %d, last checked %s ago), reclaiming at version %d",
		m.candidate,
		r.Metadata.HostName,
		r.Metadata.PID,
		r.Age(now),
		r.Version,
	)

	m.existing = r
	m.state = Reclaiming

	return nil
}

func (m *machine) insert(ctx context.Context) error {
	r := instance.NewRecord(m.candidate, m.clock.Now(), m.metadata)

	ok, err := m.store.Insert(ctx, r)
	if err != nil {
		return m.fault(ctx, err)
	}

	if !ok {
		logging.Debug(
			m.logger,
			"FID %d was claimed by another instance before it could be inserted",
			m.candidate,
		)

		m.abandon(ctx, "conflict")
		return nil
	}

	m.succeed(ctx, r, false)
	return nil
}

func (m *machine) reclaim(ctx context.Context) error {
	r := instance.Record{
		ID:        m.candidate,
		Version:   m.existing.Version,
		CheckTime: m.clock.Now(),
		Metadata:  m.metadata,
	}

	ok, err := m.store.Update(ctx, r)
	if err != nil {
		return m.fault(ctx, err)
	}

	if !ok {
		logging.Debug(
			m.logger,
			"FID %d changed after version %d was loaded, it was reclaimed or renewed by another instance",
			m.candidate,
			m.existing.Version,
		)

		m.abandon(ctx, "conflict")
		return nil
	}

	r.Version++
	m.succeed(ctx, r, true)

	return nil
}

func (m *machine) retry(ctx context.Context) error {
	d := m.backoff(nil, uint(m.result.Attempts-1))

	if d > 0 {
		if err := linger.Sleep(ctx, d); err != nil {
			return err
		}
	}

	m.state = Sampling
	return nil
}

// abandon moves to the Retrying state, recording the reason the current
// candidate could not be claimed.
func (m *machine) abandon(ctx context.Context, outcome string) {
	m.attempts.Add(ctx, 1, attribute.String("outcome", outcome))
	m.state = Retrying
}

func (m *machine) succeed(ctx context.Context, r instance.Record, reclaimed bool) {
	outcome := "inserted"
	if reclaimed {
		outcome = "reclaimed"
	}
	m.attempts.Add(ctx, 1, attribute.String("outcome", outcome))

	m.result.ID = r.ID
	m.result.Record = r
	m.result.Reclaimed = reclaimed
	m.state = Succeeded

	logging.Log(
		m.logger,
		"allocated FID %d (%s, version %d) after %d attempt(s)",
		r.ID,
		outcome,
		r.Version,
		m.result.Attempts,
	)
}

// fault returns the error to report when the store fails.
//
// Errors caused by the allocation deadline or by the caller canceling ctx are
// returned as-is so that Allocate() can report them accurately.
func (m *machine) fault(ctx context.Context, err error) error {
	if ctx.Err() != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)) {
		return err
	}

	m.attempts.Add(ctx, 1, attribute.String("outcome", "fault"))

	return &StorageFault{
		State:     m.state,
		Candidate: m.candidate,
		Cause:     err,
	}
}
