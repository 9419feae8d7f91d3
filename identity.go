package nodeid

import (
	"context"
	"fmt"
	"time"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/tethysim/nodeid/allocate"
	"github.com/tethysim/nodeid/heartbeat"
	"github.com/tethysim/nodeid/instance"
)

// Identity is a FID held by this process.
//
// The FID remains held for as long as the heartbeat keeps the instance record
// fresh. Close() stops the heartbeat, after which the FID can be reclaimed by
// another process once the expiry window elapses.
type Identity struct {
	record          instance.Record
	applicationName string
	version         string

	cancel context.CancelFunc
	done   chan struct{}
}

// New acquires a FID from the given store and starts the heartbeat that keeps
// it held.
//
// It blocks until the FID is acquired or allocation fails. It never blocks for
// longer than the allocation timeout, even if the store does not honor context
// cancellation. If the timeout elapses the returned error matches
// allocate.ErrAllocationTimeout.
func New(
	ctx context.Context,
	store instance.Store,
	options ...Option,
) (*Identity, error) {
	opts := resolveOptions(options...)

	if opts.ClockCheck != nil {
		opts.ClockCheck.Run(ctx, opts.Logger)
	}

	a := &allocate.Allocator{
		Store:        store,
		Sampler:      opts.Sampler,
		ExpiryWindow: opts.ExpiryWindow,
		Timeout:      opts.AllocationTimeout,
		Clock:        opts.Clock,
		Logger:       opts.Logger,
		Telemetry:    &opts.Telemetry,
	}

	type outcome struct {
		Result allocate.Result
		Err    error
	}

	results := make(chan outcome, 1)

	go func() {
		res, err := a.Allocate(ctx)
		results <- outcome{res, err}
	}()

	timer := opts.Clock.NewTimer(opts.AllocationTimeout)
	defer timer.Stop()

	var res allocate.Result

	select {
	case <-ctx.Done():
		return nil, ctx.Err()

	case <-timer.Chan():
		logging.Log(
			opts.Logger,
			"the store did not respond within the %s allocation timeout",
			opts.AllocationTimeout,
		)

		return nil, fmt.Errorf(
			"%w after %s: %w",
			allocate.ErrAllocationTimeout,
			opts.AllocationTimeout,
			context.DeadlineExceeded,
		)

	case o := <-results:
		if o.Err != nil {
			return nil, o.Err
		}
		res = o.Result
	}

	hbctx, cancel := context.WithCancel(context.Background())

	id := &Identity{
		record:          res.Record,
		applicationName: opts.ApplicationName,
		version:         opts.Version,
		cancel:          cancel,
		done:            make(chan struct{}),
	}

	r := &heartbeat.Reporter{
		Store:     store,
		ID:        res.ID,
		Period:    opts.HeartbeatPeriod,
		Clock:     opts.Clock,
		Logger:    opts.Logger,
		Telemetry: &opts.Telemetry,
	}

	go func() {
		defer close(id.done)
		r.Run(hbctx) // nolint:errcheck
	}()

	logging.Log(
		opts.Logger,
		"%s %s is running as FID %d",
		id.applicationName,
		id.version,
		id.ID(),
	)

	return id, nil
}

// ID returns the FID.
func (i *Identity) ID() int {
	return i.record.ID
}

// ApplicationName returns the name of the application that owns the FID.
func (i *Identity) ApplicationName() string {
	return i.applicationName
}

// Version returns the semantic version of the application that owns the FID.
func (i *Identity) Version() string {
	return i.version
}

// AllocatedAt returns the check time written when the FID was acquired.
func (i *Identity) AllocatedAt() time.Time {
	return i.record.CheckTime
}

// Record returns the instance record as it was written when the FID was
// acquired.
func (i *Identity) Record() instance.Record {
	return i.record
}

// Close stops the heartbeat and waits for it to finish.
//
// The instance record is left in the store, it becomes reclaimable once the
// expiry window elapses.
func (i *Identity) Close() error {
	i.cancel()
	<-i.done
	return nil
}

type contextKey struct{}

// NewContext returns a copy of ctx that carries id.
func NewContext(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity carried by ctx, if any.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(*Identity)
	return id, ok
}
