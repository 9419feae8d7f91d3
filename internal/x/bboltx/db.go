package bboltx

import (
	"context"
	"os"
	"time"

	"github.com/dogmatiq/linger"
	"go.etcd.io/bbolt"
)

// DefaultMode is the file mode used by Open() when none is given.
const DefaultMode os.FileMode = 0600

// Open opens the database at path, creating it if necessary.
//
// Opening blocks while another process holds the file lock. The wait is
// bounded by the deadline of ctx, or by opts.Timeout if that is sooner. If the
// lock can not be acquired in time the error is context.DeadlineExceeded.
func Open(
	ctx context.Context,
	path string,
	mode os.FileMode,
	opts *bbolt.Options,
) (*bbolt.DB, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if mode == 0 {
		mode = DefaultMode
	}

	db, err := bbolt.Open(path, mode, withLockTimeout(ctx, opts))
	if err != nil && err.Error() == "timeout" {
		return nil, context.DeadlineExceeded
	}

	return db, err
}

// withLockTimeout returns a copy of opts with its timeout clamped to the
// deadline of ctx. A zero bbolt timeout means "wait forever".
func withLockTimeout(ctx context.Context, opts *bbolt.Options) *bbolt.Options {
	clone := *bbolt.DefaultOptions
	if opts != nil {
		clone = *opts
	}

	remaining, ok := linger.FromContextDeadline(ctx)
	if !ok {
		return &clone
	}

	// bbolt treats a non-positive timeout as no timeout at all.
	remaining = max(remaining, time.Millisecond)

	if clone.Timeout == 0 || clone.Timeout > remaining {
		clone.Timeout = remaining
	}

	return &clone
}
