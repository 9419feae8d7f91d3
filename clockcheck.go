package nodeid

import (
	"context"
	"time"

	"github.com/beevik/ntp"
	"github.com/dogmatiq/dodeca/logging"
	"github.com/dogmatiq/linger"
)

var (
	// DefaultClockCheckThreshold is the default clock offset above which the
	// clock check logs a warning.
	//
	// It is overridden by the threshold passed to the WithClockCheck() option.
	DefaultClockCheckThreshold = 500 * time.Millisecond

	// DefaultClockCheckTimeout is the longest time allowed for the NTP server
	// to respond to the clock check. A sooner context deadline takes
	// precedence.
	DefaultClockCheckTimeout = 5 * time.Second
)

// queryClockOffset returns the offset of the local clock from the NTP server
// at host.
var queryClockOffset = func(ctx context.Context, host string) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	timeout := DefaultClockCheckTimeout
	if d, ok := linger.FromContextDeadline(ctx); ok && d < timeout {
		if d <= 0 {
			return 0, context.DeadlineExceeded
		}
		timeout = d
	}

	res, err := ntp.QueryWithOptions(
		host,
		ntp.QueryOptions{Timeout: timeout},
	)
	if err != nil {
		return 0, err
	}

	if err := res.Validate(); err != nil {
		return 0, err
	}

	return res.ClockOffset, nil
}

// clockCheck compares the local clock against an NTP server.
//
// Instance records expire based on the local clock of whichever process
// loads them, so a skewed clock can cause a live FID to be reclaimed.
type clockCheck struct {
	Host      string
	Threshold time.Duration
}

// Run performs the check and logs the result. It reports whether the offset is
// within the threshold.
//
// The NTP query is bounded by DefaultClockCheckTimeout and by the deadline of
// ctx, whichever is sooner.
func (c *clockCheck) Run(ctx context.Context, logger logging.Logger) bool {
	offset, err := queryClockOffset(ctx, c.Host)
	if err != nil {
		logging.Log(
			logger,
			"unable to check the local clock against %s: %s",
			c.Host,
			err,
		)
		return false
	}

	if offset.Abs() > c.Threshold {
		logging.Log(
			logger,
			"the local clock is offset from %s by %s, which exceeds the %s threshold, live FIDs may be reclaimed early",
			c.Host,
			offset,
			c.Threshold,
		)
		return false
	}

	logging.Debug(
		logger,
		"the local clock is offset from %s by %s",
		c.Host,
		offset,
	)

	return true
}
