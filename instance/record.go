package instance

import "time"

// Record is the persisted state of the server instance that owns a FID.
type Record struct {
	// ID is the FID, and the primary key of the record.
	ID int

	// Version is the optimistic concurrency counter. It is zero when the record
	// is first inserted and is incremented by every accepted update.
	Version int64

	// CheckTime is the time of the last heartbeat, or the time at which the
	// record was created or reclaimed.
	CheckTime time.Time

	// Metadata describes the process that owns the record.
	Metadata Metadata
}

// NewRecord returns a record for a newly claimed FID.
func NewRecord(id int, now time.Time, md Metadata) Record {
	return Record{
		ID:        id,
		Version:   0,
		CheckTime: now,
		Metadata:  md,
	}
}

// IsExpired returns true if the record's owner has not renewed its heartbeat
// for longer than window, as of now.
//
// A record whose age is exactly equal to window is still live.
func (r Record) IsExpired(now time.Time, window time.Duration) bool {
	return now.Sub(r.CheckTime) > window
}

// Age returns the time elapsed since the record's last heartbeat.
func (r Record) Age(now time.Time) time.Duration {
	return now.Sub(r.CheckTime)
}
