package instance

import (
	"context"
	"time"
)

// Store is an interface for persisting instance records.
//
// Every mutating operation is conditioned on either the absence of a record
// or the record's current version. The store's uniqueness constraint and
// version column are the only coordination primitive between processes.
//
// The boolean results report whether exactly one record was affected. A false
// result is never accompanied by an error; it represents a lost race, not a
// storage fault.
type Store interface {
	// Load loads the record with the given FID.
	//
	// It returns false if no such record exists.
	Load(ctx context.Context, id int) (Record, bool, error)

	// Insert inserts a new record.
	//
	// It returns false if a record with the same FID already exists.
	Insert(ctx context.Context, r Record) (bool, error)

	// Update overwrites an existing record.
	//
	// r.Version must be the version of the record as it was loaded. The stored
	// version becomes r.Version + 1. It returns false if the record does not
	// exist or r.Version is not current.
	Update(ctx context.Context, r Record) (bool, error)

	// TouchCheckTime sets the check time of the record with the given FID to t
	// without changing any other field.
	//
	// It returns false if the record does not exist.
	TouchCheckTime(ctx context.Context, id int, t time.Time) (bool, error)
}
