package sqlpersistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/tethysim/nodeid/instance"
)

// Driver is used to interface with the underlying SQL database.
type Driver interface {
	// IsCompatibleWith returns nil if this driver can be used with db.
	IsCompatibleWith(ctx context.Context, db *sql.DB) error

	// CreateSchema creates any SQL schema elements required by the driver.
	CreateSchema(ctx context.Context, db *sql.DB) error

	// DropSchema removes any SQL schema elements created by CreateSchema().
	DropSchema(ctx context.Context, db *sql.DB) error

	// SelectInstance selects the instance record with the given FID.
	//
	// It returns false if the row does not exist.
	SelectInstance(
		ctx context.Context,
		db *sql.DB,
		id int,
	) (instance.Record, bool, error)

	// InsertInstance inserts an instance record.
	//
	// It returns false if the row already exists.
	InsertInstance(
		ctx context.Context,
		db *sql.DB,
		r instance.Record,
	) (bool, error)

	// UpdateInstance updates an instance record and increments its version.
	//
	// It returns false if the row does not exist or r.Version is not current.
	UpdateInstance(
		ctx context.Context,
		db *sql.DB,
		r instance.Record,
	) (bool, error)

	// UpdateCheckTime sets the check time of an instance record.
	//
	// It returns false if the row does not exist.
	UpdateCheckTime(
		ctx context.Context,
		db *sql.DB,
		id int,
		t time.Time,
	) (bool, error)
}
