package sqlite

import (
	"context"
	"database/sql"

	"github.com/tethysim/nodeid/internal/x/sqlx"
)

// Driver is an implementation of sqlpersistence.Driver for SQLite.
var Driver = driver{}

type driver struct{}

// IsCompatibleWith returns nil if this driver can be used with db.
func (driver) IsCompatibleWith(ctx context.Context, db *sql.DB) error {
	// Verify that we're using SQLite and that $1-style placeholders are
	// supported.
	return db.QueryRowContext(
		ctx,
		`SELECT sqlite_version() WHERE 1 = $1`,
		1,
	).Err()
}

// CreateSchema creates the schema elements required by the SQLite driver.
func (driver) CreateSchema(ctx context.Context, db *sql.DB) (err error) {
	defer sqlx.Recover(&err)

	sqlx.Exec(
		ctx,
		db,
		`CREATE TABLE IF NOT EXISTS server_instance (
			id              INTEGER NOT NULL PRIMARY KEY,
			version         INTEGER NOT NULL DEFAULT 0,
			check_time      INTEGER NOT NULL,
			host_name       TEXT NOT NULL,
			host_address    TEXT NOT NULL,
			os_name         TEXT NOT NULL,
			os_version      TEXT NOT NULL,
			os_arch         TEXT NOT NULL,
			os_user         TEXT NOT NULL,
			runtime_name    TEXT NOT NULL,
			runtime_version TEXT NOT NULL,
			runtime_vendor  TEXT NOT NULL,
			work_dir        TEXT NOT NULL,
			pid             INTEGER NOT NULL,
			boot_id         TEXT NOT NULL
		)`,
	)

	return nil
}

// DropSchema drops the schema elements required by the SQLite driver.
func (driver) DropSchema(ctx context.Context, db *sql.DB) (err error) {
	defer sqlx.Recover(&err)

	sqlx.Exec(ctx, db, `DROP TABLE IF EXISTS server_instance`)

	return nil
}
