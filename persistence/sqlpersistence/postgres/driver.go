package postgres

import (
	"context"
	"database/sql"

	"github.com/tethysim/nodeid/internal/x/sqlx"
)

// Driver is an implementation of sqlpersistence.Driver for PostgreSQL.
var Driver errorConverter

type driver struct{}

// IsCompatibleWith returns nil if this driver can be used with db.
func (driver) IsCompatibleWith(ctx context.Context, db *sql.DB) error {
	// Verify that we're using PostgreSQL and that $1-style placeholders are
	// supported.
	return db.QueryRowContext(
		ctx,
		`SELECT pg_backend_pid() WHERE 1 = $1`,
		1,
	).Err()
}

// CreateSchema creates any SQL schema elements required by the driver.
func (driver) CreateSchema(ctx context.Context, db *sql.DB) (err error) {
	defer sqlx.Recover(&err)

	sqlx.Exec(ctx, db, `CREATE SCHEMA IF NOT EXISTS nodeid`)

	sqlx.Exec(
		ctx,
		db,
		`CREATE TABLE IF NOT EXISTS nodeid.server_instance (
			id              INTEGER NOT NULL,
			version         BIGINT NOT NULL DEFAULT 0,
			check_time      TIMESTAMP(6) WITH TIME ZONE NOT NULL,
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
			boot_id         UUID NOT NULL,

			PRIMARY KEY (id)
		)`,
	)

	return nil
}

// DropSchema removes any SQL schema elements created by CreateSchema().
func (driver) DropSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `DROP SCHEMA IF EXISTS nodeid CASCADE`)
	return err
}
