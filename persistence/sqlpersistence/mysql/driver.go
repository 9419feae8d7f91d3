package mysql

import (
	"context"
	"database/sql"

	"github.com/tethysim/nodeid/internal/x/sqlx"
)

// Driver is an implementation of sqlpersistence.Driver for MySQL.
var Driver driver

type driver struct{}

// IsCompatibleWith returns nil if this driver can be used with db.
func (driver) IsCompatibleWith(ctx context.Context, db *sql.DB) error {
	// Verify that ?-style placeholders are supported.
	err := db.QueryRowContext(
		ctx,
		`SELECT ?`,
		1,
	).Err()

	if err != nil {
		return err
	}

	// Verify that we're using something compatible with MySQL (because the SHOW
	// VARIABLES syntax is supported) and that InnoDB is available.
	return db.QueryRowContext(
		ctx,
		`SHOW VARIABLES LIKE "innodb_page_size"`,
	).Err()
}

// CreateSchema creates any SQL schema elements required by the driver.
func (driver) CreateSchema(ctx context.Context, db *sql.DB) (err error) {
	defer sqlx.Recover(&err)

	sqlx.Exec(
		ctx,
		db,
		`CREATE TABLE IF NOT EXISTS server_instance (
			id              INT NOT NULL,
			version         BIGINT NOT NULL DEFAULT 0,
			check_time      BIGINT NOT NULL,
			host_name       VARCHAR(255) NOT NULL,
			host_address    VARCHAR(255) NOT NULL,
			os_name         VARCHAR(255) NOT NULL,
			os_version      VARCHAR(255) NOT NULL,
			os_arch         VARCHAR(255) NOT NULL,
			os_user         VARCHAR(255) NOT NULL,
			runtime_name    VARCHAR(255) NOT NULL,
			runtime_version VARCHAR(255) NOT NULL,
			runtime_vendor  VARCHAR(255) NOT NULL,
			work_dir        TEXT NOT NULL,
			pid             INT NOT NULL,
			boot_id         CHAR(36) NOT NULL,

			PRIMARY KEY (id)
		) ENGINE=InnoDB`,
	)

	return nil
}

// DropSchema removes any SQL schema elements created by CreateSchema().
func (driver) DropSchema(ctx context.Context, db *sql.DB) (err error) {
	defer sqlx.Recover(&err)

	sqlx.Exec(ctx, db, `DROP TABLE IF EXISTS server_instance`)

	return nil
}
