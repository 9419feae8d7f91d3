package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	"github.com/lib/pq"
	"github.com/tethysim/nodeid/instance"
)

// uniqueViolation is the SQLSTATE code for a unique constraint violation.
const uniqueViolation = "23505"

// isUniqueViolation returns true if err indicates that a row could not be
// inserted because its primary key is already in use.
//
// Both the pgx and pq drivers are recognized.
func isUniqueViolation(err error) bool {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == uniqueViolation
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}

	return false
}

// convertContextErrors converts PostgreSQL "query_canceled" errors into a
// context.Canceled or DeadlineExceeeded error.
//
// The "pq" postgres driver appears to prefer returning its own error if the
// context is canceled after a query is already started.
//
// See https://github.com/lib/pq/blob/master/go18_test.go#L90
func convertContextErrors(ctx context.Context, err error) error {
	if err != nil && ctx.Err() != nil {
		if strings.Contains(err.Error(), "canceling statement due to user request") {
			return ctx.Err()
		}
	}

	return err
}

// errorConverter is an implementation of sqlpersistence.Driver that decorates
// the PostgreSQL driver in order to convert native "query_canceled" errors into
// regular context.Canceled / DeadlineExceeded errors.
type errorConverter struct {
	d driver
}

func (d errorConverter) IsCompatibleWith(ctx context.Context, db *sql.DB) error {
	err := d.d.IsCompatibleWith(ctx, db)
	return convertContextErrors(ctx, err)
}

func (d errorConverter) CreateSchema(ctx context.Context, db *sql.DB) error {
	err := d.d.CreateSchema(ctx, db)
	return convertContextErrors(ctx, err)
}

func (d errorConverter) DropSchema(ctx context.Context, db *sql.DB) error {
	err := d.d.DropSchema(ctx, db)
	return convertContextErrors(ctx, err)
}

func (d errorConverter) SelectInstance(
	ctx context.Context,
	db *sql.DB,
	id int,
) (instance.Record, bool, error) {
	r, ok, err := d.d.SelectInstance(ctx, db, id)
	return r, ok, convertContextErrors(ctx, err)
}

func (d errorConverter) InsertInstance(
	ctx context.Context,
	db *sql.DB,
	r instance.Record,
) (bool, error) {
	ok, err := d.d.InsertInstance(ctx, db, r)
	return ok, convertContextErrors(ctx, err)
}

func (d errorConverter) UpdateInstance(
	ctx context.Context,
	db *sql.DB,
	r instance.Record,
) (bool, error) {
	ok, err := d.d.UpdateInstance(ctx, db, r)
	return ok, convertContextErrors(ctx, err)
}

func (d errorConverter) UpdateCheckTime(
	ctx context.Context,
	db *sql.DB,
	id int,
	t time.Time,
) (bool, error) {
	ok, err := d.d.UpdateCheckTime(ctx, db, id, t)
	return ok, convertContextErrors(ctx, err)
}
