package sqlx

import (
	"context"
	"database/sql"
)

// Execer executes statements. It is satisfied by *sql.DB, *sql.Conn and
// *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Exec executes a statement on the given DB.
func Exec(
	ctx context.Context,
	db Execer,
	query string,
	args ...any,
) sql.Result {
	res, err := db.ExecContext(ctx, query, args...)
	Must(err)
	return res
}

// TryExecRow executes a statement on the given DB.
//
// It returns true if exactly one row was affected. Note that MySQL requires an
// actual change to occur to consider the row affected.
func TryExecRow(
	ctx context.Context,
	db Execer,
	query string,
	args ...any,
) bool {
	res := Exec(ctx, db, query, args...)

	n, err := res.RowsAffected()
	Must(err)

	return n == 1
}
