package sqlx

import "database/sql"

// Scanner reads the columns of the current row into dest. It is satisfied by
// *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

var (
	_ Scanner = (*sql.Row)(nil)
	_ Scanner = (*sql.Rows)(nil)
)
