package mysql

import (
	"errors"

	mysqldriver "github.com/go-sql-driver/mysql"
)

// errDuplicateEntry is the MySQL error number for a violation of a unique
// index, ER_DUP_ENTRY.
const errDuplicateEntry = 1062

// isDuplicateEntry returns true if err indicates that a row could not be
// inserted because its primary key is already in use.
func isDuplicateEntry(err error) bool {
	var e *mysqldriver.MySQLError
	return errors.As(err, &e) && e.Number == errDuplicateEntry
}
