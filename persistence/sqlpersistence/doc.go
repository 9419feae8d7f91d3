// Package sqlpersistence is an implementation of instance.Store that uses an
// SQL database.
//
// MySQL, PostgreSQL and SQLite are supported. The driver is selected
// automatically unless one is specified explicitly.
package sqlpersistence
