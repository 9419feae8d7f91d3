// Package boltpersistence is an implementation of instance.Store that uses a
// BoltDB database.
//
// BoltDB permits a single writer at a time, so the conditional writes are
// atomic. FileStore opens the database file for each operation, which allows
// separate processes on the same host to share one file.
package boltpersistence
