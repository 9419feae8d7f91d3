// Package memorypersistence is an in-memory implementation of instance.Store.
//
// It provides no coordination between processes. It is intended for tests and
// for single-process development environments.
package memorypersistence
