package boltpersistence

import (
	"context"
	"os"
	"time"

	"github.com/tethysim/nodeid/instance"
	"github.com/tethysim/nodeid/internal/x/bboltx"
	"go.etcd.io/bbolt"
	"go.uber.org/multierr"
)

// FileStore is an implementation of instance.Store that opens a BoltDB
// database file for the duration of each operation.
//
// BoltDB holds an exclusive lock on the file while it is open, which
// serializes operations from separate processes on the same host.
type FileStore struct {
	// Path is the path to the BoltDB database to open or create.
	Path string

	// Mode is the file mode for the created file.
	// If it is zero, 0600 (owner read/write only) is used.
	Mode os.FileMode

	// Options is the BoltDB options for the database.
	// If it is nil, bbolt.DefaultOptions is used.
	Options *bbolt.Options
}

// Load loads the record with the given FID.
func (s *FileStore) Load(ctx context.Context, id int) (r instance.Record, ok bool, err error) {
	err = s.withStore(ctx, func(st *Store) error {
		var err error
		r, ok, err = st.Load(ctx, id)
		return err
	})

	return r, ok, err
}

// Insert inserts a new record.
func (s *FileStore) Insert(ctx context.Context, r instance.Record) (ok bool, err error) {
	err = s.withStore(ctx, func(st *Store) error {
		var err error
		ok, err = st.Insert(ctx, r)
		return err
	})

	return ok, err
}

// Update overwrites an existing record if its version is still r.Version.
func (s *FileStore) Update(ctx context.Context, r instance.Record) (ok bool, err error) {
	err = s.withStore(ctx, func(st *Store) error {
		var err error
		ok, err = st.Update(ctx, r)
		return err
	})

	return ok, err
}

// TouchCheckTime sets the check time of the record with the given FID.
func (s *FileStore) TouchCheckTime(ctx context.Context, id int, t time.Time) (ok bool, err error) {
	err = s.withStore(ctx, func(st *Store) error {
		var err error
		ok, err = st.TouchCheckTime(ctx, id, t)
		return err
	})

	return ok, err
}

// withStore opens the database, calls fn with a store that uses it, then
// closes the database.
func (s *FileStore) withStore(
	ctx context.Context,
	fn func(*Store) error,
) error {
	db, err := bboltx.Open(ctx, s.Path, s.Mode, s.Options)
	if err != nil {
		return err
	}

	return multierr.Append(
		fn(&Store{DB: db}),
		db.Close(),
	)
}
