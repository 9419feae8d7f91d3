package sqlpersistence

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/tethysim/nodeid/instance"
)

// Store is an implementation of instance.Store that uses an existing open
// database pool.
type Store struct {
	// DB is the SQL database to use.
	DB *sql.DB

	// Driver is the SQL driver to use with this database. If it is nil, it is
	// chosen automatically from one of the built-in drivers the first time it
	// is needed.
	Driver Driver

	m      sync.Mutex
	driver Driver
}

// Load loads the record with the given FID.
func (s *Store) Load(ctx context.Context, id int) (instance.Record, bool, error) {
	d, err := s.selectDriver(ctx)
	if err != nil {
		return instance.Record{}, false, err
	}

	return d.SelectInstance(ctx, s.DB, id)
}

// Insert inserts a new record.
func (s *Store) Insert(ctx context.Context, r instance.Record) (bool, error) {
	d, err := s.selectDriver(ctx)
	if err != nil {
		return false, err
	}

	return d.InsertInstance(ctx, s.DB, r)
}

// Update overwrites an existing record if its version is still r.Version.
func (s *Store) Update(ctx context.Context, r instance.Record) (bool, error) {
	d, err := s.selectDriver(ctx)
	if err != nil {
		return false, err
	}

	return d.UpdateInstance(ctx, s.DB, r)
}

// TouchCheckTime sets the check time of the record with the given FID.
func (s *Store) TouchCheckTime(ctx context.Context, id int, t time.Time) (bool, error) {
	d, err := s.selectDriver(ctx)
	if err != nil {
		return false, err
	}

	return d.UpdateCheckTime(ctx, s.DB, id, t)
}

// selectDriver returns the driver to use, selecting one of the built-in
// drivers if none was configured.
func (s *Store) selectDriver(ctx context.Context) (Driver, error) {
	if s.Driver != nil {
		return s.Driver, nil
	}

	s.m.Lock()
	defer s.m.Unlock()

	if s.driver == nil {
		d, err := SelectDriver(ctx, s.DB)
		if err != nil {
			return nil, err
		}

		s.driver = d
	}

	return s.driver, nil
}
