package memorypersistence

import (
	"context"
	"sync"
	"time"

	"github.com/tethysim/nodeid/instance"
)

// Store is an implementation of instance.Store that keeps records in memory.
//
// The zero value is ready to use.
type Store struct {
	m       sync.RWMutex
	records map[int]instance.Record
}

// Load loads the record with the given FID.
func (s *Store) Load(ctx context.Context, id int) (instance.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return instance.Record{}, false, err
	}

	s.m.RLock()
	defer s.m.RUnlock()

	r, ok := s.records[id]
	return r, ok, nil
}

// Insert inserts a new record.
func (s *Store) Insert(ctx context.Context, r instance.Record) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.m.Lock()
	defer s.m.Unlock()

	if _, ok := s.records[r.ID]; ok {
		return false, nil
	}

	if s.records == nil {
		s.records = map[int]instance.Record{}
	}

	s.records[r.ID] = r

	return true, nil
}

// Update overwrites an existing record if its version is still r.Version.
func (s *Store) Update(ctx context.Context, r instance.Record) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.m.Lock()
	defer s.m.Unlock()

	x, ok := s.records[r.ID]
	if !ok || x.Version != r.Version {
		return false, nil
	}

	r.Version++
	s.records[r.ID] = r

	return true, nil
}

// TouchCheckTime sets the check time of the record with the given FID.
func (s *Store) TouchCheckTime(ctx context.Context, id int, t time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.m.Lock()
	defer s.m.Unlock()

	r, ok := s.records[id]
	if !ok {
		return false, nil
	}

	r.CheckTime = t
	s.records[id] = r

	return true, nil
}

// Records returns a copy of all records in the store, keyed by FID.
func (s *Store) Records() map[int]instance.Record {
	s.m.RLock()
	defer s.m.RUnlock()

	records := make(map[int]instance.Record, len(s.records))
	for id, r := range s.records {
		records[id] = r
	}

	return records
}
