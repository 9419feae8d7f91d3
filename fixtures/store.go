package fixtures

import (
	"context"
	"time"

	"github.com/tethysim/nodeid/instance"
	"github.com/tethysim/nodeid/persistence/memorypersistence"
)

// StoreStub is a test implementation of the instance.Store interface.
type StoreStub struct {
	instance.Store

	LoadFunc           func(context.Context, int) (instance.Record, bool, error)
	InsertFunc         func(context.Context, instance.Record) (bool, error)
	UpdateFunc         func(context.Context, instance.Record) (bool, error)
	TouchCheckTimeFunc func(context.Context, int, time.Time) (bool, error)
}

// NewStoreStub returns a new store stub that uses an in-memory store.
func NewStoreStub() *StoreStub {
	return &StoreStub{
		Store: &memorypersistence.Store{},
	}
}

// Load loads the record with the given FID.
func (s *StoreStub) Load(ctx context.Context, id int) (instance.Record, bool, error) {
	if s.LoadFunc != nil {
		return s.LoadFunc(ctx, id)
	}

	if s.Store != nil {
		return s.Store.Load(ctx, id)
	}

	return instance.Record{}, false, nil
}

// Insert inserts a new record.
func (s *StoreStub) Insert(ctx context.Context, r instance.Record) (bool, error) {
	if s.InsertFunc != nil {
		return s.InsertFunc(ctx, r)
	}

	if s.Store != nil {
		return s.Store.Insert(ctx, r)
	}

	return false, nil
}

// Update overwrites an existing record.
func (s *StoreStub) Update(ctx context.Context, r instance.Record) (bool, error) {
	if s.UpdateFunc != nil {
		return s.UpdateFunc(ctx, r)
	}

	if s.Store != nil {
		return s.Store.Update(ctx, r)
	}

	return false, nil
}

// TouchCheckTime sets the check time of the record with the given FID.
func (s *StoreStub) TouchCheckTime(ctx context.Context, id int, t time.Time) (bool, error) {
	if s.TouchCheckTimeFunc != nil {
		return s.TouchCheckTimeFunc(ctx, id, t)
	}

	if s.Store != nil {
		return s.Store.TouchCheckTime(ctx, id, t)
	}

	return false, nil
}
