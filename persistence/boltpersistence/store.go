package boltpersistence

import (
	"context"
	"errors"
	"time"

	"github.com/tethysim/nodeid/instance"
	"github.com/tethysim/nodeid/internal/x/bboltx"
	"go.etcd.io/bbolt"
)

var (
	// instanceBucketKey is the key for the bucket that contains instance
	// records.
	//
	// The keys are FIDs encoded as 8-byte big-endian integers. The values are
	// storedRecord values marshaled using CBOR.
	instanceBucketKey = []byte("server_instance")
)

// Store is an implementation of instance.Store that uses an existing open
// BoltDB database.
type Store struct {
	// DB is the BoltDB database to use.
	DB *bbolt.DB
}

// Load loads the record with the given FID.
func (s *Store) Load(ctx context.Context, id int) (r instance.Record, ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return instance.Record{}, false, err
	}

	defer bboltx.Recover(&err)

	err = s.DB.View(func(tx *bbolt.Tx) error {
		if b := bboltx.Bucket(tx, instanceBucketKey); b != nil {
			if data := b.Get(marshalID(id)); data != nil {
				r = unmarshalRecord(id, data)
				ok = true
			}
		}
		return nil
	})

	return r, ok, err
}

// Insert inserts a new record.
func (s *Store) Insert(ctx context.Context, r instance.Record) (bool, error) {
	return s.update(ctx, func(b *bbolt.Bucket) bool {
		k := marshalID(r.ID)

		if b.Get(k) != nil {
			return false
		}

		bboltx.Put(b, k, marshalRecord(r))
		return true
	})
}

// Update overwrites an existing record if its version is still r.Version.
func (s *Store) Update(ctx context.Context, r instance.Record) (bool, error) {
	return s.update(ctx, func(b *bbolt.Bucket) bool {
		k := marshalID(r.ID)

		data := b.Get(k)
		if data == nil {
			return false
		}

		if unmarshalRecord(r.ID, data).Version != r.Version {
			return false
		}

		r.Version++
		bboltx.Put(b, k, marshalRecord(r))

		return true
	})
}

// TouchCheckTime sets the check time of the record with the given FID.
func (s *Store) TouchCheckTime(ctx context.Context, id int, t time.Time) (bool, error) {
	return s.update(ctx, func(b *bbolt.Bucket) bool {
		k := marshalID(id)

		data := b.Get(k)
		if data == nil {
			return false
		}

		r := unmarshalRecord(id, data)
		r.CheckTime = t
		bboltx.Put(b, k, marshalRecord(r))

		return true
	})
}

// update calls fn within a read-write transaction.
//
// The transaction is committed only if fn returns true.
func (s *Store) update(
	ctx context.Context,
	fn func(b *bbolt.Bucket) bool,
) (ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	defer bboltx.Recover(&err)

	err = s.DB.Update(func(tx *bbolt.Tx) error {
		ok = fn(bboltx.CreateBucketIfNotExists(tx, instanceBucketKey))

		if !ok {
			return errRollback
		}

		return nil
	})

	if err == errRollback {
		return false, nil
	}

	return ok, err
}

// errRollback is returned from a transaction function to abort the
// transaction without reporting an error.
var errRollback = errors.New("rollback")
