package bboltx

import "go.etcd.io/bbolt"

// Bucket returns the top-level bucket with the given name, or nil if it does
// not exist.
func Bucket(tx *bbolt.Tx, name []byte) *bbolt.Bucket {
	return tx.Bucket(name)
}

// CreateBucketIfNotExists returns the top-level bucket with the given name,
// creating it if necessary. tx must be writable.
func CreateBucketIfNotExists(tx *bbolt.Tx, name []byte) *bbolt.Bucket {
	b, err := tx.CreateBucketIfNotExists(name)
	Must(err)
	return b
}

// Put writes a value to a bucket.
func Put(b *bbolt.Bucket, k, v []byte) {
	Must(b.Put(k, v))
}
