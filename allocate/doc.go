// Package allocate acquires a node ID (FID) that is unique across the fleet.
//
// Acquisition is optimistic. A candidate FID is sampled at random and claimed
// either by inserting a new instance record or, if the existing record has
// expired, by overwriting it conditionally on its version. Losing a race to
// another process simply causes another candidate to be sampled.
package allocate
