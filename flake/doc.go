// Package flake mints 63-bit, roughly time-ordered message IDs whose
// machine component is the FID held by this process.
//
// IDs are unique across the fleet for as long as no two live processes hold
// the same FID.
package flake
