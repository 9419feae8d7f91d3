// Package nodeid gives each process in a fleet a small integer node ID (FID)
// that no other live process holds.
//
// FIDs are coordinated through a shared store of instance records. There is no
// coordinator; processes race for random candidates and the store's
// conditional writes decide each race. A FID is held for as long as its owner
// keeps renewing the record's check time.
package nodeid
