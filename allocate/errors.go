package allocate

import (
	"errors"
	"fmt"
)

// ErrAllocationTimeout indicates that no FID could be acquired before the
// allocation deadline.
var ErrAllocationTimeout = errors.New("unable to allocate a FID before the deadline")

// StorageFault is an error returned when the store fails while a FID is being
// allocated. It is fatal to the allocation.
type StorageFault struct {
	// State is the state in which the fault occurred.
	State State

	// Candidate is the FID that was being probed or claimed.
	Candidate int

	// Cause is the error returned by the store.
	Cause error
}

func (e *StorageFault) Error() string {
	return fmt.Sprintf(
		"storage fault while %s FID %d: %s",
		e.State,
		e.Candidate,
		e.Cause,
	)
}

func (e *StorageFault) Unwrap() error {
	return e.Cause
}
