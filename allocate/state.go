package allocate

// State is a state of the allocation state machine.
type State int

const (
	// Sampling chooses the next candidate FID.
	Sampling State = iota

	// Probing loads the existing record for the candidate, if any.
	Probing

	// Inserting claims a candidate that has no record.
	Inserting

	// Reclaiming claims a candidate whose record has expired.
	Reclaiming

	// Retrying abandons the current candidate.
	Retrying

	// Succeeded is the terminal state reached when a FID is held.
	Succeeded

	// Failed is the terminal state reached on a storage fault or timeout.
	Failed
)

func (s State) String() string {
	switch s {
	case Sampling:
		return "sampling"
	case Probing:
		return "probing"
	case Inserting:
		return "inserting"
	case Reclaiming:
		return "reclaiming"
	case Retrying:
		return "retrying"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}
