package heartbeat

// Outcome is the result of a single heartbeat.
type Outcome int

const (
	// Renewed means the check time was updated.
	Renewed Outcome = iota

	// Lost means the instance record no longer exists.
	//
	// Renewal is keyed by FID alone. If another process reclaims the FID by
	// overwriting the record, rather than deleting it, the next heartbeat
	// renews that process's record and reports Renewed. A reclaim by overwrite
	// is therefore not detected by the heartbeat.
	Lost

	// Faulted means the store failed. The next heartbeat is attempted on
	// schedule.
	Faulted
)

func (o Outcome) String() string {
	switch o {
	case Renewed:
		return "renewed"
	case Lost:
		return "lost"
	case Faulted:
		return "faulted"
	default:
		return "unknown"
	}
}
