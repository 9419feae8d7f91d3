package flake

import (
	"errors"
	"fmt"
	"time"

	"github.com/sony/sonyflake/v2"
)

// Bit layout of an ID, from most to least significant.
const (
	timeBits     = 39
	sequenceBits = 8
	machineBits  = 16

	machineMask  = 1<<machineBits - 1
	sequenceMask = 1<<sequenceBits - 1

	// MaxMachineID is the largest FID that can be embedded in an ID.
	MaxMachineID = machineMask
)

// ErrOverTimeLimit indicates that the time component of the ID has overflowed.
// It is not recoverable.
var ErrOverTimeLimit = errors.New("flake: time component overflow")

// Generator mints unique IDs for a single FID.
//
// It is safe for concurrent use.
type Generator struct {
	sf  *sonyflake.Sonyflake
	fid int
}

// NewGenerator returns a generator that embeds fid in each ID.
func NewGenerator(fid int) (*Generator, error) {
	if fid < 0 || fid > MaxMachineID {
		return nil, fmt.Errorf(
			"FID %d does not fit in the %d-bit machine component",
			fid,
			machineBits,
		)
	}

	sf, err := sonyflake.New(sonyflake.Settings{
		MachineID: func() (int, error) {
			return fid, nil
		},
		CheckMachineID: func(id int) bool {
			return id == fid
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create ID generator for FID %d: %w", fid, err)
	}

	return &Generator{sf, fid}, nil
}

// FID returns the FID embedded in each ID.
func (g *Generator) FID() int {
	return g.fid
}

// NextID returns a new unique ID.
func (g *Generator) NextID() (int64, error) {
	id, err := g.sf.NextID()
	if err != nil {
		if errors.Is(err, sonyflake.ErrOverTimeLimit) {
			return 0, fmt.Errorf("%w: %w", ErrOverTimeLimit, err)
		}
		return 0, err
	}

	return id, nil
}

// Components are the parts of an ID.
type Components struct {
	// Time is the number of 10ms units since the generator's epoch.
	Time int64

	// Sequence distinguishes IDs minted within the same time unit.
	Sequence int64

	// FID is the FID of the process that minted the ID.
	FID int
}

// Elapsed returns the time elapsed between the generator's epoch and the
// minting of the ID.
func (c Components) Elapsed() time.Duration {
	return time.Duration(c.Time) * 10 * time.Millisecond
}

// Decompose returns the components of id.
func Decompose(id int64) (Components, error) {
	if id <= 0 {
		return Components{}, fmt.Errorf("invalid ID %d", id)
	}

	return Components{
		Time:     id >> (sequenceBits + machineBits),
		Sequence: (id >> machineBits) & sequenceMask,
		FID:      int(id & machineMask),
	}, nil
}
