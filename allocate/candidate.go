package allocate

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

const (
	// MinFID is the smallest FID that is ever allocated. Lower values are
	// reserved for manually assigned IDs.
	MinFID = 99

	// DefaultFIDBits is the default width, in bits, of the node ID component
	// of the fleet's globally unique message IDs.
	DefaultFIDBits = 16
)

// MaxFID returns the largest FID that fits in the given number of bits.
func MaxFID(bits int) int {
	if bits <= 0 || bits > 31 {
		panic(fmt.Sprintf("FID width must be between 1 and 31 bits, got %d", bits))
	}

	return 1<<bits - 1
}

// Sampler is an interface for choosing candidate FIDs.
type Sampler interface {
	Sample() (int, error)
}

// SamplerFunc is an adaptor to allow the use of an ordinary function as a
// Sampler.
type SamplerFunc func() (int, error)

// Sample calls fn().
func (fn SamplerFunc) Sample() (int, error) {
	return fn()
}

// CandidateGenerator is a Sampler that chooses FIDs uniformly at random from
// the closed range [Min, Max].
//
// It uses a cryptographically secure source by default so that processes that
// start at the same moment do not choose correlated candidates.
type CandidateGenerator struct {
	Min, Max int

	// Rand is the source of randomness. If it is nil, crypto/rand.Reader is
	// used.
	Rand io.Reader
}

// Sample returns a random FID in [g.Min, g.Max].
func (g CandidateGenerator) Sample() (int, error) {
	if g.Min < 0 || g.Max < g.Min {
		return 0, fmt.Errorf("invalid FID range [%d, %d]", g.Min, g.Max)
	}

	src := g.Rand
	if src == nil {
		src = rand.Reader
	}

	n, err := rand.Int(src, big.NewInt(int64(g.Max-g.Min)+1))
	if err != nil {
		return 0, fmt.Errorf("unable to sample a candidate FID: %w", err)
	}

	return g.Min + int(n.Int64()), nil
}
