package fixtures

import (
	"sync"

	"github.com/tethysim/nodeid/allocate"
)

// SequenceSampler returns an allocate.Sampler that yields the given FIDs in
// order, repeating the last one once the sequence is exhausted.
func SequenceSampler(ids ...int) allocate.Sampler {
	if len(ids) == 0 {
		panic("at least one FID is required")
	}

	var (
		m sync.Mutex
		i int
	)

	return allocate.SamplerFunc(func() (int, error) {
		m.Lock()
		defer m.Unlock()

		id := ids[i]
		if i < len(ids)-1 {
			i++
		}

		return id, nil
	})
}
