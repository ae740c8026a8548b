package engine

import (
	"encoding/binary"
	"sync"

	"lukechampine.com/frand"
)

// blunderPolicy replaces the best move by a random different one with a
// given probability. The generator is seeded so games can be replayed.
type blunderPolicy struct {
	mu  sync.Mutex
	rng *frand.RNG
}

// newBlunderPolicy seeds the generator. A zero seed draws one from the
// system entropy source.
func newBlunderPolicy(seed uint64) *blunderPolicy {
	var key [32]byte
	if seed == 0 {
		frand.Read(key[:])
	} else {
		binary.LittleEndian.PutUint64(key[:], seed)
	}
	return &blunderPolicy{rng: frand.NewCustom(key[:], 1024, 20)}
}

// pick returns the index of the move to play among n legal moves whose best
// is at index best, and whether it differs from best.
func (b *blunderPolicy) pick(n, best int, p float64) (int, bool) {
	if n < 2 || p <= 0 {
		return best, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if p < 1 && b.float64() >= p {
		return best, false
	}
	idx := b.rng.Intn(n - 1)
	if idx >= best {
		idx++
	}
	return idx, true
}

// float64 returns a uniform value in [0, 1).
func (b *blunderPolicy) float64() float64 {
	return float64(b.rng.Uint64n(1<<53)) / (1 << 53)
}
