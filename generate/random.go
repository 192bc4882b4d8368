package generate

import (
	"math/rand/v2"
	"sync"
)

// Random is the randomness source shared by generators and creators.
// Safe for concurrent use. Not suitable for cryptographic purposes.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

var shared = NewRandom(rand.Uint64())

// NewRandom creates a deterministic source for seed.
func NewRandom(seed uint64) *Random {
	return &Random{rng: newRand(seed)}
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Shared returns the process-wide source used when a generator has none.
func Shared() *Random {
	return shared
}

// orShared returns r, or the shared source when r is nil.
func orShared(r *Random) *Random {
	if r == nil {
		return shared
	}
	return r
}

// Seed resets the source to the deterministic sequence for seed.
func (r *Random) Seed(seed uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rng = newRand(seed)
}

// IntN returns a value in [0, n). n must be positive.
func (r *Random) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}

// Between returns a value in the inclusive range [lo, hi].
func (r *Random) Between(lo, hi int) int {
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == hi {
		return lo
	}
	return lo + r.IntN(hi-lo+1)
}

// Int64N returns a value in [0, n). n must be positive.
func (r *Random) Int64N(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Int64N(n)
}

// Uint64 returns a uniformly distributed 64-bit value.
func (r *Random) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Uint64()
}

// Float64 returns a value in [0.0, 1.0).
func (r *Random) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

// Bool returns true or false with equal probability.
func (r *Random) Bool() bool {
	return r.IntN(2) == 1
}

// OneIn returns true with probability 1/n.
func (r *Random) OneIn(n int) bool {
	if n <= 1 {
		return true
	}
	return r.IntN(n) == 0
}

// Read fills p with random bytes. It never fails, which lets a seeded
// Random drive uuid.NewRandomFromReader.
func (r *Random) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := 0; i < len(p); i += 8 {
		v := r.rng.Uint64()
		for j := 0; j < 8 && i+j < len(p); j++ {
			p[i+j] = byte(v >> (8 * j))
		}
	}
	return len(p), nil
}

// Pick returns a random element of items. items must not be empty.
func Pick[T any](r *Random, items []T) T {
	return items[orShared(r).IntN(len(items))]
}
