package rng

import (
	"math/rand"
	"sync/atomic"
	"time"
)

// seedCounter keeps two clock seeds taken in the same tick apart
var seedCounter int64

// Generator provides a simple random number
type Generator interface {
	// Intn will return a random number up to but not including n
	Intn(n int) int
}

// Seeded is a math/rand backed generator
// It is not safe for concurrent use; each deck owns its own
type Seeded struct {
	seed int64
	rng  *rand.Rand
}

// NewSeeded returns a generator for the seed
// A seed of 0 will use the current time mixed with a process-wide counter
func NewSeeded(seed int64) *Seeded {
	if seed == 0 {
		seed = time.Now().UnixNano() ^ (atomic.AddInt64(&seedCounter, 1) * 0x5DEECE66D)
	}

	return &Seeded{
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Intn returns a random number from 0 <= x < n
func (s *Seeded) Intn(n int) int {
	return s.rng.Intn(n)
}

// Seed returns the seed the generator was created with
func (s *Seeded) Seed() int64 {
	return s.seed
}

// FromName returns the generator for the configured shuffle source
// "crypto" uses crypto/rand. Anything else returns nil, which lets the
// deck seed a fresh math/rand source every time it shuffles.
func FromName(name string) Generator {
	if name == "crypto" {
		return Crypto{}
	}

	return nil
}
