package world

import (
	"math/rand"
	"time"
)

// Source supplies the randomness used by room creation and overlap
// resolution. Implementations need not be safe for concurrent use.
type Source interface {
	// Intn returns a uniform integer in [0, n).
	Intn(n int) int
	// Bool returns a fair coin flip.
	Bool() bool
}

// randSource adapts *rand.Rand to Source.
type randSource struct {
	rng *rand.Rand
}

// NewSource returns a Source backed by math/rand.
// A seed of 0 means a time-based seed is used.
func NewSource(seed int64) Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return FromRand(rand.New(rand.NewSource(seed)))
}

// FromRand wraps an existing generator.
func FromRand(rng *rand.Rand) Source {
	return &randSource{rng: rng}
}

func (s *randSource) Intn(n int) int { return s.rng.Intn(n) }
func (s *randSource) Bool() bool     { return s.rng.Intn(2) == 0 }

// randRange returns a uniform integer in [lo, hi).
func randRange(src Source, lo, hi int) int {
	return lo + src.Intn(hi-lo)
}
