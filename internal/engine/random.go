package engine

import (
	"math/rand"
	"time"
)

// Source supplies the randomness the propagation rules consume.
type Source interface {
	// Float64 returns an independent uniform draw in [0,1).
	Float64() float64
	// Choose returns one element of a non-empty slice, uniformly.
	Choose(nodes []string) string
}

// RandSource is a Source backed by math/rand. It is not safe for concurrent
// use; give every simulation its own.
type RandSource struct {
	rng *rand.Rand
}

// NewSource returns a seeded Source. A zero seed selects a time-based seed.
func NewSource(seed int64) *RandSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandSource{rng: rand.New(rand.NewSource(seed))}
}

func (s *RandSource) Float64() float64 {
	return s.rng.Float64()
}

func (s *RandSource) Choose(nodes []string) string {
	return nodes[s.rng.Intn(len(nodes))]
}
