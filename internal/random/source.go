// Package random defines the randomness consumed by the genetic operators
// and a math/rand backed implementation of it.
package random

import (
	"fmt"
	"math/rand"
)

// Source supplies the draws used by chromosome randomization, crossover,
// mutation and selection. Implementations are not expected to be safe for
// concurrent use.
type Source interface {
	// IntRange returns a uniform integer in the closed range [lo, hi].
	IntRange(lo, hi int) int
	// Float64 returns a uniform float in [0, 1).
	Float64() float64
	// CoinFlip returns true with the given probability.
	CoinFlip(probability float64) bool
	// Byte returns a uniformly random byte.
	Byte() byte
	// Read fills p with uniformly random bytes.
	Read(p []byte)
}

// RandSource adapts *rand.Rand to Source.
type RandSource struct {
	rng *rand.Rand
}

// New returns a deterministic source seeded with seed.
func New(seed int64) *RandSource {
	return &RandSource{rng: rand.New(rand.NewSource(seed))}
}

// FromRand wraps an existing generator.
func FromRand(rng *rand.Rand) *RandSource {
	if rng == nil {
		panic("random.FromRand: nil generator")
	}
	return &RandSource{rng: rng}
}

func (s *RandSource) IntRange(lo, hi int) int {
	if hi < lo {
		panic(fmt.Sprintf("random.IntRange: empty range [%d,%d]", lo, hi))
	}
	return lo + s.rng.Intn(hi-lo+1)
}

func (s *RandSource) Float64() float64 {
	return s.rng.Float64()
}

func (s *RandSource) CoinFlip(probability float64) bool {
	if probability <= 0 {
		return false
	}
	if probability >= 1 {
		return true
	}
	return s.rng.Float64() < probability
}

func (s *RandSource) Byte() byte {
	return byte(s.rng.Uint32())
}

func (s *RandSource) Read(p []byte) {
	// (*rand.Rand).Read never fails.
	_, _ = s.rng.Read(p)
}
