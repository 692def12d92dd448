package engine

import (
	"math/rand"

	"github.com/cespare/xxhash/v2"
)

// countingSource wraps the standard source and counts every draw taken from
// it, so that a generator can be restored to an exact stream position.
type countingSource struct {
	src   rand.Source64
	draws int64
}

func (c *countingSource) Int63() int64 {
	c.draws++
	return c.src.Int63()
}

func (c *countingSource) Uint64() uint64 {
	c.draws++
	return c.src.Uint64()
}

func (c *countingSource) Seed(seed int64) {
	c.src.Seed(seed)
	c.draws = 0
}

// RNG is the deterministic generator every gameplay decision draws from.
// Position increments with every underlying draw, enabling save/restore.
type RNG struct {
	seed int64
	src  *countingSource
	r    *rand.Rand
}

// NewRNG creates a new deterministic RNG from a seed.
func NewRNG(seed int64) *RNG {
	src := &countingSource{src: rand.NewSource(seed).(rand.Source64)}
	return &RNG{seed: seed, src: src, r: rand.New(src)}
}

// SeedFromString hashes a textual seed to an integer seed. The hash is
// xxhash64 of the UTF-8 bytes, so it is stable across platforms.
func SeedFromString(s string) int64 {
	return int64(xxhash.Sum64String(s))
}

// Seed returns the seed the generator was created with.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Next returns a float in [0,1).
func (r *RNG) Next() float64 {
	return r.r.Float64()
}

// RangeInt returns an integer in [min, max]. It panics if max < min.
func (r *RNG) RangeInt(min, max int) int {
	if max < min {
		panic("engine: RangeInt with max < min")
	}
	return min + r.r.Intn(max-min+1)
}

// RangeFloat returns a float in [min, max). Equal bounds return min.
func (r *RNG) RangeFloat(min, max float64) float64 {
	return min + r.Next()*(max-min)
}

// Chance returns true with probability p. p <= 0 never succeeds and p >= 1
// always does, but a draw is consumed either way to keep streams aligned.
func (r *RNG) Chance(p float64) bool {
	return r.Next() < p
}

// WeightedSelect returns an index chosen by weighted random selection.
// weights must be non-empty with all positive values. Equal weights draw the
// same value RangeInt(0, len-1) would.
func (r *RNG) WeightedSelect(weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		panic("engine: WeightedSelect needs a positive total weight")
	}
	roll := r.r.Intn(total)
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if roll < cumulative {
			return i
		}
	}
	return len(weights) - 1
}

// Position returns the number of source draws made since creation.
func (r *RNG) Position() int64 {
	return r.src.draws
}

// Pick returns a uniformly chosen element. It panics on an empty list.
func Pick[T any](r *RNG, list []T) T {
	if len(list) == 0 {
		panic("engine: Pick from empty list")
	}
	return list[r.RangeInt(0, len(list)-1)]
}

// Shuffle permutes list in place with Fisher–Yates on the generator's stream.
func Shuffle[T any](r *RNG, list []T) {
	for i := len(list) - 1; i > 0; i-- {
		j := r.RangeInt(0, i)
		list[i], list[j] = list[j], list[i]
	}
}

// RestoreRNG creates an RNG and advances it to the given position.
// This reproduces the exact RNG state for save/load.
func RestoreRNG(seed int64, position int64) *RNG {
	rng := NewRNG(seed)
	for i := int64(0); i < position; i++ {
		rng.src.src.Int63()
	}
	rng.src.draws = position
	return rng
}
