package util

import "math/rand"

// RNG struct encapsulates the random number generator and seed.
type RNG struct {
	rand *rand.Rand
	seed int64
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// GenerateIndices generates num random indices in [0, limit) using the
// given RNG.
func (r *RNG) GenerateIndices(num int, limit int64) []int64 {
	indices := make([]int64, num)
	for i := range indices {
		indices[i] = r.rand.Int63n(limit)
	}

	return indices
}

// GenerateEntries generates num random (row, column) index pairs with rows
// in [0, rowLimit) and columns in [0, colLimit).
func (r *RNG) GenerateEntries(num int, rowLimit, colLimit int64) (rows, cols []int64) {
	rows = r.GenerateIndices(num, rowLimit)
	cols = r.GenerateIndices(num, colLimit)

	return rows, cols
}
