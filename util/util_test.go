package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateIndices(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.GenerateIndices(32, 100)

	assert.Equal(t, 32, len(v))
	for _, idx := range v {
		assert.GreaterOrEqual(t, idx, int64(0))
		assert.Less(t, idx, int64(100))
	}
}

func TestGenerateEntries(t *testing.T) {
	rng := NewRNG(4711)

	rows, cols := rng.GenerateEntries(16, 10, 20)

	assert.Equal(t, 16, len(rows))
	assert.Equal(t, 16, len(cols))
	for i := range rows {
		assert.Less(t, rows[i], int64(10))
		assert.Less(t, cols[i], int64(20))
	}
}

func TestDeterministic(t *testing.T) {
	a := NewRNG(7).GenerateIndices(8, 1000)
	b := NewRNG(7).GenerateIndices(8, 1000)

	assert.Equal(t, a, b)
}
