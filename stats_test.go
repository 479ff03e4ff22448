package parmat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats(t *testing.T) {
	p := newSerialPattern(t, 4, 4)

	require.NoError(t, p.InsertGlobal([]int64{0, 1}, []int64{0, 3}))
	require.NoError(t, p.InsertFullRowsLocal([]int64{2}))
	require.NoError(t, p.Apply())

	s := p.Stats()
	assert.Equal(t, int64(4), s.GlobalRows)
	assert.Equal(t, int64(4), s.GlobalCols)
	assert.Equal(t, int64(4), s.Diagonal)
	assert.Equal(t, int64(0), s.OffDiagonal)
	assert.Equal(t, int64(0), s.NonLocal)
	assert.Equal(t, int64(1), s.FullRows)
	assert.Equal(t, int64(4), s.Total())
}

func TestStatsString(t *testing.T) {
	s := Stats{
		GlobalRows: 10,
		GlobalCols: 10,
		Diagonal:   5,
	}

	out := s.String()
	assert.Contains(t, out, "Matrix of size 10 x 10")
	assert.Contains(t, out, "5 (5.00%)")

	s.OffDiagonal = 3
	s.NonLocal = 2
	s.FullRows = 1
	out = s.String()
	assert.Contains(t, out, "off-diagonal: 3")
	assert.Contains(t, out, "non-local: 2")
	assert.Contains(t, out, "Full rows: 1")
}

func TestStatsEmptyPattern(t *testing.T) {
	p := newSerialPattern(t, 2, 2)
	require.NoError(t, p.Apply())

	s := p.Stats()
	assert.Equal(t, int64(0), s.Total())
	assert.Contains(t, s.String(), "0 (0.00%)")
}
