package parmat

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/parmat/parmat/comm"
	"github.com/parmat/parmat/indexmap"
	"github.com/parmat/parmat/util"
)

// runRanks drives fn once per rank of a fresh group, one goroutine per rank.
func runRanks(t *testing.T, n int, fn func(c comm.Communicator) error) {
	t.Helper()

	members, err := comm.NewGroup(n)
	require.NoError(t, err)

	var g errgroup.Group
	for r := 0; r < n; r++ {
		c := members[r]
		g.Go(func() error {
			return fn(c)
		})
	}
	require.NoError(t, g.Wait())
}

func TestApplyRoutesGhostRowEntry(t *testing.T) {
	// Rows and columns split [0,2) / [2,4) across two ranks. Rank 0 reaches
	// global row 3 through a ghost and inserts (3, 0); after Apply the entry
	// must live on rank 1, classified against rank 1's column range.
	patterns := make([]*SparsityPattern, 2)

	runRanks(t, 2, func(c comm.Communicator) error {
		var ghosts []int64
		if c.Rank() == 0 {
			ghosts = []int64{3}
		}

		rowMap, err := indexmap.New(c, 2, ghosts, 1)
		if err != nil {
			return err
		}
		colMap, err := indexmap.New(c, 2, nil, 1)
		if err != nil {
			return err
		}

		p, err := New(c, rowMap, colMap)
		if err != nil {
			return err
		}
		patterns[c.Rank()] = p

		if c.Rank() == 0 {
			// Local row 2 is the ghost for global row 3.
			if err := p.InsertLocalGlobal([]int64{2}, []int64{0}); err != nil {
				return err
			}
		}
		return p.Apply()
	})

	assert.True(t, patterns[0].Finalized())
	assert.True(t, patterns[1].Finalized())

	// Column 0 is owned by rank 0, so it lands in rank 1's off-diagonal
	// block for local row 1 (global row 3).
	assert.Equal(t, int64(0), patterns[0].NumNonzeros())
	assert.Equal(t, []int64{0}, patterns[1].OffDiagonalPattern(Sorted)[1])
	assert.Equal(t, int64(1), patterns[1].NumNonzeros())
}

// collectEntries flattens one rank's finalized pattern into global
// (row, col) pairs.
func collectEntries(p *SparsityPattern) [][2]int64 {
	start, _ := p.LocalRange(Rows)

	var entries [][2]int64
	diag := p.DiagonalPattern(Sorted)
	off := p.OffDiagonalPattern(Sorted)
	for i := range diag {
		for _, c := range diag[i] {
			entries = append(entries, [2]int64{start + int64(i), c})
		}
		for _, c := range off[i] {
			entries = append(entries, [2]int64{start + int64(i), c})
		}
	}
	return entries
}

func sortEntries(entries [][2]int64) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i][0] != entries[j][0] {
			return entries[i][0] < entries[j][0]
		}
		return entries[i][1] < entries[j][1]
	})
}

func TestApplyMatchesSerialRun(t *testing.T) {
	// The union over ranks of a distributed build must equal a serial build
	// over the same global insertions: the exchange neither loses nor
	// duplicates entries.
	const (
		size     = 16
		half     = size / 2
		nEntries = 200
	)

	rng := util.NewRNG(1234)
	rows, cols := rng.GenerateEntries(nEntries, size, size)

	// Serial reference.
	serial := func() *SparsityPattern {
		c := comm.Self()
		rowMap, err := indexmap.New(c, size, nil, 1)
		require.NoError(t, err)
		colMap, err := indexmap.New(c, size, nil, 1)
		require.NoError(t, err)
		p, err := New(c, rowMap, colMap)
		require.NoError(t, err)
		for i := range rows {
			require.NoError(t, p.InsertGlobal(rows[i:i+1], cols[i:i+1]))
		}
		require.NoError(t, p.Apply())
		return p
	}()

	// Distributed build: each rank owns half the rows and ghosts the other
	// half, and inserts exactly the entries whose column it owns, so half
	// the insertions target ghost rows and travel through the exchange.
	patterns := make([]*SparsityPattern, 2)

	runRanks(t, 2, func(c comm.Communicator) error {
		rank := c.Rank()

		ghosts := make([]int64, half)
		for i := range ghosts {
			ghosts[i] = int64((1-rank)*half + i)
		}

		rowMap, err := indexmap.New(c, half, ghosts, 1)
		if err != nil {
			return err
		}
		colMap, err := indexmap.New(c, half, nil, 1)
		if err != nil {
			return err
		}

		p, err := New(c, rowMap, colMap)
		if err != nil {
			return err
		}
		patterns[rank] = p

		rowStart := int64(rank * half)
		for i := range rows {
			if int(cols[i]/half) != rank {
				continue
			}
			var local int64
			if rows[i] >= rowStart && rows[i] < rowStart+half {
				local = rows[i] - rowStart
			} else {
				// Ghost rows follow the owned block in ghost-list order.
				local = half + rows[i] - int64((1-rank)*half)
			}
			if err := p.InsertLocalGlobal([]int64{local}, cols[i:i+1]); err != nil {
				return err
			}
		}
		return p.Apply()
	})

	want := collectEntries(serial)
	got := append(collectEntries(patterns[0]), collectEntries(patterns[1])...)
	sortEntries(want)
	sortEntries(got)

	assert.Equal(t, want, got)
}

func TestDistributedClassification(t *testing.T) {
	// One rank's owned insertions split between diagonal and off-diagonal by
	// column ownership, without any exchange.
	patterns := make([]*SparsityPattern, 2)

	runRanks(t, 2, func(c comm.Communicator) error {
		rowMap, err := indexmap.New(c, 3, nil, 1)
		if err != nil {
			return err
		}
		colMap, err := indexmap.New(c, 3, nil, 1)
		if err != nil {
			return err
		}

		p, err := New(c, rowMap, colMap)
		if err != nil {
			return err
		}
		patterns[c.Rank()] = p

		if c.Rank() == 0 {
			// Columns 1 (owned) and 4 (remote) on owned row 0.
			if err := p.InsertGlobal([]int64{0}, []int64{1, 4}); err != nil {
				return err
			}
		}
		return p.Apply()
	})

	assert.Equal(t, []int64{1}, patterns[0].DiagonalPattern(Sorted)[0])
	assert.Equal(t, []int64{4}, patterns[0].OffDiagonalPattern(Sorted)[0])
	assert.Equal(t, []int64{2, 0, 0}, patterns[0].NumLocalNonzeros())
}

func TestDistributedFullRows(t *testing.T) {
	// Full-row synthesis splits into owned columns (diagonal) and the
	// complement (off-diagonal).
	patterns := make([]*SparsityPattern, 2)

	runRanks(t, 2, func(c comm.Communicator) error {
		rowMap, err := indexmap.New(c, 3, nil, 1)
		if err != nil {
			return err
		}
		colMap, err := indexmap.New(c, 3, nil, 1)
		if err != nil {
			return err
		}

		p, err := New(c, rowMap, colMap)
		if err != nil {
			return err
		}
		patterns[c.Rank()] = p

		if err := p.InsertFullRowsLocal([]int64{0}); err != nil {
			return err
		}
		return p.Apply()
	})

	// Rank 1 owns columns [3,6); its full row 0 (global row 3).
	assert.Equal(t, int64(3), patterns[1].NumNonzerosDiagonal()[0])
	assert.Equal(t, int64(3), patterns[1].NumNonzerosOffDiagonal()[0])
	assert.Equal(t, []int64{3, 4, 5}, patterns[1].DiagonalPattern(Sorted)[0])
	assert.Equal(t, []int64{0, 1, 2}, patterns[1].OffDiagonalPattern(Sorted)[0])
	assert.Equal(t, int64(6), patterns[1].NumNonzeros())
}

func TestInsertGlobalRejectsRemoteRow(t *testing.T) {
	// InsertGlobal requires locally owned rows; remote rows are reached via
	// the local conventions and ghosts instead.
	runRanks(t, 2, func(c comm.Communicator) error {
		rowMap, err := indexmap.New(c, 2, nil, 1)
		if err != nil {
			return err
		}
		colMap, err := indexmap.New(c, 2, nil, 1)
		if err != nil {
			return err
		}

		p, err := New(c, rowMap, colMap)
		if err != nil {
			return err
		}

		remote := int64((1 - c.Rank()) * 2) // a row owned by the other rank
		err = p.InsertGlobal([]int64{remote}, []int64{0})

		var oor *ErrRowOutOfRange
		assert.ErrorAs(t, err, &oor)
		return p.Apply()
	})
}
