package parmat

import (
	"fmt"
	"strings"

	"github.com/parmat/parmat/comm"
	"github.com/parmat/parmat/indexmap"
)

// Dim selects a pattern dimension.
type Dim int

const (
	// Rows selects the row dimension.
	Rows Dim = iota
	// Cols selects the column dimension.
	Cols
)

// Order selects the ordering of materialized pattern rows. The roaring row
// sets iterate ascending either way, so Unsorted output happens to be
// ascending too; only Sorted promises it.
type Order int

const (
	// Sorted materializes each row's columns in ascending order.
	Sorted Order = iota
	// Unsorted makes no ordering promise.
	Unsorted
)

// indexPolicy names one of the three supported insertion conventions. It
// selects the fixed row and column index mappings applied by insertEntries;
// the set is closed, there are no caller-supplied mappings.
type indexPolicy int

const (
	// policyGlobal: rows global (and locally owned), columns global.
	policyGlobal indexPolicy = iota
	// policyLocal: rows local, columns local to this rank.
	policyLocal
	// policyLocalGlobal: rows local, columns global.
	policyLocalGlobal
)

// SparsityPattern accumulates the nonzero structure of a distributed sparse
// matrix.
//
// Rows are stored as local element indices relative to this rank's owned
// range; columns are stored as global element indices. Entries addressed to
// rows owned by other ranks are staged in a non-local buffer until Apply
// exchanges them. A pattern is mutated only by the Insert methods and by
// Apply; all other methods are read-only and idempotent.
//
// A SparsityPattern is not safe for concurrent use. Ranks never share one:
// each rank owns its pattern exclusively and coordinates only through the
// Apply exchange.
type SparsityPattern struct {
	c      comm.Communicator
	logger *Logger

	// maps[Rows] and maps[Cols] are shared, read-only index maps.
	maps [2]*indexmap.IndexMap

	diagonal    []*indexSet
	offDiagonal []*indexSet

	// fullRows holds local element rows known to be dense across the whole
	// global column range. Kept sparse: full rows are expected to be rare.
	fullRows *indexSet

	// nonLocal stages flattened (local row, global column) element pairs
	// whose row is reached through a ghost. Cleared by Apply.
	nonLocal []uint64
}

// New creates an empty pattern bound to a pair of index maps. The maps are
// shared with the caller and never mutated.
func New(c comm.Communicator, rowMap, colMap *indexmap.IndexMap, optFns ...func(*Options)) (*SparsityPattern, error) {
	if c == nil || rowMap == nil || colMap == nil {
		return nil, ErrNilArgument
	}

	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	localSize0 := int64(rowMap.BlockSize()) * rowMap.Size(indexmap.Owned)

	p := &SparsityPattern{
		c:           c,
		logger:      opts.Logger.WithRank(c.Rank()),
		maps:        [2]*indexmap.IndexMap{rowMap, colMap},
		diagonal:    make([]*indexSet, localSize0),
		offDiagonal: make([]*indexSet, localSize0),
		fullRows:    newIndexSet(),
	}
	for i := range p.diagonal {
		p.diagonal[i] = newIndexSet()
		p.offDiagonal[i] = newIndexSet()
	}
	return p, nil
}

// InsertGlobal inserts the cross product of rows and cols, both given as
// global element indices. Every row must lie in this rank's owned row range.
func (p *SparsityPattern) InsertGlobal(rows, cols []int64) error {
	return p.insertEntries(rows, cols, policyGlobal)
}

// InsertLocal inserts the cross product of rows and cols. Rows are local
// element indices (owned rows first, then ghost rows); columns are local
// element indices resolved to global ones through the column index map.
func (p *SparsityPattern) InsertLocal(rows, cols []int64) error {
	return p.insertEntries(rows, cols, policyLocal)
}

// InsertLocalGlobal inserts the cross product of rows and cols with local
// element rows and global element columns.
func (p *SparsityPattern) InsertLocalGlobal(rows, cols []int64) error {
	return p.insertEntries(rows, cols, policyLocalGlobal)
}

// mapRow maps a row argument to a local element index. For policyGlobal the
// argument must name an owned row; for the local policies it may also name a
// ghost row (indices past the owned block).
func (p *SparsityPattern) mapRow(i int64, policy indexPolicy) (int64, error) {
	bs0 := int64(p.maps[Rows].BlockSize())
	start, end := p.maps[Rows].LocalRange()

	if policy == policyGlobal {
		if i < bs0*start || i >= bs0*end {
			return 0, &ErrRowOutOfRange{Row: i, Start: bs0 * start, End: bs0 * end}
		}
		return i - bs0*start, nil
	}

	ghosted := bs0 * p.maps[Rows].Size(indexmap.All)
	if i < 0 || i >= ghosted {
		return 0, &ErrRowOutOfRange{Row: i, Start: 0, End: ghosted}
	}
	return i, nil
}

// mapCol maps a column argument to a global element index.
func (p *SparsityPattern) mapCol(j int64, policy indexPolicy) (int64, error) {
	if policy != policyLocal {
		return j, nil
	}

	bs1 := int64(p.maps[Cols].BlockSize())
	node, component := j/bs1, j%bs1
	if j < 0 || node >= p.maps[Cols].Size(indexmap.All) {
		return 0, &ErrColumnOutOfRange{Col: j, End: bs1 * p.maps[Cols].Size(indexmap.All)}
	}
	return bs1*p.maps[Cols].LocalToGlobal(node) + component, nil
}

// insertEntries is the single insertion routine all three conventions funnel
// through. rows and cols form a dense cross product of candidate nonzeros.
func (p *SparsityPattern) insertEntries(rows, cols []int64, policy indexPolicy) error {
	hasFullRows := !p.fullRows.IsEmpty()

	if p.c.Size() == 1 {
		// Serial: local and global indices coincide, so no mapping or
		// ownership classification is needed.
		for _, i := range rows {
			if i < 0 || i >= int64(len(p.diagonal)) {
				return &ErrRowOutOfRange{Row: i, Start: 0, End: int64(len(p.diagonal))}
			}
			if hasFullRows && p.fullRows.Contains(uint64(i)) {
				continue
			}
			for _, j := range cols {
				p.diagonal[i].Add(uint64(j))
			}
		}
		return nil
	}

	bs1 := int64(p.maps[Cols].BlockSize())
	colStart, colEnd := p.maps[Cols].LocalRange()
	localSize0 := int64(len(p.diagonal))

	for _, i := range rows {
		I, err := p.mapRow(i, policy)
		if err != nil {
			return err
		}

		// Full rows are stored separately.
		if hasFullRows && p.fullRows.Contains(uint64(I)) {
			continue
		}

		if I < localSize0 {
			// Owned row: classify each column against the owned column range.
			for _, j := range cols {
				J, err := p.mapCol(j, policy)
				if err != nil {
					return err
				}
				if bs1*colStart <= J && J < bs1*colEnd {
					p.diagonal[I].Add(uint64(J))
				} else {
					p.offDiagonal[I].Add(uint64(J))
				}
			}
		} else {
			// Ghost row: the owner's column layout is unknown here, so stage
			// the pairs for the Apply exchange.
			for _, j := range cols {
				J, err := p.mapCol(j, policy)
				if err != nil {
					return err
				}
				p.nonLocal = append(p.nonLocal, uint64(I), uint64(J))
			}
		}
	}
	return nil
}

// InsertFullRowsLocal marks the given local element rows as dense across the
// entire global column range. Marking is retroactive and prospective: the
// rows' explicit sets are never consulted again, and later insertions into
// them are skipped.
func (p *SparsityPattern) InsertFullRowsLocal(rows []int64) error {
	ghosted := int64(p.maps[Rows].BlockSize()) * p.maps[Rows].Size(indexmap.All)
	for _, r := range rows {
		if r < 0 || r >= ghosted {
			return &ErrRowOutOfRange{Row: r, Start: 0, End: ghosted}
		}
		p.fullRows.Add(uint64(r))
	}
	return nil
}

// Apply finalizes the pattern: every buffered non-local entry is routed to
// its owning rank through one all-to-all exchange and inserted there.
//
// The call is collective — with more than one rank, every rank must call
// Apply exactly once, after all insertions and before any read. On a single
// rank nothing is ever buffered and Apply returns immediately.
func (p *SparsityPattern) Apply() error {
	p.logger.LogStats(p.Stats())

	if p.c.Size() == 1 {
		p.nonLocal = nil
		return nil
	}

	bs0 := int64(p.maps[Rows].BlockSize())
	bs1 := int64(p.maps[Cols].BlockSize())
	rowStart, rowEnd := p.maps[Rows].LocalRange()
	colStart, colEnd := p.maps[Cols].LocalRange()
	localSize0 := int64(len(p.diagonal))
	offset0 := bs0 * rowStart

	ghosts := p.maps[Rows].Ghosts()
	owners := p.maps[Rows].GhostOwners()

	// Bucket buffered pairs by owning rank, rewriting the row into its
	// canonical global form.
	send := make([][]uint64, p.c.Size())
	for i := 0; i+1 < len(p.nonLocal); i += 2 {
		iIndex := int64(p.nonLocal[i])
		J := p.nonLocal[i+1]

		if iIndex < localSize0 {
			return fmt.Errorf("%w: buffered row %d is locally owned", ErrInconsistentGhosts, iIndex)
		}
		node := (iIndex - localSize0) / bs0
		component := (iIndex - localSize0) % bs0
		if node >= int64(len(ghosts)) {
			return fmt.Errorf("%w: buffered row %d has no ghost node", ErrInconsistentGhosts, iIndex)
		}

		I := uint64(bs0*ghosts[node] + component)
		dst := int(owners[node])
		send[dst] = append(send[dst], I, J)
	}

	recv, err := p.c.AllToAll(send)
	if err != nil {
		p.logger.LogApply(len(p.nonLocal)/2, 0, err)
		return err
	}

	for i := 0; i+1 < len(recv); i += 2 {
		I := int64(recv[i])
		J := int64(recv[i+1])

		if I < bs0*rowStart || I >= bs0*rowEnd {
			err := &ErrRemoteEntryOutOfRange{Row: I, Start: bs0 * rowStart, End: bs0 * rowEnd}
			p.logger.LogApply(len(p.nonLocal)/2, len(recv)/2, err)
			return err
		}

		iIndex := I - offset0
		if bs1*colStart <= J && J < bs1*colEnd {
			p.diagonal[iIndex].Add(uint64(J))
		} else {
			p.offDiagonal[iIndex].Add(uint64(J))
		}
	}

	p.logger.LogApply(len(p.nonLocal)/2, len(recv)/2, nil)
	p.nonLocal = nil
	return nil
}

// Finalized reports whether the non-local buffer is empty. It is trivially
// true before any ghost-row insertion and permanently true after Apply.
func (p *SparsityPattern) Finalized() bool {
	return len(p.nonLocal) == 0
}

// IndexMap returns the index map of the given dimension. The map is shared;
// callers must not mutate it.
func (p *SparsityPattern) IndexMap(dim Dim) *indexmap.IndexMap {
	return p.maps[dim]
}

// LocalRange returns the half-open range of owned element indices of the
// given dimension.
func (p *SparsityPattern) LocalRange(dim Dim) (int64, int64) {
	bs := int64(p.maps[dim].BlockSize())
	start, end := p.maps[dim].LocalRange()
	return bs * start, bs * end
}

// GlobalSize returns the total number of element indices of the given
// dimension.
func (p *SparsityPattern) GlobalSize(dim Dim) int64 {
	return int64(p.maps[dim].BlockSize()) * p.maps[dim].Size(indexmap.Global)
}

// NumNonzeros returns the number of nonzeros on this rank, counting full
// rows at the full global column width.
func (p *SparsityPattern) NumNonzeros() int64 {
	var nz int64
	for _, s := range p.diagonal {
		nz += s.Len()
	}
	for _, s := range p.offDiagonal {
		nz += s.Len()
	}

	localSize0 := int64(len(p.diagonal))
	ncols := p.GlobalSize(Cols)
	for r := range p.fullRows.Iterator() {
		if int64(r) < localSize0 {
			nz += ncols
		}
	}
	return nz
}

// NumNonzerosDiagonal returns the per-row nonzero counts of the diagonal
// block. Full rows report the owned column width.
func (p *SparsityPattern) NumNonzerosDiagonal() []int64 {
	counts := make([]int64, len(p.diagonal))
	for i, s := range p.diagonal {
		counts[i] = s.Len()
	}

	if !p.fullRows.IsEmpty() {
		start, end := p.LocalRange(Cols)
		for r := range p.fullRows.Iterator() {
			if int64(r) < int64(len(counts)) {
				counts[r] = end - start
			}
		}
	}
	return counts
}

// NumNonzerosOffDiagonal returns the per-row nonzero counts of the
// off-diagonal block. Full rows report the unowned column width.
func (p *SparsityPattern) NumNonzerosOffDiagonal() []int64 {
	counts := make([]int64, len(p.offDiagonal))
	for i, s := range p.offDiagonal {
		counts[i] = s.Len()
	}

	if !p.fullRows.IsEmpty() {
		start, end := p.LocalRange(Cols)
		unowned := p.GlobalSize(Cols) - (end - start)
		for r := range p.fullRows.Iterator() {
			if int64(r) < int64(len(counts)) {
				counts[r] = unowned
			}
		}
	}
	return counts
}

// NumLocalNonzeros returns the per-row totals across both blocks.
func (p *SparsityPattern) NumLocalNonzeros() []int64 {
	counts := p.NumNonzerosDiagonal()
	for i, off := range p.NumNonzerosOffDiagonal() {
		counts[i] += off
	}
	return counts
}

// DiagonalPattern materializes the diagonal block, one ascending column slice
// per owned row. Full rows synthesize the whole owned column range.
func (p *SparsityPattern) DiagonalPattern(order Order) [][]int64 {
	v := make([][]int64, len(p.diagonal))
	for i, s := range p.diagonal {
		v[i] = make([]int64, 0, s.Len())
		for c := range s.Iterator() {
			v[i] = append(v[i], int64(c))
		}
	}

	if !p.fullRows.IsEmpty() {
		start, end := p.LocalRange(Cols)
		for r := range p.fullRows.Iterator() {
			if int64(r) >= int64(len(v)) {
				continue
			}
			row := make([]int64, 0, end-start)
			for j := start; j < end; j++ {
				row = append(row, j)
			}
			v[r] = row
		}
	}
	return v
}

// OffDiagonalPattern materializes the off-diagonal block, one ascending
// column slice per owned row. Full rows synthesize the complement of the
// owned column range within the global range.
func (p *SparsityPattern) OffDiagonalPattern(order Order) [][]int64 {
	v := make([][]int64, len(p.offDiagonal))
	for i, s := range p.offDiagonal {
		v[i] = make([]int64, 0, s.Len())
		for c := range s.Iterator() {
			v[i] = append(v[i], int64(c))
		}
	}

	if !p.fullRows.IsEmpty() {
		start, end := p.LocalRange(Cols)
		global := p.GlobalSize(Cols)
		for r := range p.fullRows.Iterator() {
			if int64(r) >= int64(len(v)) {
				continue
			}
			row := make([]int64, 0, global-(end-start))
			for j := int64(0); j < start; j++ {
				row = append(row, j)
			}
			for j := end; j < global; j++ {
				row = append(row, j)
			}
			v[r] = row
		}
	}
	return v
}

// String dumps the pattern row by row. Diagnostic only; the format carries
// no stability contract.
func (p *SparsityPattern) String() string {
	var b strings.Builder
	for i := range p.diagonal {
		fmt.Fprintf(&b, "Row %d:", i)
		for c := range p.diagonal[i].Iterator() {
			fmt.Fprintf(&b, " %d", c)
		}
		for c := range p.offDiagonal[i].Iterator() {
			fmt.Fprintf(&b, " %d", c)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
