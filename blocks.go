package parmat

import (
	"fmt"

	"github.com/parmat/parmat/comm"
	"github.com/parmat/parmat/indexmap"
)

// NewFromBlocks merges a rectangular grid of finalized sub-patterns into one
// pattern describing the row-major block concatenation, the way a block
// matrix is built from submatrices.
//
// The sub-patterns are only read, never taken over: the caller keeps owning
// them and may continue to query them afterwards. Every block of grid row r
// must share the row index map of blocks[r][0]; every block of grid column c
// must share the column index map of blocks[0][c]; and every block must be
// finalized. Violations are caller-contract errors.
//
// The merged pattern gets fresh unit-block index maps sized to the summed
// local sizes, with empty ghost lists. Re-deriving a ghost structure for the
// composite is a known simplification left to the caller.
func NewFromBlocks(c comm.Communicator, blocks [][]*SparsityPattern, optFns ...func(*Options)) (*SparsityPattern, error) {
	if len(blocks) == 0 || len(blocks[0]) == 0 {
		return nil, ErrEmptyBlockGrid
	}

	ncols := len(blocks[0])
	for r, row := range blocks {
		if len(row) != ncols {
			return nil, ErrRaggedBlockGrid
		}
		for cc, b := range row {
			if b == nil {
				return nil, fmt.Errorf("%w: block (%d,%d)", ErrNilBlock, r, cc)
			}
			if !b.Finalized() {
				return nil, fmt.Errorf("%w: block (%d,%d)", ErrNotFinalized, r, cc)
			}
			if b.maps[Rows] != row[0].maps[Rows] {
				return nil, &ErrIndexMapMismatch{Dim: Rows, Row: r, Col: cc}
			}
			if b.maps[Cols] != blocks[0][cc].maps[Cols] {
				return nil, &ErrIndexMapMismatch{Dim: Cols, Row: r, Col: cc}
			}
		}
	}

	// Cumulative local sizes, in element units: rows from the first column's
	// row maps, columns from the first row's column maps.
	var rowLocalSize int64
	for r := range blocks {
		m := blocks[r][0].maps[Rows]
		size := int64(m.BlockSize()) * m.Size(indexmap.Owned)
		if declared := int64(len(blocks[r][0].diagonal)); declared != size {
			return nil, &ErrBlockStorageSize{Row: r, Declared: declared, FromMap: size}
		}
		rowLocalSize += size
	}

	var colLocalSize int64
	cmaps := make([]*indexmap.IndexMap, ncols)
	for cc := range blocks[0] {
		m := blocks[0][cc].maps[Cols]
		cmaps[cc] = m
		colLocalSize += int64(m.BlockSize()) * m.Size(indexmap.Owned)
	}

	// Fresh maps for the composite; both New calls are collective.
	rowMap, err := indexmap.New(c, rowLocalSize, nil, 1)
	if err != nil {
		return nil, err
	}
	colMap, err := indexmap.New(c, colLocalSize, nil, 1)
	if err != nil {
		return nil, err
	}

	merged, err := New(c, rowMap, colMap, optFns...)
	if err != nil {
		return nil, err
	}

	var rowOffset int64
	for r := range blocks {
		for cc := range blocks[r] {
			b := blocks[r][cc]
			for k := range b.diagonal {
				for col := range b.diagonal[k].Iterator() {
					merged.diagonal[int64(k)+rowOffset].Add(compositeColumn(cmaps, cc, col))
				}
				for col := range b.offDiagonal[k].Iterator() {
					merged.offDiagonal[int64(k)+rowOffset].Add(compositeColumn(cmaps, cc, col))
				}
			}
		}
		rowOffset += int64(len(blocks[r][0].diagonal))
	}

	return merged, nil
}

// compositeColumn re-bases a global element column of block grid column
// field into the composite numbering. The composite orders elements rank
// major: all elements owned by lower ranks (across every block column) come
// first, then the owning rank's lower block columns, then the element's
// offset within its owner's chunk. Ownership classification is therefore
// preserved: block-diagonal entries stay diagonal in the composite.
func compositeColumn(cmaps []*indexmap.IndexMap, field int, col uint64) uint64 {
	m := cmaps[field]
	bs := int64(m.BlockSize())

	owner := m.Owner(int64(col) / bs)
	ownerStart, _ := m.RankRange(owner)
	within := int64(col) - bs*ownerStart

	var offset int64
	for _, cm := range cmaps {
		cbs := int64(cm.BlockSize())
		for q := 0; q < owner; q++ {
			qs, qe := cm.RankRange(q)
			offset += cbs * (qe - qs)
		}
	}
	for j := 0; j < field; j++ {
		qs, qe := cmaps[j].RankRange(owner)
		offset += int64(cmaps[j].BlockSize()) * (qe - qs)
	}

	return uint64(offset + within)
}
