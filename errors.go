package parmat

import (
	"errors"
	"fmt"
)

var (
	// ErrNilArgument is returned when a constructor is given a nil
	// communicator or index map.
	ErrNilArgument = errors.New("communicator and index maps must be non-nil")

	// ErrNotFinalized is returned when an operation requires a finalized
	// pattern (Apply already called, non-local buffer empty).
	ErrNotFinalized = errors.New("sparsity pattern has not been finalised (apply needs to be called)")

	// ErrEmptyBlockGrid is returned when a block grid has no rows or columns.
	ErrEmptyBlockGrid = errors.New("block grid must have at least one row and one column")

	// ErrRaggedBlockGrid is returned when block grid rows differ in length.
	ErrRaggedBlockGrid = errors.New("block grid must be rectangular")

	// ErrNilBlock is returned when a block grid contains a nil sub-pattern.
	ErrNilBlock = errors.New("block grid contains a nil sub-pattern")

	// ErrInconsistentGhosts indicates that a buffered non-local entry cannot
	// be resolved against the row index map's ghost table. This is an index
	// map consistency violation, not a recoverable condition.
	ErrInconsistentGhosts = errors.New("non-local entry does not resolve to a ghost row")
)

// ErrRowOutOfRange indicates a row index outside the range the insertion
// convention allows, in element units.
type ErrRowOutOfRange struct {
	Row   int64
	Start int64
	End   int64
}

func (e *ErrRowOutOfRange) Error() string {
	return fmt.Sprintf("row %d outside range [%d, %d)", e.Row, e.Start, e.End)
}

// ErrColumnOutOfRange indicates a local column index with no corresponding
// node in the column index map.
type ErrColumnOutOfRange struct {
	Col int64
	End int64
}

func (e *ErrColumnOutOfRange) Error() string {
	return fmt.Sprintf("local column %d outside range [0, %d)", e.Col, e.End)
}

// ErrRemoteEntryOutOfRange indicates that an entry received during the
// finalize exchange names a row this rank does not own. It means the index
// maps or the ghost-owner tables disagree across ranks.
type ErrRemoteEntryOutOfRange struct {
	Row   int64
	Start int64
	End   int64
}

func (e *ErrRemoteEntryOutOfRange) Error() string {
	return fmt.Sprintf("received illegal sparsity pattern entry for row %d, not in range [%d, %d)", e.Row, e.Start, e.End)
}

// ErrIndexMapMismatch indicates that a block grid sub-pattern does not share
// the index map required by its position: all blocks of one grid row must
// share a row map, all blocks of one grid column a column map.
type ErrIndexMapMismatch struct {
	Dim Dim
	Row int
	Col int
}

func (e *ErrIndexMapMismatch) Error() string {
	which := "row"
	if e.Dim == Cols {
		which = "column"
	}
	return fmt.Sprintf("block (%d,%d) does not share the %s index map of its block %s", e.Row, e.Col, which, which)
}

// ErrBlockStorageSize indicates a sub-pattern whose stored row count does not
// match what its row index map reports.
type ErrBlockStorageSize struct {
	Row      int
	Declared int64
	FromMap  int64
}

func (e *ErrBlockStorageSize) Error() string {
	return fmt.Sprintf("block row %d stores %d rows but its index map reports %d", e.Row, e.Declared, e.FromMap)
}
