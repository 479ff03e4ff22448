package indexmap

import (
	"errors"
	"fmt"
)

var (
	// ErrNegativeLocalSize is returned when a map is built with a negative
	// owned size.
	ErrNegativeLocalSize = errors.New("indexmap: local size must be non-negative")
)

// ErrInvalidBlockSize indicates a non-positive block size.
type ErrInvalidBlockSize struct {
	BlockSize int
}

func (e *ErrInvalidBlockSize) Error() string {
	return fmt.Sprintf("indexmap: invalid block size %d", e.BlockSize)
}

// ErrGhostOutOfRange indicates a ghost node id outside the global index space.
type ErrGhostOutOfRange struct {
	Ghost      int64
	GlobalSize int64
}

func (e *ErrGhostOutOfRange) Error() string {
	return fmt.Sprintf("indexmap: ghost node %d outside global range [0, %d)", e.Ghost, e.GlobalSize)
}

// ErrGhostOwnedLocally indicates a ghost node that falls inside the caller's
// own owned range; ghosts must reference nodes owned by other ranks.
type ErrGhostOwnedLocally struct {
	Ghost int64
	Rank  int
}

func (e *ErrGhostOwnedLocally) Error() string {
	return fmt.Sprintf("indexmap: ghost node %d is owned by this rank (%d)", e.Ghost, e.Rank)
}
