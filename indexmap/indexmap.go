// Package indexmap describes how a global index space is partitioned across
// the ranks of a communicator.
//
// Each rank owns a contiguous half-open range of index "nodes" and may
// additionally reference ghost nodes owned by other ranks. A node stands for
// blockSize consecutive scalar indices (elements); most queries here are in
// node units, and callers scale by BlockSize where they need element units.
package indexmap

import (
	"sort"

	"github.com/parmat/parmat/comm"
)

// MapSize selects which node count a Size query reports.
type MapSize int

const (
	// Owned counts only the nodes owned by this rank.
	Owned MapSize = iota
	// All counts owned plus ghost nodes.
	All
	// Global counts the nodes of the whole index space.
	Global
)

// IndexMap is one rank's view of a partitioned global index space.
//
// It is immutable after construction and safe to share between any number of
// patterns and matrices.
type IndexMap struct {
	c         comm.Communicator
	blockSize int

	// ranges is the exclusive prefix sum of per-rank owned sizes, length
	// Size()+1; rank r owns nodes [ranges[r], ranges[r+1]).
	ranges []int64

	ghosts []int64 // global ids of ghost nodes
	owners []int32 // owners[i] is the rank owning ghosts[i]
}

// New builds an IndexMap from this rank's owned size and ghost list.
//
// The call is collective: every rank of c must call New with its own local
// size so the owned ranges can be derived from an exchange of sizes. Ghost
// owners are computed from the resulting ranges.
func New(c comm.Communicator, localSize int64, ghosts []int64, blockSize int) (*IndexMap, error) {
	if localSize < 0 {
		return nil, ErrNegativeLocalSize
	}
	if blockSize < 1 {
		return nil, &ErrInvalidBlockSize{BlockSize: blockSize}
	}

	sizes, err := c.AllGather(localSize)
	if err != nil {
		return nil, err
	}

	ranges := make([]int64, len(sizes)+1)
	for r, s := range sizes {
		ranges[r+1] = ranges[r] + s
	}

	m := &IndexMap{
		c:         c,
		blockSize: blockSize,
		ranges:    ranges,
		ghosts:    append([]int64(nil), ghosts...),
		owners:    make([]int32, len(ghosts)),
	}

	rank := c.Rank()
	for i, g := range m.ghosts {
		if g < 0 || g >= m.ranges[len(m.ranges)-1] {
			return nil, &ErrGhostOutOfRange{Ghost: g, GlobalSize: m.ranges[len(m.ranges)-1]}
		}
		owner := m.Owner(g)
		if owner == rank {
			return nil, &ErrGhostOwnedLocally{Ghost: g, Rank: rank}
		}
		m.owners[i] = int32(owner)
	}

	return m, nil
}

// BlockSize returns the number of elements per node.
func (m *IndexMap) BlockSize() int { return m.blockSize }

// LocalRange returns the half-open range of nodes owned by this rank.
func (m *IndexMap) LocalRange() (int64, int64) {
	r := m.c.Rank()
	return m.ranges[r], m.ranges[r+1]
}

// RankRange returns the half-open range of nodes owned by the given rank.
func (m *IndexMap) RankRange(rank int) (int64, int64) {
	return m.ranges[rank], m.ranges[rank+1]
}

// Size returns a node count for this map.
func (m *IndexMap) Size(kind MapSize) int64 {
	start, end := m.LocalRange()
	switch kind {
	case Owned:
		return end - start
	case All:
		return end - start + int64(len(m.ghosts))
	default:
		return m.ranges[len(m.ranges)-1]
	}
}

// Ghosts returns the global ids of this rank's ghost nodes. The returned
// slice must not be modified.
func (m *IndexMap) Ghosts() []int64 { return m.ghosts }

// GhostOwners returns the owning rank of each ghost node, parallel to
// Ghosts. The returned slice must not be modified.
func (m *IndexMap) GhostOwners() []int32 { return m.owners }

// LocalToGlobal maps a local node index to its global id. Indices below the
// owned size address owned nodes; the remainder address ghosts in Ghosts()
// order.
func (m *IndexMap) LocalToGlobal(local int64) int64 {
	start, end := m.LocalRange()
	if local < end-start {
		return start + local
	}
	return m.ghosts[local-(end-start)]
}

// Owner returns the rank owning the given global node.
func (m *IndexMap) Owner(global int64) int {
	// First range whose end exceeds global.
	return sort.Search(len(m.ranges)-1, func(r int) bool {
		return m.ranges[r+1] > global
	})
}

// Comm returns the communicator this map was built on.
func (m *IndexMap) Comm() comm.Communicator { return m.c }
