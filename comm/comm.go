// Package comm provides the communication substrate for distributed index
// structures: a small rank/size abstraction plus the blocking collectives the
// rest of the module needs.
//
// Parallelism is across ranks via message passing, never shared memory. Two
// implementations are provided: Self for single-rank runs, and Group for
// running several ranks inside one process (one goroutine per rank), which is
// how the multi-rank tests and local tooling execute.
package comm

// Communicator is a fixed group of ranks that can take part in collectives.
//
// All collectives block until every rank in the group has entered the call.
// There is no cancellation: a rank that never joins a collective deadlocks
// the group, which is a caller bug, not a recoverable condition.
type Communicator interface {
	// Rank returns this member's rank in [0, Size).
	Rank() int

	// Size returns the number of ranks in the group.
	Size() int

	// AllToAll exchanges one variable-length buffer per destination rank.
	// send must hold exactly Size buffers; send[d] is delivered to rank d
	// (send[Rank()] is delivered to the caller itself). The result is the
	// concatenation of the buffers addressed to this rank, in sender-rank
	// order, so the aggregated layout is deterministic regardless of how
	// the exchange is scheduled.
	AllToAll(send [][]uint64) ([]uint64, error)

	// AllGather collects one value from every rank, in rank order.
	AllGather(v int64) ([]int64, error)
}
