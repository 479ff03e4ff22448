// Package parmat builds the sparsity pattern of a distributed sparse matrix
// before any numeric assembly takes place.
//
// A SparsityPattern records which (row, column) entries of the matrix will be
// nonzero. Each rank of a communicator owns a contiguous range of rows; the
// columns of every owned row are split into a diagonal block (columns owned
// by this rank) and an off-diagonal block (columns owned by other ranks).
// Entries addressed to rows owned by other ranks are buffered and routed to
// their owner by a single collective exchange.
//
// # Quick start
//
// Serial:
//
//	c := comm.Self()
//	rows, _ := indexmap.New(c, 3, nil, 1)
//	cols, _ := indexmap.New(c, 3, nil, 1)
//	p, _ := parmat.New(c, rows, cols)
//	_ = p.InsertGlobal([]int64{0, 1}, []int64{0, 2})
//	_ = p.Apply()
//	nnz := p.NumNonzeros()
//
// Distributed, one goroutine per rank:
//
//	members, _ := comm.NewGroup(2)
//	// per rank: build index maps, insert entries, then
//	_ = p.Apply() // collective; every rank must call it exactly once
//
// Insertion treats its row and column arguments as a dense cross product:
// every row is paired with every column. Three conventions are provided,
// differing only in the index space of the arguments: InsertGlobal,
// InsertLocal and InsertLocalGlobal.
//
// Rows known to be dense across the whole column range can be marked with
// InsertFullRowsLocal; they are stored compactly and synthesized on demand
// by the count and pattern queries.
//
// Finalized patterns can be merged into a block-matrix pattern with
// NewFromBlocks, and persisted with the snapshot package.
package parmat
