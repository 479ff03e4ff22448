package parmat

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// indexSet is an ordered-unique set of element indices.
// It wraps a 64-bit Roaring Bitmap: membership insert is deduplicating and
// iteration is ascending, which is what the per-row column sets and the
// full-row marker set need.
type indexSet struct {
	rb *roaring64.Bitmap
}

// newIndexSet creates a new empty index set.
func newIndexSet() *indexSet {
	return &indexSet{
		rb: roaring64.New(),
	}
}

// Add inserts an index into the set.
func (s *indexSet) Add(v uint64) {
	s.rb.Add(v)
}

// Contains checks if an index is in the set.
func (s *indexSet) Contains(v uint64) bool {
	return s.rb.Contains(v)
}

// IsEmpty returns true if the set is empty.
func (s *indexSet) IsEmpty() bool {
	return s.rb.IsEmpty()
}

// Len returns the number of indices in the set.
func (s *indexSet) Len() int64 {
	return int64(s.rb.GetCardinality())
}

// Values returns the indices in ascending order.
func (s *indexSet) Values() []uint64 {
	return s.rb.ToArray()
}

// Iterator returns an ascending iterator over the set.
func (s *indexSet) Iterator() iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		it := s.rb.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}
