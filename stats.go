package parmat

import (
	"fmt"
	"strings"
)

// Stats summarizes the nonzero structure held by this rank.
type Stats struct {
	GlobalRows  int64
	GlobalCols  int64
	Diagonal    int64 // explicit entries in the diagonal block
	OffDiagonal int64 // explicit entries in the off-diagonal block
	NonLocal    int64 // buffered entries awaiting Apply
	FullRows    int64 // rows marked dense
}

// Total returns the number of explicit and buffered entries.
func (s Stats) Total() int64 {
	return s.Diagonal + s.OffDiagonal + s.NonLocal
}

// String renders the statistics in a human-readable form. Diagnostic only.
func (s Stats) String() string {
	var b strings.Builder

	total := s.Total()
	fill := 0.0
	if s.GlobalRows > 0 && s.GlobalCols > 0 {
		fill = 100.0 * float64(total) / (float64(s.GlobalRows) * float64(s.GlobalCols))
	}
	fmt.Fprintf(&b, "Matrix of size %d x %d has %d (%.2f%%) nonzero entries.",
		s.GlobalRows, s.GlobalCols, total, fill)

	if total != s.Diagonal && total > 0 {
		pct := func(n int64) float64 { return 100.0 * float64(n) / float64(total) }
		fmt.Fprintf(&b, "\nDiagonal: %d (%.2f%%), off-diagonal: %d (%.2f%%), non-local: %d (%.2f%%)",
			s.Diagonal, pct(s.Diagonal),
			s.OffDiagonal, pct(s.OffDiagonal),
			s.NonLocal, pct(s.NonLocal))
	}
	if s.FullRows > 0 {
		fmt.Fprintf(&b, "\nFull rows: %d", s.FullRows)
	}
	return b.String()
}

// Stats returns this rank's pattern statistics. Full rows are reported as a
// count, not expanded into entries.
func (p *SparsityPattern) Stats() Stats {
	s := Stats{
		GlobalRows: p.GlobalSize(Rows),
		GlobalCols: p.GlobalSize(Cols),
		NonLocal:   int64(len(p.nonLocal) / 2),
		FullRows:   p.fullRows.Len(),
	}
	for _, set := range p.diagonal {
		s.Diagonal += set.Len()
	}
	for _, set := range p.offDiagonal {
		s.OffDiagonal += set.Len()
	}
	return s
}
