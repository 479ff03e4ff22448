// Package snapshot persists finalized sparsity patterns.
//
// A snapshot is a self-describing binary file: a small uncompressed header
// (magic, version, flags) followed by a zstd-compressed body holding the
// pattern's ranges and one pair of roaring bitmaps per owned row. It is the
// hand-off format for matrix-construction consumers running out of process.
//
// Full rows are materialized into their explicit column ranges on write; a
// snapshot never needs the originating index maps to be read back.
package snapshot

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/klauspost/compress/zstd"

	"github.com/parmat/parmat"
)

var magic = [4]byte{'P', 'S', 'N', 'P'}

const (
	version = 1

	flagZstd = 1 << 0
)

// Options configures snapshot writing.
type Options struct {
	// Level is the zstd compression level for the snapshot body.
	Level zstd.EncoderLevel
}

// DefaultOptions are the options used when none are given.
var DefaultOptions = Options{
	Level: zstd.SpeedDefault,
}

// WithLevel sets the zstd compression level.
func WithLevel(level zstd.EncoderLevel) func(*Options) {
	return func(o *Options) {
		o.Level = level
	}
}

// header mirrors the on-disk body prelude, little endian.
type header struct {
	RowStart   int64
	RowEnd     int64
	ColStart   int64
	ColEnd     int64
	GlobalRows int64
	GlobalCols int64
	NumRows    uint64
}

// Write persists this rank's part of a finalized pattern to w.
// Writing an unfinalized pattern is a contract error.
func Write(w io.Writer, p *parmat.SparsityPattern, optFns ...func(*Options)) error {
	if !p.Finalized() {
		return fmt.Errorf("snapshot: %w", parmat.ErrNotFinalized)
	}

	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if _, err := w.Write(magic[:]); err != nil {
		return fmt.Errorf("snapshot: write magic: %w", err)
	}
	if _, err := w.Write([]byte{version, flagZstd}); err != nil {
		return fmt.Errorf("snapshot: write header: %w", err)
	}

	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(opts.Level))
	if err != nil {
		return fmt.Errorf("snapshot: create compressor: %w", err)
	}

	if err := writeBody(zw, p); err != nil {
		_ = zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("snapshot: flush compressor: %w", err)
	}
	return nil
}

func writeBody(w io.Writer, p *parmat.SparsityPattern) error {
	rowStart, rowEnd := p.LocalRange(parmat.Rows)
	colStart, colEnd := p.LocalRange(parmat.Cols)

	diag := p.DiagonalPattern(parmat.Sorted)
	off := p.OffDiagonalPattern(parmat.Sorted)

	h := header{
		RowStart:   rowStart,
		RowEnd:     rowEnd,
		ColStart:   colStart,
		ColEnd:     colEnd,
		GlobalRows: p.GlobalSize(parmat.Rows),
		GlobalCols: p.GlobalSize(parmat.Cols),
		NumRows:    uint64(len(diag)),
	}
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("snapshot: write body header: %w", err)
	}

	for i := range diag {
		if err := writeRow(w, diag[i]); err != nil {
			return fmt.Errorf("snapshot: write row %d: %w", i, err)
		}
		if err := writeRow(w, off[i]); err != nil {
			return fmt.Errorf("snapshot: write row %d: %w", i, err)
		}
	}
	return nil
}

func writeRow(w io.Writer, cols []int64) error {
	rb := roaring64.New()
	for _, c := range cols {
		rb.Add(uint64(c))
	}
	_, err := rb.WriteTo(w)
	return err
}

// Pattern is a decoded snapshot: one rank's finalized pattern with the row
// and column metadata needed to interpret it.
type Pattern struct {
	RowStart   int64
	RowEnd     int64
	ColStart   int64
	ColEnd     int64
	GlobalRows int64
	GlobalCols int64

	// Diagonal and OffDiagonal hold the ascending column indices of each
	// owned row, full rows already materialized.
	Diagonal    [][]int64
	OffDiagonal [][]int64
}

// NumNonzeros returns the number of entries in the decoded pattern.
func (p *Pattern) NumNonzeros() int64 {
	var nz int64
	for i := range p.Diagonal {
		nz += int64(len(p.Diagonal[i])) + int64(len(p.OffDiagonal[i]))
	}
	return nz
}

// Read decodes a snapshot written by Write.
func Read(r io.Reader) (*Pattern, error) {
	var head [6]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, fmt.Errorf("snapshot: read header: %w", err)
	}
	if [4]byte(head[:4]) != magic {
		return nil, ErrBadMagic
	}
	if head[4] != version {
		return nil, &ErrUnsupportedVersion{Version: head[4]}
	}
	if head[5]&flagZstd == 0 {
		return nil, &ErrUnsupportedFlags{Flags: head[5]}
	}

	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("snapshot: create decompressor: %w", err)
	}
	defer zr.Close()

	var h header
	if err := binary.Read(zr, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("snapshot: read body header: %w", err)
	}

	p := &Pattern{
		RowStart:    h.RowStart,
		RowEnd:      h.RowEnd,
		ColStart:    h.ColStart,
		ColEnd:      h.ColEnd,
		GlobalRows:  h.GlobalRows,
		GlobalCols:  h.GlobalCols,
		Diagonal:    make([][]int64, h.NumRows),
		OffDiagonal: make([][]int64, h.NumRows),
	}

	for i := uint64(0); i < h.NumRows; i++ {
		if p.Diagonal[i], err = readRow(zr); err != nil {
			return nil, fmt.Errorf("snapshot: read row %d: %w", i, err)
		}
		if p.OffDiagonal[i], err = readRow(zr); err != nil {
			return nil, fmt.Errorf("snapshot: read row %d: %w", i, err)
		}
	}
	return p, nil
}

func readRow(r io.Reader) ([]int64, error) {
	rb := roaring64.New()
	if _, err := rb.ReadFrom(r); err != nil {
		return nil, err
	}

	cols := make([]int64, 0, rb.GetCardinality())
	it := rb.Iterator()
	for it.HasNext() {
		cols = append(cols, int64(it.Next()))
	}
	return cols, nil
}
