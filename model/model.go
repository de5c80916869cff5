// Package model holds the immutable, in-memory representation of an OPAT
// container once it has been fully read and validated: a File owns a set of
// DataCards keyed by parameter vector, and each DataCard owns a set of
// named Tables. Nothing in this package performs I/O; it is the product of
// reader.Open.
package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/4D-STAR/opat-core/internal/errs"
	"github.com/4D-STAR/opat-core/paramkey"
)

// Table is a two-axis lattice of cell vectors. Cell (row, col) holds
// VectorSize consecutive float64 values, packed row-major in Data.
type Table struct {
	tag        string
	rowAxis    []float64
	colAxis    []float64
	vectorSize int
	data       []float64 // len == len(rowAxis)*len(colAxis)*vectorSize
}

// NewTable builds a Table, validating that data is exactly shaped for the
// given axes and vector size.
func NewTable(tag string, rowAxis, colAxis []float64, vectorSize int, data []float64) (*Table, error) {
	want := len(rowAxis) * len(colAxis) * vectorSize
	if len(data) != want {
		return nil, fmt.Errorf("model: table %q data length %d, want %d (%d x %d x %d)",
			tag, len(data), want, len(rowAxis), len(colAxis), vectorSize)
	}
	return &Table{
		tag:        tag,
		rowAxis:    rowAxis,
		colAxis:    colAxis,
		vectorSize: vectorSize,
		data:       data,
	}, nil
}

// Tag returns the table's name within its DataCard.
func (t *Table) Tag() string { return t.tag }

// NumRows returns the length of the row axis.
func (t *Table) NumRows() int { return len(t.rowAxis) }

// NumCols returns the length of the column axis.
func (t *Table) NumCols() int { return len(t.colAxis) }

// VectorSize returns the number of float64 values stored per cell.
func (t *Table) VectorSize() int { return t.vectorSize }

// RowAxisValues returns the row coordinate values in the order they were
// stored; their order is not checked.
func (t *Table) RowAxisValues() []float64 { return t.rowAxis }

// ColumnAxisValues returns the column coordinate values in the order they
// were stored; their order is not checked.
func (t *Table) ColumnAxisValues() []float64 { return t.colAxis }

// At returns a zero-copy view of the cell at (row, col).
func (t *Table) At(row, col int) ([]float64, error) {
	if row < 0 || row >= len(t.rowAxis) {
		return nil, fmt.Errorf("model: row %d out of range [0,%d)", row, len(t.rowAxis))
	}
	if col < 0 || col >= len(t.colAxis) {
		return nil, fmt.Errorf("model: col %d out of range [0,%d)", col, len(t.colAxis))
	}
	start := (row*len(t.colAxis) + col) * t.vectorSize
	return t.data[start : start+t.vectorSize : start+t.vectorSize], nil
}

// GetRow returns a one-row Table holding row's data across every column,
// so GetRow(r).At(0, c) equals At(r, c) for every valid c.
func (t *Table) GetRow(row int) (*Table, error) {
	if row < 0 || row >= len(t.rowAxis) {
		return nil, fmt.Errorf("model: row %d out of range [0,%d)", row, len(t.rowAxis))
	}
	width := len(t.colAxis) * t.vectorSize
	start := row * width
	data := make([]float64, width)
	copy(data, t.data[start:start+width])
	return NewTable(t.tag, []float64{t.rowAxis[row]}, t.colAxis, t.vectorSize, data)
}

// GetColumn returns a one-column Table holding col's data across every row,
// so GetColumn(c).At(r, 0) equals At(r, c) for every valid r.
func (t *Table) GetColumn(col int) (*Table, error) {
	if col < 0 || col >= len(t.colAxis) {
		return nil, fmt.Errorf("model: col %d out of range [0,%d)", col, len(t.colAxis))
	}
	data := make([]float64, len(t.rowAxis)*t.vectorSize)
	for r := range t.rowAxis {
		cell, err := t.At(r, col)
		if err != nil {
			return nil, err
		}
		copy(data[r*t.vectorSize:(r+1)*t.vectorSize], cell)
	}
	return NewTable(t.tag, t.rowAxis, []float64{t.colAxis[col]}, t.vectorSize, data)
}

// Slice returns the sub-table spanning the half-open row range
// [rowRange[0], rowRange[1]) and column range [colRange[0], colRange[1]).
func (t *Table) Slice(rowRange, colRange [2]int) (*Table, error) {
	r0, r1 := rowRange[0], rowRange[1]
	c0, c1 := colRange[0], colRange[1]
	if r0 < 0 || r1 > len(t.rowAxis) || r0 > r1 {
		return nil, fmt.Errorf("model: row range [%d,%d) out of bounds [0,%d)", r0, r1, len(t.rowAxis))
	}
	if c0 < 0 || c1 > len(t.colAxis) || c0 > c1 {
		return nil, fmt.Errorf("model: col range [%d,%d) out of bounds [0,%d)", c0, c1, len(t.colAxis))
	}
	rows, cols := r1-r0, c1-c0
	data := make([]float64, rows*cols*t.vectorSize)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			cell, err := t.At(r0+r, c0+c)
			if err != nil {
				return nil, err
			}
			idx := (r*cols + c) * t.vectorSize
			copy(data[idx:idx+t.vectorSize], cell)
		}
	}
	return NewTable(t.tag, t.rowAxis[r0:r1], t.colAxis[c0:c1], t.vectorSize, data)
}

// Ascii renders the table as a human-readable dump: its tag, both axes, and
// every cell's vector, suitable for diagnostics or a CLI dump command.
func (t *Table) Ascii() string {
	var b strings.Builder
	fmt.Fprintf(&b, "table %q (%d x %d, vector %d)\n", t.tag, len(t.rowAxis), len(t.colAxis), t.vectorSize)
	fmt.Fprintf(&b, "rows: %v\n", t.rowAxis)
	fmt.Fprintf(&b, "cols: %v\n", t.colAxis)
	for r := range t.rowAxis {
		for c := range t.colAxis {
			cell, _ := t.At(r, c)
			fmt.Fprintf(&b, "%v ", cell)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Data returns the full row-major backing buffer, unexported fields and all
// shape information made explicit via the methods above. Callers must not
// mutate it; it may be shared by multiple readers of the same File.
func (t *Table) Data() []float64 { return t.data }

// DataCard is the set of Tables stored at a single parameter vector.
type DataCard struct {
	key    paramkey.Key
	tables map[string]*Table
	tags   []string // stable iteration order, as encountered on disk
}

// NewDataCard builds a DataCard from its key and tables, keyed by tag. tags
// fixes the iteration order returned by Tags.
func NewDataCard(key paramkey.Key, tables map[string]*Table, tags []string) *DataCard {
	return &DataCard{key: key, tables: tables, tags: tags}
}

// Key returns the card's parameter vector.
func (c *DataCard) Key() paramkey.Key { return c.key }

// Table looks up a table by tag.
func (c *DataCard) Table(tag string) (*Table, bool) {
	t, ok := c.tables[tag]
	return t, ok
}

// Tags returns the card's table names in on-disk order.
func (c *DataCard) Tags() []string { return c.tags }

// File is the fully-loaded, immutable contents of one OPAT container.
type File struct {
	version       uint32
	numDimensions int
	precision     int
	cards         []*DataCard
	byKey         map[any]*DataCard
}

// NewFile builds a File from its cards. Cards with duplicate keys are
// rejected: the container format does not permit two cards at the same
// parameter vector.
func NewFile(version uint32, numDimensions, precision int, cards []*DataCard) (*File, error) {
	byKey := make(map[any]*DataCard, len(cards))
	for _, c := range cards {
		mk := c.key.MapKey()
		if _, exists := byKey[mk]; exists {
			return nil, fmt.Errorf("model: duplicate data card at key %s", c.key.String())
		}
		byKey[mk] = c
	}
	return &File{
		version:       version,
		numDimensions: numDimensions,
		precision:     precision,
		cards:         cards,
		byKey:         byKey,
	}, nil
}

// Version returns the container format version this File was read from.
func (f *File) Version() uint32 { return f.version }

// NumDimensions returns N, the shared dimensionality of every card's key.
func (f *File) NumDimensions() int { return f.numDimensions }

// Precision returns the shared ParamKey precision used for all cards.
func (f *File) Precision() int { return f.precision }

// Cards returns every card in on-disk order.
func (f *File) Cards() []*DataCard { return f.cards }

// Card looks up a card by exact parameter key.
func (f *File) Card(key paramkey.Key) (*DataCard, bool) {
	c, ok := f.byKey[key.MapKey()]
	return c, ok
}

// GetByValues constructs a ParamKey from values at the file's own precision
// and looks up the card at that exact key, without any interpolation.
func (f *File) GetByValues(values []float64) (*DataCard, error) {
	key, err := paramkey.New(values, f.precision)
	if err != nil {
		return nil, fmt.Errorf("model: %w: %w", errs.ErrInvalidArgument, err)
	}
	card, ok := f.Card(key)
	if !ok {
		return nil, &errs.NotFoundError{Kind: "card", Name: key.String()}
	}
	return card, nil
}

// Keys returns every card's parameter key, sorted lexicographically by
// value for deterministic iteration.
func (f *File) Keys() []paramkey.Key {
	keys := make([]paramkey.Key, len(f.cards))
	for i, c := range f.cards {
		keys[i] = c.Key()
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i].Values(), keys[j].Values()
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})
	return keys
}
