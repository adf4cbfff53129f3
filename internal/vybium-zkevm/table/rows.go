package table

import (
	"github.com/cockroachdb/errors"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// MaxWidth is the widest table (rw) in columns.
const MaxWidth = 8

type rowKey [MaxWidth]fr.Element

// Rows is an immutable-after-build set of table rows of a fixed width,
// answering lookup membership queries.
type Rows struct {
	width int
	rows  [][]fr.Element
	set   map[rowKey]struct{}
}

// NewRows creates an empty row set for a table of width columns.
func NewRows(width int) *Rows {
	if width < 1 || width > MaxWidth {
		panic(errors.Newf("table width %d out of range [1, %d]", width, MaxWidth))
	}
	return &Rows{width: width, set: make(map[rowKey]struct{})}
}

// Width returns the number of columns.
func (r *Rows) Width() int { return r.width }

// Len returns the number of rows added, duplicates included.
func (r *Rows) Len() int { return len(r.rows) }

// Row returns the i-th added row.
func (r *Rows) Row(i int) []fr.Element { return r.rows[i] }

// Add appends one row. Missing trailing columns are zero.
func (r *Rows) Add(values ...fr.Element) error {
	if len(values) > r.width {
		return errors.Newf("row has %d columns, table has %d", len(values), r.width)
	}
	row := make([]fr.Element, r.width)
	copy(row, values)
	r.rows = append(r.rows, row)
	r.set[key(row)] = struct{}{}
	return nil
}

// MustAdd is Add for builders whose row widths are fixed by construction. It
// panics on a row wider than the table.
func (r *Rows) MustAdd(values ...fr.Element) {
	if err := r.Add(values...); err != nil {
		panic(err)
	}
}

// Contains reports whether values, zero padded to the table width, equal
// some row.
func (r *Rows) Contains(values []fr.Element) bool {
	if len(values) > r.width {
		return false
	}
	_, ok := r.set[key(values)]
	return ok
}

func key(values []fr.Element) rowKey {
	var k rowKey
	copy(k[:], values)
	return k
}
