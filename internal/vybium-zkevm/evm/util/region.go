package util

import (
	"github.com/cockroachdb/errors"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

//go:generate mockgen -source region.go -destination region_mock.go -package util

// ErrCellAssignment marks writes the region rejects and reads of cells that
// were never written.
var ErrCellAssignment = errors.New("cell assignment")

// Assigner is the write side of a region as seen by gadgets.
type Assigner interface {
	// Assign writes value to (column, row). Every slot can be written once.
	Assign(column, row int, value fr.Element) error
	// Value reads (column, row), failing for slots never written.
	Value(column, row int) (fr.Element, error)
}

// Region is a dense table of witness values, one row per step. Rows are
// stored separately so concurrent writers of different rows never share
// memory.
type Region struct {
	width    int
	values   [][]fr.Element
	assigned [][]bool
}

// NewRegion allocates a region of height rows and width columns.
func NewRegion(width, height int) *Region {
	r := &Region{
		width:    width,
		values:   make([][]fr.Element, height),
		assigned: make([][]bool, height),
	}
	for i := range r.values {
		r.values[i] = make([]fr.Element, width)
		r.assigned[i] = make([]bool, width)
	}
	return r
}

func (r *Region) Width() int  { return r.width }
func (r *Region) Height() int { return len(r.values) }

func (r *Region) Assign(column, row int, value fr.Element) error {
	if err := r.check(column, row); err != nil {
		return err
	}
	if r.assigned[row][column] {
		return errors.Mark(errors.Newf("cell (%d, %d) assigned twice", column, row), ErrCellAssignment)
	}
	r.values[row][column] = value
	r.assigned[row][column] = true
	return nil
}

func (r *Region) Value(column, row int) (fr.Element, error) {
	if err := r.check(column, row); err != nil {
		return fr.Element{}, err
	}
	if !r.assigned[row][column] {
		return fr.Element{}, errors.Mark(errors.Newf("cell (%d, %d) not assigned", column, row), ErrCellAssignment)
	}
	return r.values[row][column], nil
}

// IsAssigned reports whether (column, row) lies inside the region and was
// written.
func (r *Region) IsAssigned(column, row int) bool {
	return r.check(column, row) == nil && r.assigned[row][column]
}

func (r *Region) check(column, row int) error {
	if row < 0 || row >= len(r.values) || column < 0 || column >= r.width {
		return errors.Mark(errors.Newf("cell (%d, %d) outside region %dx%d", column, row, r.width, len(r.values)), ErrCellAssignment)
	}
	return nil
}
