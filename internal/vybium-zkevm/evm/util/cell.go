// Package util provides the building blocks of execution gadgets: cells and
// byte-decomposed words, the constraint builder every gadget is configured
// with, reusable math gadgets and the witness region they are assigned into.
package util

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/holiman/uint256"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/core"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/witness"
)

const (
	// WordSize is the number of byte cells of a Word.
	WordSize = 32
	// MemoryAddressSize is the number of byte cells of a MemoryAddress.
	MemoryAddressSize = 5
)

// Cell is one witness slot, Rotation rows below the step's row.
type Cell struct {
	Column   int
	Rotation int
}

// NewCell creates a cell.
func NewCell(column, rotation int) Cell {
	return Cell{Column: column, Rotation: rotation}
}

// Expr returns the query of the cell.
func (c Cell) Expr() core.Expression {
	return core.Query{Column: c.Column, Rotation: c.Rotation}
}

// Assign writes value for the step at offset.
func (c Cell) Assign(region Assigner, offset int, value fr.Element) error {
	return region.Assign(c.Column, offset+c.Rotation, value)
}

// AssignUint64 writes v for the step at offset.
func (c Cell) AssignUint64(region Assigner, offset int, v uint64) error {
	return c.Assign(region, offset, core.NewElement(v))
}

// RandomLinearCombination is a group of byte cells, least significant first,
// constrained through their RLC.
type RandomLinearCombination struct {
	Cells []Cell
	expr  core.Expression
}

// Word is a 256-bit value as 32 byte cells.
type Word = RandomLinearCombination

// MemoryAddress is a 40-bit memory offset as 5 byte cells.
type MemoryAddress = RandomLinearCombination

// NewRandomLinearCombination combines cells with the circuit randomness.
func NewRandomLinearCombination(cells []Cell) RandomLinearCombination {
	return RandomLinearCombination{
		Cells: cells,
		expr:  core.RandomLinearCombineExpr(Exprs(cells), core.Randomness()),
	}
}

// Expr returns the RLC of the cells.
func (w RandomLinearCombination) Expr() core.Expression { return w.expr }

// Assign writes one byte per cell. bytes must have exactly one entry per
// cell.
func (w RandomLinearCombination) Assign(region Assigner, offset int, bytes []byte) error {
	if len(bytes) != len(w.Cells) {
		return errInvalidWitness("%d bytes for %d cells", len(bytes), len(w.Cells))
	}
	for i, cell := range w.Cells {
		if err := cell.AssignUint64(region, offset, uint64(bytes[i])); err != nil {
			return err
		}
	}
	return nil
}

// AssignWord writes the little-endian bytes of v into a 32-cell word.
func (w RandomLinearCombination) AssignWord(region Assigner, offset int, v *uint256.Int) error {
	le := witness.ToLittleEndian(v)
	return w.Assign(region, offset, le[:])
}

// Exprs returns the queries of cells.
func Exprs(cells []Cell) []core.Expression {
	exprs := make([]core.Expression, len(cells))
	for i, cell := range cells {
		exprs[i] = cell.Expr()
	}
	return exprs
}
