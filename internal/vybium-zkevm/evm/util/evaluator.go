package util

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/core"
)

// RowEvaluator evaluates expressions at one row of a region. Queries past
// either end of the region read as zero. Queries of unassigned cells also
// read as zero and are recorded.
type RowEvaluator struct {
	region     *Region
	row        int
	randomness fr.Element
	unassigned []core.Query
}

// Evaluator returns an evaluator for row.
func (r *Region) Evaluator(row int, randomness fr.Element) *RowEvaluator {
	return &RowEvaluator{region: r, row: row, randomness: randomness}
}

func (e *RowEvaluator) Query(column, rotation int) fr.Element {
	row := e.row + rotation
	if row < 0 || row >= e.region.Height() {
		return fr.Element{}
	}
	if !e.region.IsAssigned(column, row) {
		e.unassigned = append(e.unassigned, core.Query{Column: column, Rotation: rotation})
		return fr.Element{}
	}
	return e.region.values[row][column]
}

func (e *RowEvaluator) Challenge() fr.Element { return e.randomness }

// Unassigned returns the unassigned cells queried so far.
func (e *RowEvaluator) Unassigned() []core.Query { return e.unassigned }

// Reset clears the recorded unassigned queries.
func (e *RowEvaluator) Reset() { e.unassigned = e.unassigned[:0] }
