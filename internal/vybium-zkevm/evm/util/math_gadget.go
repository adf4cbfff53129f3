package util

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/core"
)

// IsZeroGadget returns 1 when value is 0 and 0 otherwise.
type IsZeroGadget struct {
	inverse Cell
	isZero  core.Expression
}

func NewIsZeroGadget(cb *ConstraintBuilder, value core.Expression) *IsZeroGadget {
	inverse := cb.QueryCell()
	isZero := Not(core.Mul(value, inverse.Expr()))
	// value != 0 forces inverse = 1/value and so is_zero = 0. value = 0 makes
	// is_zero = 1 whatever inverse is, so inverse is pinned to 0.
	cb.RequireZero("value * is_zero == 0", core.Mul(value, isZero))
	cb.RequireZero("inverse * is_zero == 0", core.Mul(inverse.Expr(), isZero))
	return &IsZeroGadget{inverse: inverse, isZero: isZero}
}

func (g *IsZeroGadget) Expr() core.Expression { return g.isZero }

// Assign writes the inverse of value and returns the gadget output.
func (g *IsZeroGadget) Assign(region Assigner, offset int, value fr.Element) (fr.Element, error) {
	if err := g.inverse.Assign(region, offset, core.Inverse(value)); err != nil {
		return fr.Element{}, err
	}
	return core.NewElementFromBool(value.IsZero()), nil
}

// IsEqualGadget returns 1 when lhs equals rhs and 0 otherwise.
type IsEqualGadget struct {
	isZero *IsZeroGadget
}

func NewIsEqualGadget(cb *ConstraintBuilder, lhs, rhs core.Expression) *IsEqualGadget {
	return &IsEqualGadget{isZero: NewIsZeroGadget(cb, core.Sub(lhs, rhs))}
}

func (g *IsEqualGadget) Expr() core.Expression { return g.isZero.Expr() }

func (g *IsEqualGadget) Assign(region Assigner, offset int, lhs, rhs fr.Element) (fr.Element, error) {
	var diff fr.Element
	diff.Sub(&lhs, &rhs)
	return g.isZero.Assign(region, offset, diff)
}

// LtGadget returns 1 when lhs < rhs for lhs and rhs of at most n bytes. It
// decomposes lhs - rhs, shifted by 256^n when negative, into n range checked
// bytes.
type LtGadget struct {
	lt   Cell
	diff []Cell
	rng  fr.Element
}

func NewLtGadget(cb *ConstraintBuilder, lhs, rhs core.Expression, n int) *LtGadget {
	if n < 1 || n > core.MaxBytesField {
		panic(errInvalidConfiguration("lt gadget over %d bytes", n))
	}
	g := &LtGadget{
		lt:   cb.QueryBool(),
		diff: cb.QueryBytes(n),
		rng:  Range(8 * n),
	}
	cb.RequireEqual("lhs - rhs == diff - (lt * range)",
		core.Sub(lhs, rhs),
		core.Sub(FromBytes(g.diff), core.Scale(g.lt.Expr(), g.rng)),
	)
	return g
}

func (g *LtGadget) Expr() core.Expression { return g.lt.Expr() }

// DiffBytes returns the byte cells of the shifted difference.
func (g *LtGadget) DiffBytes() []Cell { return g.diff }

// Assign writes lt and the difference bytes. It returns lt and the
// difference bytes.
func (g *LtGadget) Assign(region Assigner, offset int, lhs, rhs fr.Element) (fr.Element, []byte, error) {
	lt := lhs.Cmp(&rhs) < 0
	var diff fr.Element
	diff.Sub(&lhs, &rhs)
	if lt {
		diff.Add(&diff, &g.rng)
	}
	le := core.ToLittleEndian(diff)
	for _, b := range le[len(g.diff):] {
		if b != 0 {
			return fr.Element{}, nil, errInvalidWitness("difference of %s and %s does not fit %d bytes", lhs.String(), rhs.String(), len(g.diff))
		}
	}

	ltValue := core.NewElementFromBool(lt)
	if err := g.lt.Assign(region, offset, ltValue); err != nil {
		return fr.Element{}, nil, err
	}
	bytes := le[:len(g.diff)]
	for i, cell := range g.diff {
		if err := cell.AssignUint64(region, offset, uint64(bytes[i])); err != nil {
			return fr.Element{}, nil, err
		}
	}
	return ltValue, bytes, nil
}

// ComparisonGadget returns (lt, eq) for two values of at most n bytes.
type ComparisonGadget struct {
	lt *LtGadget
	eq *IsZeroGadget
}

func NewComparisonGadget(cb *ConstraintBuilder, lhs, rhs core.Expression, n int) *ComparisonGadget {
	lt := NewLtGadget(cb, lhs, rhs, n)
	// lhs == rhs iff lt = 0 and every diff byte is 0; lt = 1 never has a zero
	// difference.
	eq := NewIsZeroGadget(cb, Sum(lt.DiffBytes()))
	return &ComparisonGadget{lt: lt, eq: eq}
}

// Expr returns the lt and eq outputs.
func (g *ComparisonGadget) Expr() (core.Expression, core.Expression) {
	return g.lt.Expr(), g.eq.Expr()
}

func (g *ComparisonGadget) Assign(region Assigner, offset int, lhs, rhs fr.Element) (fr.Element, fr.Element, error) {
	lt, diff, err := g.lt.Assign(region, offset, lhs, rhs)
	if err != nil {
		return fr.Element{}, fr.Element{}, err
	}
	eq, err := g.eq.Assign(region, offset, SumValue(diff))
	if err != nil {
		return fr.Element{}, fr.Element{}, err
	}
	return lt, eq, nil
}

// RangeCheckGadget requires value to fit in n bytes.
type RangeCheckGadget struct {
	parts []Cell
}

func NewRangeCheckGadget(cb *ConstraintBuilder, value core.Expression, n int) *RangeCheckGadget {
	parts := cb.QueryBytes(n)
	cb.RequireEqual("Constrain bytes recomposited to value", value, FromBytes(parts))
	return &RangeCheckGadget{parts: parts}
}

func (g *RangeCheckGadget) Assign(region Assigner, offset int, value fr.Element) error {
	le := core.ToLittleEndian(value)
	for _, b := range le[len(g.parts):] {
		if b != 0 {
			return errInvalidWitness("%s does not fit %d bytes", value.String(), len(g.parts))
		}
	}
	for i, cell := range g.parts {
		if err := cell.AssignUint64(region, offset, uint64(le[i])); err != nil {
			return err
		}
	}
	return nil
}
