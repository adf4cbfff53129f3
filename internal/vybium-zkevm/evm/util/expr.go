package util

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/core"
)

// Sum returns the sum of the cells.
func Sum(cells []Cell) core.Expression {
	return core.Add(Exprs(cells)...)
}

// SumValue returns the sum of the bytes.
func SumValue(bytes []byte) fr.Element {
	var total uint64
	for _, b := range bytes {
		total += uint64(b)
	}
	return core.NewElement(total)
}

// And returns 1 when every input is 1 and 0 otherwise. Inputs must be
// boolean.
func And(inputs ...core.Expression) core.Expression {
	return core.Mul(inputs...)
}

// AndValue is the witness counterpart of And.
func AndValue(inputs ...fr.Element) fr.Element {
	out := core.NewElement(1)
	for i := range inputs {
		out.Mul(&out, &inputs[i])
	}
	return out
}

// Not returns 1 - input. input must be boolean.
func Not(input core.Expression) core.Expression {
	return core.Sub(core.Const(1), input)
}

// Or returns 1 when any input is 1 and 0 otherwise. Inputs must be boolean.
func Or(inputs ...core.Expression) core.Expression {
	negated := make([]core.Expression, len(inputs))
	for i, input := range inputs {
		negated[i] = Not(input)
	}
	return Not(And(negated...))
}

// Select returns whenTrue when selector is 1 and whenFalse when it is 0.
// selector must be boolean.
func Select(selector, whenTrue, whenFalse core.Expression) core.Expression {
	return core.Add(core.Mul(selector, whenTrue), core.Mul(Not(selector), whenFalse))
}

// SelectValue is the witness counterpart of Select.
func SelectValue(selector, whenTrue, whenFalse fr.Element) fr.Element {
	if selector.IsOne() {
		return whenTrue
	}
	return whenFalse
}

// FromBytes decodes little-endian byte cells into one field element. It
// panics when more bytes are passed than a field element can hold.
func FromBytes(cells []Cell) core.Expression {
	if len(cells) > core.MaxBytesField {
		panic(errInvalidConfiguration("%d bytes do not fit a field element", len(cells)))
	}
	terms := make([]core.Expression, len(cells))
	multiplier := core.NewElement(1)
	base := core.NewElement(256)
	for i, cell := range cells {
		terms[i] = core.Scale(cell.Expr(), multiplier)
		multiplier.Mul(&multiplier, &base)
	}
	return core.Add(terms...)
}

// FromBytesValue is the witness counterpart of FromBytes.
func FromBytesValue(bytes []byte) fr.Element {
	if len(bytes) > core.MaxBytesField {
		panic(errInvalidConfiguration("%d bytes do not fit a field element", len(bytes)))
	}
	return core.FromLittleEndian(bytes)
}

// Range returns 2^bits.
func Range(bits int) fr.Element {
	return core.Pow2(bits)
}
