package core

import "github.com/consensys/gnark-crypto/ecc/bn254/fr"

// RandomLinearCombine folds little-endian bytes into Σ bytes[i]·r^i.
func RandomLinearCombine(bytes []byte, randomness fr.Element) fr.Element {
	var acc fr.Element
	for i := len(bytes) - 1; i >= 0; i-- {
		b := NewElement(uint64(bytes[i]))
		acc.Mul(&acc, &randomness)
		acc.Add(&acc, &b)
	}
	return acc
}

// RandomLinearCombineExpr is the symbolic counterpart of RandomLinearCombine.
// Both fold from the most significant byte so the weights agree exactly.
func RandomLinearCombineExpr(bytes []Expression, randomness Expression) Expression {
	if len(bytes) == 0 {
		return Const(0)
	}
	acc := bytes[len(bytes)-1]
	for i := len(bytes) - 2; i >= 0; i-- {
		acc = Add(Mul(acc, randomness), bytes[i])
	}
	return acc
}
