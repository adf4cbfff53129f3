// Package core provides the field arithmetic and symbolic expressions shared by
// the circuit. All values live in the BN254 scalar field.
package core

import (
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// MaxBytesField is the largest number of bytes that always fits a field
// element without wrapping around the modulus.
const MaxBytesField = 31

// NewElement returns v as a field element.
func NewElement(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

// NewElementFromBool returns 1 for true and 0 for false.
func NewElementFromBool(b bool) fr.Element {
	if b {
		return NewElement(1)
	}
	return fr.Element{}
}

// NewElementFromInt64 returns v mod r, so negative values map to r - |v|.
func NewElementFromInt64(v int64) fr.Element {
	var e fr.Element
	e.SetInt64(v)
	return e
}

// FromLittleEndian interprets bytes as a little-endian integer reduced mod r.
func FromLittleEndian(bytes []byte) fr.Element {
	be := make([]byte, len(bytes))
	for i, b := range bytes {
		be[len(bytes)-1-i] = b
	}
	var e fr.Element
	e.SetBytes(be)
	return e
}

// ToLittleEndian returns the canonical little-endian encoding of e.
func ToLittleEndian(e fr.Element) [32]byte {
	be := e.Bytes()
	var le [32]byte
	for i := range be {
		le[31-i] = be[i]
	}
	return le
}

// Inverse returns e^-1, or zero when e is zero.
func Inverse(e fr.Element) fr.Element {
	var inv fr.Element
	inv.Inverse(&e)
	return inv
}

// Pow2 returns 2^bits as a field element.
func Pow2(bits int) fr.Element {
	v := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	var e fr.Element
	e.SetBigInt(v)
	return e
}

// RandomElement draws a uniformly random field element.
func RandomElement() (fr.Element, error) {
	var e fr.Element
	if _, err := e.SetRandom(); err != nil {
		return fr.Element{}, errors.Wrap(err, "failed to sample field element")
	}
	return e, nil
}

// ParseElement parses a decimal or 0x-prefixed hex string.
func ParseElement(s string) (fr.Element, error) {
	v, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return fr.Element{}, errors.Newf("invalid field element %q", s)
	}
	if v.Sign() < 0 || v.Cmp(fr.Modulus()) >= 0 {
		return fr.Element{}, errors.Newf("field element %q out of range", s)
	}
	var e fr.Element
	e.SetBigInt(v)
	return e, nil
}
