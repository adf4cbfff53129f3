package witness

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/core"
)

// Bytecode is a contract code together with its keccak256 hash.
type Bytecode struct {
	Hash common.Hash
	Code []byte
}

// NewBytecode hashes code.
func NewBytecode(code []byte) *Bytecode {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(code)
	var hash common.Hash
	hasher.Sum(hash[:0])
	return &Bytecode{Hash: hash, Code: code}
}

// HashRLC is the identifier of the code in the bytecode table: the RLC of
// the hash interpreted as a little-endian 256-bit word.
func (b *Bytecode) HashRLC(randomness fr.Element) fr.Element {
	var word uint256.Int
	word.SetBytes32(b.Hash[:])
	return WordRLC(&word, randomness)
}

// Rows appends the table rows (hash, index, byte) of the code to rows.
func (b *Bytecode) Rows(randomness fr.Element, rows [][3]fr.Element) [][3]fr.Element {
	hash := b.HashRLC(randomness)
	for i, v := range b.Code {
		rows = append(rows, [3]fr.Element{hash, core.NewElement(uint64(i)), core.NewElement(uint64(v))})
	}
	return rows
}

// ToLittleEndian returns the 32 bytes of v, least significant first.
func ToLittleEndian(v *uint256.Int) [32]byte {
	be := v.Bytes32()
	var le [32]byte
	for i := range be {
		le[i] = be[31-i]
	}
	return le
}

// WordRLC is the RLC of the little-endian bytes of v.
func WordRLC(v *uint256.Int, randomness fr.Element) fr.Element {
	le := ToLittleEndian(v)
	return core.RandomLinearCombine(le[:], randomness)
}
