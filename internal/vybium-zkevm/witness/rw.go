package witness

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/core"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/table"
)

// Rw is one entry of the rw trace. Which fields are meaningful depends on
// Tag:
//
//	RwStack:          CallID, StackPointer, Value
//	RwMemory:         CallID, MemoryAddress, Byte
//	RwAccountStorage: TxID, Address, Key, Value, ValuePrev
type Rw struct {
	Tag       table.RwTableTag
	RwCounter uint64
	IsWrite   bool

	CallID        uint64
	TxID          uint64
	StackPointer  uint64
	MemoryAddress uint64
	Byte          byte
	Address       common.Address
	Key           uint256.Int
	Value         uint256.Int
	ValuePrev     uint256.Int
}

// StackValue returns the value of a stack entry.
func (rw *Rw) StackValue() (uint256.Int, error) {
	if rw.Tag != table.RwStack {
		return uint256.Int{}, errors.Newf("rw %d is a %s entry, expected Stack", rw.RwCounter, rw.Tag)
	}
	return rw.Value, nil
}

// Row returns the rw table row [rw_counter, is_write, tag, v0..v4].
func (rw *Rw) Row(randomness fr.Element) [table.MaxWidth]fr.Element {
	row := [table.MaxWidth]fr.Element{
		core.NewElement(rw.RwCounter),
		core.NewElementFromBool(rw.IsWrite),
		core.NewElement(uint64(rw.Tag)),
	}
	switch rw.Tag {
	case table.RwStack:
		row[3] = core.NewElement(rw.CallID)
		row[4] = core.NewElement(rw.StackPointer)
		row[5] = WordRLC(&rw.Value, randomness)
	case table.RwMemory:
		row[3] = core.NewElement(rw.CallID)
		row[4] = core.NewElement(rw.MemoryAddress)
		row[5] = core.NewElement(uint64(rw.Byte))
	case table.RwAccountStorage:
		row[3] = core.NewElement(rw.TxID)
		row[4] = AddressElement(rw.Address)
		row[5] = WordRLC(&rw.Key, randomness)
		row[6] = WordRLC(&rw.Value, randomness)
		row[7] = WordRLC(&rw.ValuePrev, randomness)
	}
	return row
}

func (rw *Rw) String() string {
	access := "read"
	if rw.IsWrite {
		access = "write"
	}
	return fmt.Sprintf("Rw{%d %s %s}", rw.RwCounter, access, rw.Tag)
}

// AddressElement interprets a 20 byte address as a big-endian field element.
func AddressElement(address common.Address) fr.Element {
	var e fr.Element
	e.SetBytes(address[:])
	return e
}
