package operation

import (
	"bytes"
	"cmp"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// StackSize is the number of addressable stack slots.
const StackSize = 1024

// StackAddress is a stack slot in [0, StackSize).
type StackAddress uint16

// NewStackAddress validates v against the stack size.
func NewStackAddress(v uint64) (StackAddress, error) {
	if v >= StackSize {
		return 0, errors.Newf("stack address %d out of range [0, %d)", v, StackSize)
	}
	return StackAddress(v), nil
}

// MemoryAddress is a byte offset into call memory.
type MemoryAddress uint64

// StackOp reads or writes one 256-bit stack word.
type StackOp struct {
	rw      RW
	address StackAddress
	value   uint256.Int
}

// NewStackOp builds a stack access.
func NewStackOp(rw RW, address StackAddress, value *uint256.Int) StackOp {
	return StackOp{rw: rw, address: address, value: *value}
}

func (op StackOp) Target() Target        { return Stack }
func (op StackOp) RW() RW                { return op.rw }
func (op StackOp) Address() StackAddress { return op.address }
func (op StackOp) Value() uint256.Int    { return op.value }
func (op StackOp) Compare(o StackOp) int { return cmp.Compare(op.address, o.address) }
func (op StackOp) payload()              {}

func (op StackOp) String() string {
	return fmt.Sprintf("StackOp{%s, addr: %d, value: %s}", op.rw, op.address, op.value.Hex())
}

// MemoryOp reads or writes a single memory byte.
type MemoryOp struct {
	rw      RW
	address MemoryAddress
	value   byte
}

// NewMemoryOp builds a memory access.
func NewMemoryOp(rw RW, address MemoryAddress, value byte) MemoryOp {
	return MemoryOp{rw: rw, address: address, value: value}
}

func (op MemoryOp) Target() Target         { return Memory }
func (op MemoryOp) RW() RW                 { return op.rw }
func (op MemoryOp) Address() MemoryAddress { return op.address }
func (op MemoryOp) Value() byte            { return op.value }
func (op MemoryOp) Compare(o MemoryOp) int { return cmp.Compare(op.address, o.address) }
func (op MemoryOp) payload()               {}

func (op MemoryOp) String() string {
	return fmt.Sprintf("MemoryOp{%s, addr: %d, value: %#x}", op.rw, op.address, op.value)
}

// StorageOp reads or writes one storage slot of an account. ValuePrev is the
// slot content before the access.
type StorageOp struct {
	rw        RW
	address   common.Address
	key       uint256.Int
	value     uint256.Int
	valuePrev uint256.Int
}

// NewStorageOp builds a storage access.
func NewStorageOp(rw RW, address common.Address, key, value, valuePrev *uint256.Int) StorageOp {
	return StorageOp{rw: rw, address: address, key: *key, value: *value, valuePrev: *valuePrev}
}

func (op StorageOp) Target() Target          { return Storage }
func (op StorageOp) RW() RW                  { return op.rw }
func (op StorageOp) Address() common.Address { return op.address }
func (op StorageOp) Key() uint256.Int        { return op.key }
func (op StorageOp) Value() uint256.Int      { return op.value }
func (op StorageOp) ValuePrev() uint256.Int  { return op.valuePrev }
func (op StorageOp) payload()                {}

// Compare orders by account address, then by key.
func (op StorageOp) Compare(o StorageOp) int {
	if c := bytes.Compare(op.address[:], o.address[:]); c != 0 {
		return c
	}
	return op.key.Cmp(&o.key)
}

func (op StorageOp) String() string {
	return fmt.Sprintf("StorageOp{%s, addr: %s, key: %s, value: %s, prev: %s}",
		op.rw, op.address.Hex(), op.key.Hex(), op.value.Hex(), op.valuePrev.Hex())
}
