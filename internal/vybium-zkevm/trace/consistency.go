package trace

import (
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/operation"
)

type slot struct {
	call    uint64
	address uint64
}

type storageSlot struct {
	account common.Address
	key     uint256.Int
}

// CheckConsistency walks every location of the container in counter order
// and reports the first read that does not return the value the previous
// access left there. Stack and memory locations belong to the call that
// accessed them, storage is shared by all calls. The first access of a
// location is unconstrained. Storage writes must name the overwritten value
// as their previous value.
func (t *Trace) CheckConsistency() error {
	calls := make(map[operation.GlobalCounter]uint64)
	for _, s := range t.Steps {
		for _, ref := range s.Refs {
			if op, ok := t.Container.Get(ref); ok {
				calls[op.GC()] = s.CallID
			}
		}
	}

	stack := make(map[slot]uint256.Int)
	for _, op := range t.Container.SortedStack() {
		at := slot{calls[op.GC()], uint64(op.Op().Address())}
		value := op.Op().Value()
		if last, ok := stack[at]; ok && !op.RW().IsWrite() && last != value {
			return errors.Newf("stack read %d at %d in call %d returns %s, last access left %s",
				op.GC(), at.address, at.call, value.Hex(), last.Hex())
		}
		stack[at] = value
	}

	memory := make(map[slot]byte)
	for _, op := range t.Container.SortedMemory() {
		at := slot{calls[op.GC()], uint64(op.Op().Address())}
		value := op.Op().Value()
		if last, ok := memory[at]; ok && !op.RW().IsWrite() && last != value {
			return errors.Newf("memory read %d at %#x in call %d returns %#02x, last access left %#02x",
				op.GC(), at.address, at.call, value, last)
		}
		memory[at] = value
	}

	storage := make(map[storageSlot]uint256.Int)
	for _, op := range t.Container.SortedStorage() {
		at := storageSlot{op.Op().Address(), op.Op().Key()}
		value, prev := op.Op().Value(), op.Op().ValuePrev()
		last, ok := storage[at]
		switch {
		case !ok:
		case op.RW().IsWrite() && last != prev:
			return errors.Newf("storage write %d at %s[%s] overwrites %s but names %s",
				op.GC(), at.account.Hex(), at.key.Hex(), last.Hex(), prev.Hex())
		case !op.RW().IsWrite() && last != value:
			return errors.Newf("storage read %d at %s[%s] returns %s, last access left %s",
				op.GC(), at.account.Hex(), at.key.Hex(), value.Hex(), last.Hex())
		}
		storage[at] = value
	}
	return nil
}
