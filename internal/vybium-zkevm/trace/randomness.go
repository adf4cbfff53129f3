package trace

import (
	"encoding/binary"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/holiman/uint256"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/hash"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/operation"
)

// DeriveRandomness derives the RLC scalar deterministically from the trace
// by absorbing the steps and the rw log into a Poseidon sponge and squeezing
// four 64-bit limbs.
func DeriveRandomness(t *Trace) fr.Element {
	ops := t.Container.ByCounter()
	inputs := make([]field.Element, 0, 2+len(t.Steps)*2+len(ops)*8)
	inputs = append(inputs, field.New(uint64(len(t.Steps))), field.New(uint64(len(ops))))
	for _, s := range t.Steps {
		inputs = append(inputs, field.New(uint64(s.Opcode)), field.New(s.ProgramCounter))
	}
	for _, op := range ops {
		inputs = append(inputs, field.New(uint64(op.GC())), field.New(uint64(op.Target())))
		if op.RW().IsWrite() {
			inputs = append(inputs, field.One)
		} else {
			inputs = append(inputs, field.Zero)
		}
		switch op := op.(type) {
		case operation.Operation[operation.StackOp]:
			value := op.Op().Value()
			inputs = append(inputs, field.New(uint64(op.Op().Address())))
			inputs = appendWord(inputs, &value)
		case operation.Operation[operation.MemoryOp]:
			inputs = append(inputs, field.New(uint64(op.Op().Address())), field.New(uint64(op.Op().Value())))
		case operation.Operation[operation.StorageOp]:
			address := op.Op().Address()
			key, value := op.Op().Key(), op.Op().Value()
			inputs = append(inputs,
				field.New(uint64(binary.BigEndian.Uint32(address[0:4]))),
				field.New(binary.BigEndian.Uint64(address[4:12])),
				field.New(binary.BigEndian.Uint64(address[12:20])),
			)
			inputs = appendWord(inputs, &key)
			inputs = appendWord(inputs, &value)
		}
	}

	digest := hash.PoseidonHash(inputs)
	var buf [32]byte
	for i := 0; i < 4; i++ {
		binary.BigEndian.PutUint64(buf[i*8:], digest.Value())
		digest = hash.PoseidonHash([]field.Element{digest, field.New(uint64(i + 1))})
	}
	var randomness fr.Element
	randomness.SetBytes(buf[:])
	if randomness.IsZero() {
		randomness.SetOne()
	}
	return randomness
}

func appendWord(inputs []field.Element, v *uint256.Int) []field.Element {
	// 32-bit limbs stay below the field modulus.
	for _, limb := range v {
		inputs = append(inputs, field.New(limb&0xFFFFFFFF), field.New(limb>>32))
	}
	return inputs
}
