package trace

import (
	"github.com/cockroachdb/errors"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/operation"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/step"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/table"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/witness"
)

// Trace is a finished recording.
type Trace struct {
	Steps     []Step
	Calls     []Call
	Bytecodes []*witness.Bytecode
	Container *operation.Container
}

// txID is the id of the single transaction a trace is replayed into.
const txID = 1

// ToBlock replays the trace into a circuit witness. The rw trace is the
// container in counter order, and every step's refs are resolved to indices
// into it. Traces failing CheckConsistency are rejected.
func (t *Trace) ToBlock(randomness fr.Element) (*witness.Block, error) {
	if err := t.CheckConsistency(); err != nil {
		return nil, errors.Wrap(err, "inconsistent rw trace")
	}
	ops := t.Container.ByCounter()
	rws := make([]witness.Rw, len(ops))
	for i, op := range ops {
		if op.GC() != operation.GlobalCounter(i+1) {
			return nil, errors.Newf("operation %d has counter %d, counters must be contiguous from 1", i, op.GC())
		}
		rw, err := toRw(op)
		if err != nil {
			return nil, err
		}
		rws[i] = rw
	}

	tx := &witness.Transaction{ID: txID}
	callIndex := make(map[uint64]int, len(t.Calls))
	for i, c := range t.Calls {
		tx.Calls = append(tx.Calls, &witness.Call{ID: c.ID, IsRoot: c.IsRoot, IsCreate: c.IsCreate, CodeHash: c.CodeHash})
		callIndex[c.ID] = i
	}

	for i, s := range t.Steps {
		state, ok := step.ForOpcode(s.Opcode)
		if !ok {
			return nil, errors.Newf("step %d: no execution state handles opcode %s", i, s.Opcode)
		}
		call, ok := callIndex[s.CallID]
		if !ok {
			return nil, errors.Newf("step %d: unknown call %d", i, s.CallID)
		}
		indices := make([]int, len(s.Refs))
		for j, ref := range s.Refs {
			op, ok := t.Container.Get(ref)
			if !ok {
				return nil, errors.Newf("step %d: dangling operation ref %s", i, ref)
			}
			idx := int(op.GC()) - 1
			indices[j] = idx
			rws[idx].CallID = s.CallID
			rws[idx].TxID = txID
		}
		tx.Steps = append(tx.Steps, &witness.ExecStep{
			ExecutionState:    state,
			Opcode:            s.Opcode,
			RwCounter:         uint64(s.RwCounter),
			ProgramCounter:    s.ProgramCounter,
			StackPointer:      s.StackPointer,
			GasLeft:           s.GasLeft,
			GasCost:           s.GasCost,
			MemorySize:        s.MemorySize,
			StateWriteCounter: s.StateWriteCounter,
			CallIndex:         call,
			RwIndices:         indices,
		})
	}

	return &witness.Block{
		Randomness: randomness,
		Txs:        []*witness.Transaction{tx},
		Rws:        rws,
		Bytecodes:  t.Bytecodes,
	}, nil
}

func toRw(op operation.AnyOperation) (witness.Rw, error) {
	rw := witness.Rw{RwCounter: uint64(op.GC()), IsWrite: op.RW().IsWrite()}
	switch op := op.(type) {
	case operation.Operation[operation.StackOp]:
		rw.Tag = table.RwStack
		rw.StackPointer = uint64(op.Op().Address())
		rw.Value = op.Op().Value()
	case operation.Operation[operation.MemoryOp]:
		rw.Tag = table.RwMemory
		rw.MemoryAddress = uint64(op.Op().Address())
		rw.Byte = op.Op().Value()
	case operation.Operation[operation.StorageOp]:
		rw.Tag = table.RwAccountStorage
		rw.Address = op.Op().Address()
		rw.Key = op.Op().Key()
		rw.Value = op.Op().Value()
		rw.ValuePrev = op.Op().ValuePrev()
	default:
		return witness.Rw{}, errors.Newf("unsupported operation %T", op)
	}
	return rw, nil
}
