// Package witness holds the concrete inputs of the EVM circuit: a block of
// transactions, their calls and execution steps, the counter-ordered rw
// trace and the bytecodes. It also builds the rows of the dynamic lookup
// tables from them.
package witness

import (
	"github.com/cockroachdb/errors"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/holiman/uint256"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/core"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/step"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/table"
)

// Block is everything the circuit needs to assign one proof instance.
type Block struct {
	// Randomness is the RLC scalar shared by every gadget and table.
	Randomness fr.Element
	Txs        []*Transaction
	// Rws is ordered by rw counter, Rws[i].RwCounter == i+1.
	Rws       []Rw
	Bytecodes []*Bytecode
}

// Transaction is one transaction of the block.
type Transaction struct {
	ID            uint64
	Nonce         uint64
	Gas           uint64
	GasTipCap     uint256.Int
	GasFeeCap     uint256.Int
	CallerAddress common.Address
	CalleeAddress common.Address
	IsCreate      bool
	Value         uint256.Int
	Calldata      []byte

	Calls []*Call
	Steps []*ExecStep
}

// Call is one call frame of a transaction.
type Call struct {
	ID       uint64
	IsRoot   bool
	IsCreate bool
	// CodeHash identifies the bytecode being executed.
	CodeHash common.Hash
}

// OpcodeSource is the bytecode table identifier of the executed code.
func (c *Call) OpcodeSource(randomness fr.Element) fr.Element {
	var word uint256.Int
	word.SetBytes32(c.CodeHash[:])
	return WordRLC(&word, randomness)
}

// ExecStep is the witness of one executed instruction.
type ExecStep struct {
	ExecutionState    step.ExecutionState
	Opcode            vm.OpCode
	RwCounter         uint64
	ProgramCounter    uint64
	StackPointer      uint64
	GasLeft           uint64
	GasCost           uint64
	MemorySize        uint64
	StateWriteCounter uint64
	// CallIndex points into the transaction's Calls.
	CallIndex int
	// RwIndices point into Block.Rws, in the order the gadget accesses them.
	RwIndices []int
}

// StepRef locates one step of a block.
type StepRef struct {
	Tx   *Transaction
	Call *Call
	Step *ExecStep
}

// Steps flattens the steps of every transaction in execution order.
func (b *Block) Steps() ([]StepRef, error) {
	var refs []StepRef
	for _, tx := range b.Txs {
		for i, s := range tx.Steps {
			if s.CallIndex < 0 || s.CallIndex >= len(tx.Calls) {
				return nil, errors.Newf("tx %d step %d: call index %d out of range", tx.ID, i, s.CallIndex)
			}
			refs = append(refs, StepRef{Tx: tx, Call: tx.Calls[s.CallIndex], Step: s})
		}
	}
	return refs, nil
}

// Rw returns the entry of the step's i-th access.
func (b *Block) Rw(s *ExecStep, i int) (*Rw, error) {
	if i >= len(s.RwIndices) {
		return nil, errors.Newf("step at pc %d has %d rw indices, need at least %d", s.ProgramCounter, len(s.RwIndices), i+1)
	}
	idx := s.RwIndices[i]
	if idx < 0 || idx >= len(b.Rws) {
		return nil, errors.Newf("rw index %d out of range, block has %d entries", idx, len(b.Rws))
	}
	return &b.Rws[idx], nil
}

// Validate checks the structural invariants the assignment relies on.
func (b *Block) Validate() error {
	for i := range b.Rws {
		if b.Rws[i].RwCounter != uint64(i+1) {
			return errors.Newf("rw %d has counter %d, expected %d", i, b.Rws[i].RwCounter, i+1)
		}
	}
	refs, err := b.Steps()
	if err != nil {
		return err
	}
	for i, ref := range refs {
		if !ref.Step.ExecutionState.Valid() {
			return errors.Newf("step %d: unknown execution state %d", i, uint8(ref.Step.ExecutionState))
		}
		if _, ok := b.Bytecode(ref.Call.CodeHash); !ok {
			return errors.Newf("step %d: call %d executes unknown code %s", i, ref.Call.ID, ref.Call.CodeHash.Hex())
		}
	}
	return nil
}

// Bytecode returns the code with the given hash.
func (b *Block) Bytecode(hash common.Hash) (*Bytecode, bool) {
	for _, code := range b.Bytecodes {
		if code.Hash == hash {
			return code, true
		}
	}
	return nil, false
}

// RwRows builds the rw table: the zero row followed by one row per entry.
func (b *Block) RwRows() *table.Rows {
	rows := table.NewRows(table.RwTable.Width())
	rows.MustAdd()
	for i := range b.Rws {
		row := b.Rws[i].Row(b.Randomness)
		rows.MustAdd(row[:]...)
	}
	return rows
}

// BytecodeRows builds the bytecode table: the zero row followed by every
// byte of every code.
func (b *Block) BytecodeRows() *table.Rows {
	rows := table.NewRows(table.BytecodeTable.Width())
	rows.MustAdd()
	var buf [][3]fr.Element
	for _, code := range b.Bytecodes {
		buf = code.Rows(b.Randomness, buf[:0])
		for _, row := range buf {
			rows.MustAdd(row[:]...)
		}
	}
	return rows
}

// TxRows builds the tx table: the zero row followed by (tx_id, tag, index,
// value) for every field of every transaction. Calldata contributes one row
// per byte.
func (b *Block) TxRows() *table.Rows {
	rows := table.NewRows(table.TxTable.Width())
	rows.MustAdd()
	for _, tx := range b.Txs {
		id := core.NewElement(tx.ID)
		field := func(tag table.TxTableTag, index uint64, value fr.Element) {
			rows.MustAdd(id, core.NewElement(uint64(tag)), core.NewElement(index), value)
		}
		field(table.TxNonce, 0, core.NewElement(tx.Nonce))
		field(table.TxGas, 0, core.NewElement(tx.Gas))
		field(table.TxGasTipCap, 0, WordRLC(&tx.GasTipCap, b.Randomness))
		field(table.TxGasFeeCap, 0, WordRLC(&tx.GasFeeCap, b.Randomness))
		field(table.TxCallerAddress, 0, AddressElement(tx.CallerAddress))
		field(table.TxCalleeAddress, 0, AddressElement(tx.CalleeAddress))
		field(table.TxIsCreate, 0, core.NewElementFromBool(tx.IsCreate))
		field(table.TxValue, 0, WordRLC(&tx.Value, b.Randomness))
		field(table.TxCalldataLength, 0, core.NewElement(uint64(len(tx.Calldata))))
		for i, v := range tx.Calldata {
			field(table.TxCalldata, uint64(i), core.NewElement(uint64(v)))
		}
	}
	return rows
}
