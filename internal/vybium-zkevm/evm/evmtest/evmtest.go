// Package evmtest builds witness blocks from small programs and runs them
// through the EVM circuit.
package evmtest

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/holiman/uint256"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/evm"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/logger"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/step"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/table"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/utils"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/witness"
)

// StackLimit is the stack pointer of an empty stack.
const StackLimit = 1024

// BlockBuilder interprets programs into the transactions of one block.
type BlockBuilder struct {
	block *witness.Block
	codes map[common.Hash]bool
}

func NewBlockBuilder(randomness fr.Element) *BlockBuilder {
	return &BlockBuilder{
		block: &witness.Block{Randomness: randomness},
		codes: make(map[common.Hash]bool),
	}
}

// AddTx executes code from pc 0 with gas and the given initial stack, top
// first, in a new transaction. Code must reach STOP. It returns the final
// stack, top first.
func (b *BlockBuilder) AddTx(code []byte, gas uint64, stack ...*uint256.Int) ([]*uint256.Int, error) {
	bytecode := witness.NewBytecode(code)
	if !b.codes[bytecode.Hash] {
		b.codes[bytecode.Hash] = true
		b.block.Bytecodes = append(b.block.Bytecodes, bytecode)
	}
	id := uint64(len(b.block.Txs) + 1)
	tx := &witness.Transaction{
		ID:    id,
		Gas:   gas,
		Calls: []*witness.Call{{ID: id, IsRoot: true, CodeHash: bytecode.Hash}},
	}

	stack = append([]*uint256.Int(nil), stack...)
	sp := uint64(StackLimit - len(stack))
	rws := b.block.Rws
	access := func(isWrite bool, pointer uint64, value *uint256.Int) int {
		rws = append(rws, witness.Rw{
			Tag:          table.RwStack,
			RwCounter:    uint64(len(rws) + 1),
			IsWrite:      isWrite,
			CallID:       id,
			TxID:         id,
			StackPointer: pointer,
			Value:        *value,
		})
		return len(rws) - 1
	}

	for pc := uint64(0); ; pc++ {
		if pc >= uint64(len(code)) {
			return nil, errors.Newf("tx %d: code ends without STOP", id)
		}
		op := vm.OpCode(code[pc])
		state, ok := step.ForOpcode(op)
		if !ok {
			return nil, errors.Newf("tx %d: unsupported opcode %s at pc %d", id, op, pc)
		}
		if gas < state.GasCost() {
			return nil, errors.Newf("tx %d: out of gas at pc %d", id, pc)
		}
		es := &witness.ExecStep{
			ExecutionState: state,
			Opcode:         op,
			RwCounter:      uint64(len(rws) + 1),
			ProgramCounter: pc,
			StackPointer:   sp,
			GasLeft:        gas,
			GasCost:        state.GasCost(),
		}
		tx.Steps = append(tx.Steps, es)

		switch op {
		case vm.STOP:
			b.block.Txs = append(b.block.Txs, tx)
			b.block.Rws = rws
			return stack, nil
		case vm.LT, vm.GT, vm.EQ, vm.SIGNEXTEND:
			if len(stack) < 2 {
				return nil, errors.Newf("tx %d: stack underflow at pc %d", id, pc)
			}
			x, y := stack[0], stack[1]
			result := new(uint256.Int)
			switch op {
			case vm.LT:
				result.SetUint64(boolUint64(x.Lt(y)))
			case vm.GT:
				result.SetUint64(boolUint64(x.Gt(y)))
			case vm.EQ:
				result.SetUint64(boolUint64(x.Eq(y)))
			case vm.SIGNEXTEND:
				result.ExtendSign(y, x)
			}
			es.RwIndices = []int{
				access(false, sp, x),
				access(false, sp+1, y),
				access(true, sp+1, result),
			}
			stack = append([]*uint256.Int{result}, stack[2:]...)
			sp++
		}
		gas -= state.GasCost()
	}
}

func boolUint64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// Block returns the block built so far.
func (b *BlockBuilder) Block() *witness.Block { return b.block }

// Config is the circuit configuration used by tests.
func Config() *utils.Config {
	return utils.DefaultConfig().WithLogLevel("ERROR")
}

// Logger is a quiet logger for tests.
func Logger() logger.Logger {
	return logger.NewLogger("ERROR", "evmtest")
}

// Run configures the circuit, assigns block and verifies the assignment.
func Run(ctx context.Context, block *witness.Block) error {
	circuit, err := evm.NewCircuit(Config(), Logger())
	if err != nil {
		return err
	}
	w, err := circuit.Assign(ctx, block)
	if err != nil {
		return err
	}
	return circuit.Verify(ctx, w)
}
