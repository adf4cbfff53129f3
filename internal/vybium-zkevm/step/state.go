// Package step defines the execution states a trace step can be in. Each state
// is handled by exactly one execution gadget, and each state is responsible
// for a fixed set of opcodes.
package step

import (
	"fmt"

	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/params"
)

// ExecutionState selects the gadget that constrains a step.
type ExecutionState uint8

const (
	Stop ExecutionState = iota
	Jumpdest
	Cmp
	Signextend

	// NumStates is the number of execution states. States are dense in
	// [0, NumStates) so they can index selector columns directly.
	NumStates int = iota
)

var stateNames = [...]string{
	Stop:       "STOP",
	Jumpdest:   "JUMPDEST",
	Cmp:        "CMP",
	Signextend: "SIGNEXTEND",
}

var responsibleOpcodes = [...][]vm.OpCode{
	Stop:       {vm.STOP},
	Jumpdest:   {vm.JUMPDEST},
	Cmp:        {vm.LT, vm.GT, vm.EQ},
	Signextend: {vm.SIGNEXTEND},
}

var gasCosts = [...]uint64{
	Stop:       0,
	Jumpdest:   params.JumpdestGas,
	Cmp:        vm.GasFastestStep,
	Signextend: vm.GasFastStep,
}

// States returns every execution state in ascending order.
func States() []ExecutionState {
	states := make([]ExecutionState, NumStates)
	for i := range states {
		states[i] = ExecutionState(i)
	}
	return states
}

// Valid reports whether s is a known state.
func (s ExecutionState) Valid() bool {
	return int(s) < NumStates
}

func (s ExecutionState) String() string {
	if !s.Valid() {
		return fmt.Sprintf("ExecutionState(%d)", uint8(s))
	}
	return stateNames[s]
}

// ResponsibleOpcodes lists the opcodes executed in state s.
func (s ExecutionState) ResponsibleOpcodes() []vm.OpCode {
	if !s.Valid() {
		return nil
	}
	return responsibleOpcodes[s]
}

// GasCost is the constant gas charged by every opcode of state s.
func (s ExecutionState) GasCost() uint64 {
	if !s.Valid() {
		return 0
	}
	return gasCosts[s]
}

// IsTerminal reports whether a step in state s ends the trace. Terminal
// states declare no transition to a next step.
func (s ExecutionState) IsTerminal() bool {
	return s == Stop
}

// ForOpcode returns the state responsible for op.
func ForOpcode(op vm.OpCode) (ExecutionState, bool) {
	for _, s := range States() {
		for _, candidate := range responsibleOpcodes[s] {
			if candidate == op {
				return s, true
			}
		}
	}
	return 0, false
}
