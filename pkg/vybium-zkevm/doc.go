// Package vybiumzkevm turns recorded EVM executions into the witness of the
// EVM circuit and checks it against the circuit's constraints.
//
// An execution is recorded as a trace: every instruction as a step and every
// stack, memory and storage access as an operation stamped with a global
// counter. The trace is replayed into a block, each step is assigned by the
// gadget of its execution state, and the assignment is verified row by row
// against the gates and lookups the gadgets declared.
//
// # Quick Start
//
// Recording a program and checking it:
//
//	recorder := vybiumzkevm.NewRecorder(vybiumzkevm.DefaultConfig())
//	recorder.EnterCall(code, false)
//	_, err := recorder.Exec(vybiumzkevm.StepInfo{Opcode: vm.LT, ProgramCounter: 66, StackPointer: 1022, GasLeft: 3, GasCost: 3},
//		operation.NewStackOp(operation.Read, 1022, a),
//		operation.NewStackOp(operation.Read, 1023, b),
//		operation.NewStackOp(operation.Write, 1023, result),
//	)
//	...
//	circuit, err := vybiumzkevm.NewCircuit(vybiumzkevm.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := circuit.Run(ctx, recorder.Finish())
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Traces can also be read from the JSON format, optionally gzip compressed,
// with ReadTrace.
//
// # Supported instructions
//
// - STOP, terminating a transaction
// - JUMPDEST
// - LT, GT and EQ
// - SIGNEXTEND
//
// # Architecture
//
// - pkg/vybium-zkevm/: Public API (this package)
// - internal/vybium-zkevm/: Private implementation (not importable)
//
// Errors returned by this package are *CircuitError values whose Code tells
// configuration problems, malformed traces, failed assignments and
// unsatisfied constraints apart.
package vybiumzkevm
