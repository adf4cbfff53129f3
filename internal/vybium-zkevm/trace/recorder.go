// Package trace records the execution of an EVM program: every instruction
// as a Step and every stack, memory and storage access as an operation
// stamped with the next global counter. A finished Trace is replayed into a
// witness.Block for the circuit.
package trace

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/logger"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/operation"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/witness"
)

// Access is the payload of one recorded operation: an operation.StackOp,
// operation.MemoryOp or operation.StorageOp.
type Access interface {
	Target() operation.Target
	RW() operation.RW
}

// StepInfo is the interpreter state before an instruction executes.
type StepInfo struct {
	Opcode            vm.OpCode
	ProgramCounter    uint64
	StackPointer      uint64
	GasLeft           uint64
	GasCost           uint64
	MemorySize        uint64
	StateWriteCounter uint64
}

// Step is one recorded instruction.
type Step struct {
	StepInfo
	// CallID is the call the instruction executed in.
	CallID uint64
	// RwCounter is the counter of the first access of the step. Steps
	// without accesses carry the counter the next access will get.
	RwCounter operation.GlobalCounter
	// Refs lists the step's accesses in execution order.
	Refs []operation.OperationRef
}

// Call is one call frame of the trace.
type Call struct {
	ID       uint64
	CodeHash common.Hash
	IsRoot   bool
	IsCreate bool
}

// Recorder collects the trace of one execution. The counter, the container
// and the step list are updated in a single critical section, so concurrent
// producers observe unique counters in lock order.
type Recorder struct {
	mu        sync.Mutex
	gc        operation.GlobalCounter
	container *operation.Container
	steps     []Step
	calls     []Call
	bytecodes map[common.Hash]*witness.Bytecode
	current   uint64
	log       logger.Logger
}

// NewRecorder creates an empty recorder.
func NewRecorder(log logger.Logger) *Recorder {
	return &Recorder{
		container: operation.NewContainer(),
		bytecodes: make(map[common.Hash]*witness.Bytecode),
		log:       log,
	}
}

// EnterCall starts executing code in a new call frame and makes it the
// current one. The first call entered is the root call.
func (r *Recorder) EnterCall(code []byte, isCreate bool) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	bytecode := witness.NewBytecode(code)
	if _, ok := r.bytecodes[bytecode.Hash]; !ok {
		r.bytecodes[bytecode.Hash] = bytecode
	}
	id := uint64(len(r.calls) + 1)
	r.calls = append(r.calls, Call{ID: id, CodeHash: bytecode.Hash, IsRoot: id == 1, IsCreate: isCreate})
	r.current = id
	r.log.Debugf("entered call %d executing %s", id, bytecode.Hash.Hex())
	return id
}

// Exec records one instruction together with its accesses.
func (r *Recorder) Exec(info StepInfo, accesses ...Access) (Step, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == 0 {
		return Step{}, errors.New("no call entered")
	}
	s := Step{StepInfo: info, CallID: r.current, RwCounter: r.gc + 1}
	for _, access := range accesses {
		ref, _, err := r.record(access)
		if err != nil {
			return Step{}, errors.Wrapf(err, "step %d (%s)", len(r.steps), info.Opcode)
		}
		s.Refs = append(s.Refs, ref)
	}
	r.steps = append(r.steps, s)
	return s, nil
}

// Record stamps a single access that belongs to no step.
func (r *Recorder) Record(access Access) (operation.OperationRef, operation.GlobalCounter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.record(access)
}

func (r *Recorder) record(access Access) (operation.OperationRef, operation.GlobalCounter, error) {
	var op operation.AnyOperation
	switch access := access.(type) {
	case operation.StackOp:
		op = operation.NewOperation(r.gc.IncPre(), access)
	case operation.MemoryOp:
		op = operation.NewOperation(r.gc.IncPre(), access)
	case operation.StorageOp:
		op = operation.NewOperation(r.gc.IncPre(), access)
	default:
		return operation.OperationRef{}, 0, errors.Newf("unsupported access %T", access)
	}
	return r.container.Insert(op), op.GC(), nil
}

// Finish returns the recorded trace. The recorder must not be used
// afterwards.
func (r *Recorder) Finish() *Trace {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Bytecodes in order of first use.
	bytecodes := make([]*witness.Bytecode, 0, len(r.bytecodes))
	seen := make(map[common.Hash]struct{}, len(r.bytecodes))
	for _, call := range r.calls {
		if _, ok := seen[call.CodeHash]; ok {
			continue
		}
		seen[call.CodeHash] = struct{}{}
		bytecodes = append(bytecodes, r.bytecodes[call.CodeHash])
	}
	r.log.Infof("recorded %d steps, %d calls, %d operations", len(r.steps), len(r.calls), r.gc)
	return &Trace{
		Steps:     r.steps,
		Calls:     r.calls,
		Bytecodes: bytecodes,
		Container: r.container,
	}
}
