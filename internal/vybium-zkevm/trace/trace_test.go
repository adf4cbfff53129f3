package trace

import (
	"bytes"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/core"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/logger"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/operation"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/step"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/table"
)

func testLogger() logger.Logger {
	return logger.NewLogger("ERROR", "trace-test")
}

func push32(v *uint256.Int) []byte {
	be := v.Bytes32()
	return append([]byte{byte(vm.PUSH32)}, be[:]...)
}

// recordLt records `PUSH32 b; PUSH32 a; LT; STOP` starting at the LT.
func recordLt(t *testing.T, a, b *uint256.Int) *Trace {
	t.Helper()
	code := append(append(push32(b), push32(a)...), byte(vm.LT), byte(vm.STOP))
	result := uint256.NewInt(0)
	if a.Lt(b) {
		result.SetOne()
	}

	recorder := NewRecorder(testLogger())
	recorder.EnterCall(code, false)
	_, err := recorder.Exec(
		StepInfo{Opcode: vm.LT, ProgramCounter: 66, StackPointer: 1022, GasLeft: 3, GasCost: 3},
		operation.NewStackOp(operation.Read, 1022, a),
		operation.NewStackOp(operation.Read, 1023, b),
		operation.NewStackOp(operation.Write, 1023, result),
	)
	require.NoError(t, err)
	_, err = recorder.Exec(StepInfo{Opcode: vm.STOP, ProgramCounter: 67, StackPointer: 1023})
	require.NoError(t, err)
	return recorder.Finish()
}

func TestRecorderExec(t *testing.T) {
	tr := recordLt(t, uint256.NewInt(1), uint256.NewInt(2))

	require.Len(t, tr.Steps, 2)
	require.Len(t, tr.Calls, 1)
	require.Len(t, tr.Bytecodes, 1)
	assert.True(t, tr.Calls[0].IsRoot)
	assert.Equal(t, tr.Bytecodes[0].Hash, tr.Calls[0].CodeHash)

	lt := tr.Steps[0]
	assert.Equal(t, operation.GlobalCounter(1), lt.RwCounter)
	assert.Equal(t, []operation.OperationRef{
		{Target: operation.Stack, Index: 1},
		{Target: operation.Stack, Index: 2},
		{Target: operation.Stack, Index: 3},
	}, lt.Refs)
	assert.Equal(t, operation.GlobalCounter(4), tr.Steps[1].RwCounter)
	assert.Empty(t, tr.Steps[1].Refs)
}

func TestRecorderRequiresCall(t *testing.T) {
	recorder := NewRecorder(testLogger())
	_, err := recorder.Exec(StepInfo{Opcode: vm.STOP})
	assert.Error(t, err)
}

func TestRecorderConcurrentProducers(t *testing.T) {
	const producers, perProducer = 8, 250
	recorder := NewRecorder(testLogger())

	counters := make(chan operation.GlobalCounter, producers*perProducer)
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				_, gc, err := recorder.Record(operation.NewMemoryOp(operation.Write, operation.MemoryAddress(p), byte(i)))
				assert.NoError(t, err)
				counters <- gc
			}
		}(p)
	}
	wg.Wait()
	close(counters)

	seen := make(map[operation.GlobalCounter]bool)
	for gc := range counters {
		assert.False(t, seen[gc], "counter %d handed out twice", gc)
		seen[gc] = true
	}
	assert.Len(t, seen, producers*perProducer)

	tr := recorder.Finish()
	ops := tr.Container.ByCounter()
	require.Len(t, ops, producers*perProducer)
	for i, op := range ops {
		require.Equal(t, operation.GlobalCounter(i+1), op.GC())
	}
}

func TestToBlock(t *testing.T) {
	a, b := uint256.NewInt(7), uint256.NewInt(3)
	tr := recordLt(t, a, b)

	block, err := tr.ToBlock(core.NewElement(9))
	require.NoError(t, err)
	require.NoError(t, block.Validate())

	require.Len(t, block.Rws, 3)
	assert.Equal(t, table.RwStack, block.Rws[0].Tag)
	assert.Equal(t, uint64(1022), block.Rws[0].StackPointer)
	assert.Equal(t, *a, block.Rws[0].Value)
	assert.True(t, block.Rws[2].IsWrite)
	assert.True(t, block.Rws[2].Value.IsZero())
	assert.Equal(t, uint64(1), block.Rws[1].CallID)

	require.Len(t, block.Txs, 1)
	steps := block.Txs[0].Steps
	require.Len(t, steps, 2)
	assert.Equal(t, step.Cmp, steps[0].ExecutionState)
	assert.Equal(t, []int{0, 1, 2}, steps[0].RwIndices)
	assert.Equal(t, step.Stop, steps[1].ExecutionState)
	assert.Equal(t, uint64(4), steps[1].RwCounter)
}

func TestToBlockRejectsUnknownOpcode(t *testing.T) {
	recorder := NewRecorder(testLogger())
	recorder.EnterCall([]byte{byte(vm.ADD)}, false)
	_, err := recorder.Exec(StepInfo{Opcode: vm.ADD})
	require.NoError(t, err)

	_, err = recorder.Finish().ToBlock(core.NewElement(1))
	assert.Error(t, err)
}

func TestDeriveRandomness(t *testing.T) {
	first := DeriveRandomness(recordLt(t, uint256.NewInt(1), uint256.NewInt(2)))
	again := DeriveRandomness(recordLt(t, uint256.NewInt(1), uint256.NewInt(2)))
	other := DeriveRandomness(recordLt(t, uint256.NewInt(2), uint256.NewInt(1)))

	assert.True(t, first.Equal(&again), "derivation must be deterministic")
	assert.False(t, first.Equal(&other), "different traces should derive different scalars")
	assert.False(t, first.IsZero())
}

func TestCodecRoundTrip(t *testing.T) {
	account := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	recorder := NewRecorder(testLogger())
	recorder.EnterCall([]byte{byte(vm.JUMPDEST), byte(vm.STOP)}, false)
	_, err := recorder.Exec(StepInfo{Opcode: vm.JUMPDEST, StackPointer: 1024, GasLeft: 10, GasCost: 1},
		operation.NewMemoryOp(operation.Write, 0x20, 0xAB),
		operation.NewStorageOp(operation.Write, account, uint256.NewInt(1), uint256.NewInt(2), uint256.NewInt(0)),
	)
	require.NoError(t, err)
	_, err = recorder.Exec(StepInfo{Opcode: vm.STOP, ProgramCounter: 1, StackPointer: 1024, GasLeft: 9})
	require.NoError(t, err)
	original := recorder.Finish()

	for _, compress := range []bool{false, true} {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, original, compress))
		if compress {
			assert.Equal(t, gzipMagic, buf.Bytes()[:2])
		}

		decoded, err := Decode(&buf, testLogger())
		require.NoError(t, err)

		assert.Equal(t, original.Steps, decoded.Steps)
		assert.Equal(t, original.Calls, decoded.Calls)
		assert.Equal(t, original.Bytecodes, decoded.Bytecodes)
		assert.Equal(t, original.Container.ByCounter(), decoded.Container.ByCounter())
	}
}

func TestCodecFiles(t *testing.T) {
	original := recordLt(t, uint256.NewInt(5), uint256.NewInt(6))
	path := filepath.Join(t.TempDir(), "trace.json.gz")
	require.NoError(t, WriteFile(path, original, true))

	decoded, err := ReadFile(path, testLogger())
	require.NoError(t, err)
	assert.Equal(t, original.Steps, decoded.Steps)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.json"), testLogger())
	assert.Error(t, err)
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	tests := map[string]string{
		"not json":       `{`,
		"unknown opcode": `{"calls":[{"id":1,"code":"0x00"}],"steps":[{"call":1,"op":"FROB"}]}`,
		"unknown call":   `{"calls":[],"steps":[{"call":1,"op":"STOP"}]}`,
		"stack address":  `{"calls":[{"id":1,"code":"0x00"}],"steps":[{"call":1,"op":"STOP","accesses":[{"target":"Stack","address":1024}]}]}`,
		"memory value":   `{"calls":[{"id":1,"code":"0x00"}],"steps":[{"call":1,"op":"STOP","accesses":[{"target":"Memory","value":"0x100"}]}]}`,
		"unknown target": `{"calls":[{"id":1,"code":"0x00"}],"steps":[{"call":1,"op":"STOP","accesses":[{"target":"Disk"}]}]}`,
		"no hex prefix":  `{"calls":[{"id":1,"code":"0x00"}],"steps":[{"call":1,"op":"STOP","accesses":[{"target":"Stack","address":1023,"value":"12"}]}]}`,
		"word overflow":  `{"calls":[{"id":1,"code":"0x00"}],"steps":[{"call":1,"op":"STOP","accesses":[{"target":"Stack","address":1023,"value":"0x1` + strings.Repeat("0", 64) + `"}]}]}`,
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(bytes.NewBufferString(input), testLogger())
			assert.Error(t, err)
		})
	}
}

func TestDecodeAcceptsLeadingZeros(t *testing.T) {
	input := `{"calls":[{"id":1,"code":"0x00"}],"steps":[{"call":1,"op":"STOP","sp":1022,"accesses":[` +
		`{"target":"Stack","address":1022,"value":"0x0001"},` +
		`{"target":"Stack","address":1023,"value":"0X00FF"},` +
		`{"target":"Memory","write":true,"address":32,"value":"0x00"}]}]}`
	tr, err := Decode(bytes.NewBufferString(input), testLogger())
	require.NoError(t, err)

	stack := tr.Container.SortedStack()
	require.Len(t, stack, 2)
	first, second := stack[0].Op().Value(), stack[1].Op().Value()
	assert.Equal(t, *uint256.NewInt(1), first)
	assert.Equal(t, *uint256.NewInt(0xFF), second)

	memory := tr.Container.SortedMemory()
	require.Len(t, memory, 1)
	assert.Equal(t, byte(0), memory[0].Op().Value())
}

// recordAccesses records one JUMPDEST per access group. A nil group enters a
// new call instead.
func recordAccesses(t *testing.T, groups ...[]Access) *Trace {
	t.Helper()
	recorder := NewRecorder(testLogger())
	recorder.EnterCall([]byte{byte(vm.JUMPDEST), byte(vm.STOP)}, false)
	for _, accesses := range groups {
		if accesses == nil {
			recorder.EnterCall([]byte{byte(vm.JUMPDEST), byte(vm.STOP)}, false)
			continue
		}
		_, err := recorder.Exec(StepInfo{Opcode: vm.JUMPDEST, StackPointer: 1023}, accesses...)
		require.NoError(t, err)
	}
	return recorder.Finish()
}

func TestCheckConsistency(t *testing.T) {
	account := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	key := uint256.NewInt(1)
	storage := func(rw operation.RW, value, prev uint64) Access {
		return operation.NewStorageOp(rw, account, key, uint256.NewInt(value), uint256.NewInt(prev))
	}

	tests := map[string]struct {
		groups     [][]Access
		consistent bool
	}{
		"stack read after write": {
			groups: [][]Access{{
				operation.NewStackOp(operation.Write, 1023, uint256.NewInt(5)),
				operation.NewStackOp(operation.Read, 1023, uint256.NewInt(5)),
			}},
			consistent: true,
		},
		"stack read of another value": {
			groups: [][]Access{
				{operation.NewStackOp(operation.Write, 1023, uint256.NewInt(5))},
				{operation.NewStackOp(operation.Read, 1023, uint256.NewInt(6))},
			},
		},
		"stack reads disagree": {
			groups: [][]Access{{
				operation.NewStackOp(operation.Read, 1000, uint256.NewInt(1)),
				operation.NewStackOp(operation.Read, 1000, uint256.NewInt(2)),
			}},
		},
		"memory read after write": {
			groups: [][]Access{
				{operation.NewMemoryOp(operation.Write, 0x20, 0xAB)},
				{operation.NewMemoryOp(operation.Read, 0x20, 0xAB)},
			},
			consistent: true,
		},
		"memory read of another byte": {
			groups: [][]Access{
				{operation.NewMemoryOp(operation.Write, 0x20, 0xAB)},
				{operation.NewMemoryOp(operation.Read, 0x20, 0xAC)},
			},
		},
		"memory is scoped to its call": {
			groups: [][]Access{
				{operation.NewMemoryOp(operation.Write, 0x20, 0xAB)},
				nil,
				{operation.NewMemoryOp(operation.Read, 0x20, 0x00)},
			},
			consistent: true,
		},
		"storage chain": {
			groups: [][]Access{
				{storage(operation.Write, 2, 0)},
				{storage(operation.Read, 2, 2), storage(operation.Write, 3, 2)},
			},
			consistent: true,
		},
		"storage is shared by calls": {
			groups: [][]Access{
				{storage(operation.Write, 2, 0)},
				nil,
				{storage(operation.Read, 0, 0)},
			},
		},
		"storage write names wrong previous value": {
			groups: [][]Access{
				{storage(operation.Write, 2, 0)},
				{storage(operation.Write, 3, 7)},
			},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			tr := recordAccesses(t, tt.groups...)
			err := tr.CheckConsistency()
			if tt.consistent {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)

			_, err = tr.ToBlock(core.NewElement(1))
			assert.ErrorContains(t, err, "inconsistent rw trace")
		})
	}
}
