package vybiumzkevm_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/core"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/operation"
	vybiumzkevm "github.com/vybium/vybium-zkevm/pkg/vybium-zkevm"
)

func testConfig() *vybiumzkevm.Config {
	return vybiumzkevm.DefaultConfig().WithLogLevel("ERROR").WithParallelism(4)
}

// recordSignextend records `SIGNEXTEND; JUMPDEST; STOP` extending the low
// byte of value.
func recordSignextend(t *testing.T, value, result *uint256.Int) *vybiumzkevm.Trace {
	t.Helper()
	code := []byte{byte(vm.SIGNEXTEND), byte(vm.JUMPDEST), byte(vm.STOP)}

	recorder := vybiumzkevm.NewRecorder(testConfig())
	recorder.EnterCall(code, false)
	_, err := recorder.Exec(
		vybiumzkevm.StepInfo{Opcode: vm.SIGNEXTEND, StackPointer: 1022, GasLeft: 10, GasCost: 5},
		operation.NewStackOp(operation.Read, 1022, uint256.NewInt(0)),
		operation.NewStackOp(operation.Read, 1023, value),
		operation.NewStackOp(operation.Write, 1023, result),
	)
	require.NoError(t, err)
	_, err = recorder.Exec(vybiumzkevm.StepInfo{Opcode: vm.JUMPDEST, ProgramCounter: 1, StackPointer: 1023, GasLeft: 5, GasCost: 1})
	require.NoError(t, err)
	_, err = recorder.Exec(vybiumzkevm.StepInfo{Opcode: vm.STOP, ProgramCounter: 2, StackPointer: 1023, GasLeft: 4})
	require.NoError(t, err)
	return recorder.Finish()
}

func negativeOne() *uint256.Int {
	return new(uint256.Int).SetAllOne()
}

// extended is SIGNEXTEND(0, 0x80): every byte above byte 0 set.
func extended() *uint256.Int {
	return new(uint256.Int).ExtendSign(uint256.NewInt(0x80), uint256.NewInt(0))
}

func TestRun(t *testing.T) {
	circuit, err := vybiumzkevm.NewCircuit(testConfig())
	require.NoError(t, err)

	require.Equal(t, uint256.MustFromHex("0x"+strings.Repeat("ff", 31)+"80"), extended())
	trace := recordSignextend(t, uint256.NewInt(0x80), extended())
	result, err := circuit.Run(context.Background(), trace)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Steps)
	assert.Equal(t, 3, result.RwEntries)
	assert.LessOrEqual(t, result.Degree, testConfig().MaxDegree)
	assert.False(t, result.Randomness.IsZero())
}

func TestRunWithConfiguredRandomness(t *testing.T) {
	randomness := core.NewElement(0x1234)
	circuit, err := vybiumzkevm.NewCircuit(testConfig().WithRandomness(randomness))
	require.NoError(t, err)

	for _, value := range []uint64{0x7F, 0x80} {
		v := uint256.NewInt(value)
		want := new(uint256.Int).ExtendSign(v, uint256.NewInt(0))
		result, err := circuit.Run(context.Background(), recordSignextend(t, v, want))
		require.NoError(t, err, "value %#x", value)
		assert.True(t, result.Randomness.Equal(&randomness))
	}
}

func TestRunRejectsWrongResult(t *testing.T) {
	circuit, err := vybiumzkevm.NewCircuit(testConfig())
	require.NoError(t, err)

	tests := map[string]*uint256.Int{
		"not extended":      uint256.NewInt(0x80),
		"low byte replaced": negativeOne(),
	}
	for name, result := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := circuit.Run(context.Background(), recordSignextend(t, uint256.NewInt(0x80), result))
			require.Error(t, err)
			assert.True(t, errors.Is(err, &vybiumzkevm.CircuitError{Code: vybiumzkevm.ErrLookupMiss}))

			failures := vybiumzkevm.VerifyFailures(err)
			require.Len(t, failures, 1)
			assert.Equal(t, 0, failures[0].Row)
			assert.Equal(t, "Stack push", failures[0].Name)
		})
	}
}

func TestRunRejectsUnsupportedOpcode(t *testing.T) {
	circuit, err := vybiumzkevm.NewCircuit(testConfig())
	require.NoError(t, err)

	recorder := vybiumzkevm.NewRecorder(testConfig())
	recorder.EnterCall([]byte{byte(vm.ADD), byte(vm.STOP)}, false)
	_, err = recorder.Exec(vybiumzkevm.StepInfo{Opcode: vm.ADD, StackPointer: 1022, GasLeft: 3, GasCost: 3})
	require.NoError(t, err)

	_, err = circuit.Run(context.Background(), recorder.Finish())
	assert.True(t, errors.Is(err, &vybiumzkevm.CircuitError{Code: vybiumzkevm.ErrInvalidTrace}))
}

func TestRunRejectsMissingStop(t *testing.T) {
	circuit, err := vybiumzkevm.NewCircuit(testConfig())
	require.NoError(t, err)

	recorder := vybiumzkevm.NewRecorder(testConfig())
	recorder.EnterCall([]byte{byte(vm.JUMPDEST)}, false)
	_, err = recorder.Exec(vybiumzkevm.StepInfo{Opcode: vm.JUMPDEST, StackPointer: 1024, GasLeft: 3, GasCost: 1})
	require.NoError(t, err)

	_, err = circuit.Run(context.Background(), recorder.Finish())
	assert.True(t, errors.Is(err, &vybiumzkevm.CircuitError{Code: vybiumzkevm.ErrWitnessAssignment}))
}

func TestNewCircuitErrors(t *testing.T) {
	_, err := vybiumzkevm.NewCircuit(nil)
	assert.True(t, errors.Is(err, &vybiumzkevm.CircuitError{Code: vybiumzkevm.ErrInvalidInput}))

	_, err = vybiumzkevm.NewCircuit(testConfig().WithMaxDegree(3))
	assert.True(t, errors.Is(err, &vybiumzkevm.CircuitError{Code: vybiumzkevm.ErrInvalidConfig}))

	_, err = vybiumzkevm.NewCircuit(testConfig().WithParallelism(0))
	assert.True(t, errors.Is(err, &vybiumzkevm.CircuitError{Code: vybiumzkevm.ErrInvalidConfig}))
}

func TestTraceFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.json.gz")
	require.NoError(t, vybiumzkevm.WriteTrace(path, recordSignextend(t, uint256.NewInt(0x80), extended()), true))

	trace, err := vybiumzkevm.ReadTrace(path, testConfig())
	require.NoError(t, err)

	circuit, err := vybiumzkevm.NewCircuit(testConfig())
	require.NoError(t, err)
	_, err = circuit.Run(context.Background(), trace)
	require.NoError(t, err)

	_, err = vybiumzkevm.ReadTrace(filepath.Join(t.TempDir(), "missing.json"), testConfig())
	assert.True(t, errors.Is(err, &vybiumzkevm.CircuitError{Code: vybiumzkevm.ErrInvalidTrace}))
}
