package execution

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/evm/util"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/step"
)

func TestConfigure(t *testing.T) {
	for _, state := range step.States() {
		t.Run(state.String(), func(t *testing.T) {
			cb := util.NewConstraintBuilder(util.NewStep(0), util.NewStep(1), state)
			gadget, err := Configure(cb)
			require.NoError(t, err)
			assert.Equal(t, state, gadget.ExecutionState())
			assert.Equal(t, state.String(), gadget.Name())
			assert.Equal(t, !state.IsTerminal(), cb.HasTransition())

			_, _, err = cb.Build()
			require.NoError(t, err)
			assert.LessOrEqual(t, cb.MaxDegree(), 9)
		})
	}

	cb := util.NewConstraintBuilder(util.NewStep(0), util.NewStep(1), step.ExecutionState(step.NumStates))
	_, err := Configure(cb)
	assert.True(t, errors.Is(err, util.ErrInvalidConfiguration))
}

func TestRwAccesses(t *testing.T) {
	want := map[step.ExecutionState]int{
		step.Stop:       0,
		step.Jumpdest:   0,
		step.Cmp:        3,
		step.Signextend: 3,
	}
	for state, accesses := range want {
		cb := util.NewConstraintBuilder(util.NewStep(0), util.NewStep(1), state)
		_, err := Configure(cb)
		require.NoError(t, err)
		assert.Equal(t, accesses, cb.RwCounterOffset(), state.String())
		assert.Equal(t, accesses/3, cb.StackPointerOffset(), state.String())
	}
}
