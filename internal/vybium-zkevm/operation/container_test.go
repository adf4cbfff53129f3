package operation

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustStackAddress(t *testing.T, v uint64) StackAddress {
	t.Helper()
	addr, err := NewStackAddress(v)
	require.NoError(t, err)
	return addr
}

func TestOperationContainer(t *testing.T) {
	var gc GlobalCounter
	container := NewContainer()

	stackOp := NewOperation(gc.IncPre(), NewStackOp(Write, mustStackAddress(t, 1023), uint256.NewInt(0x100)))
	memoryOp := NewOperation(gc.IncPre(), NewMemoryOp(Write, 1, 1))
	storageOp := NewOperation(gc.IncPre(), NewStorageOp(Write, common.Address{}, uint256.NewInt(0), uint256.NewInt(1), uint256.NewInt(0)))

	stackRef := container.Insert(stackOp)
	memoryRef := container.Insert(memoryOp)
	storageRef := container.Insert(storageOp)

	assert.Equal(t, stackOp, container.SortedStack()[0])
	assert.Equal(t, memoryOp, container.SortedMemory()[0])
	assert.Equal(t, storageOp, container.SortedStorage()[0])
	assert.Equal(t, OperationRef{Target: Stack, Index: 1}, stackRef)
	assert.Equal(t, OperationRef{Target: Memory, Index: 1}, memoryRef)
	assert.Equal(t, OperationRef{Target: Storage, Index: 1}, storageRef)
}

func TestGlobalCounterIsStrictlyIncreasing(t *testing.T) {
	var gc GlobalCounter
	prev := gc
	for i := 0; i < 1000; i++ {
		next := gc.IncPre()
		require.Equal(t, prev+1, next)
		prev = next
	}
	assert.Equal(t, GlobalCounter(1000), gc)
}

func TestOperationRefsAreStablePerTarget(t *testing.T) {
	var gc GlobalCounter
	container := NewContainer()
	value := uint256.NewInt(7)

	var stackRefs, memoryRefs []OperationRef
	for i := 0; i < 3; i++ {
		stackRefs = append(stackRefs, container.Insert(NewOperation(gc.IncPre(), NewStackOp(Read, mustStackAddress(t, uint64(i)), value))))
		memoryRefs = append(memoryRefs, container.Insert(NewOperation(gc.IncPre(), NewMemoryOp(Write, MemoryAddress(i), byte(i)))))
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, OperationRef{Target: Stack, Index: i + 1}, stackRefs[i])
		assert.Equal(t, OperationRef{Target: Memory, Index: i + 1}, memoryRefs[i])
	}

	op, ok := container.Stack(stackRefs[1])
	require.True(t, ok)
	assert.Equal(t, StackAddress(1), op.Op().Address())
	assert.Equal(t, GlobalCounter(3), op.GC())

	_, ok = container.Stack(memoryRefs[0])
	assert.False(t, ok, "a memory ref must not resolve in the stack store")
	_, ok = container.Get(OperationRef{Target: Storage, Index: 1})
	assert.False(t, ok)
	_, ok = container.Get(OperationRef{Target: Stack, Index: 0})
	assert.False(t, ok)

	assert.Equal(t, 3, container.Len(Stack))
	assert.Equal(t, 3, container.Len(Memory))
	assert.Equal(t, 0, container.Len(Storage))
}

func TestSortedStack(t *testing.T) {
	var gc GlobalCounter
	container := NewContainer()
	// Interleave accesses to two addresses, higher address first.
	addrs := []uint64{1023, 1022, 1023, 1022, 1023}
	for i, addr := range addrs {
		rw := Read
		if i%2 == 0 {
			rw = Write
		}
		container.Insert(NewOperation(gc.IncPre(), NewStackOp(rw, mustStackAddress(t, addr), uint256.NewInt(uint64(i)))))
	}

	sorted := container.SortedStack()
	require.Len(t, sorted, len(addrs))
	wantAddrs := []StackAddress{1022, 1022, 1023, 1023, 1023}
	wantCounters := []GlobalCounter{2, 4, 1, 3, 5}
	for i, op := range sorted {
		assert.Equal(t, wantAddrs[i], op.Op().Address(), "position %d", i)
		assert.Equal(t, wantCounters[i], op.GC(), "position %d", i)
	}

	// The store itself keeps insertion order.
	first, ok := container.Stack(OperationRef{Target: Stack, Index: 1})
	require.True(t, ok)
	assert.Equal(t, GlobalCounter(1), first.GC())
}

func TestSortedMemory(t *testing.T) {
	var gc GlobalCounter
	container := NewContainer()
	container.Insert(NewOperation(gc.IncPre(), NewMemoryOp(Write, 0x40, 0xAA)))
	container.Insert(NewOperation(gc.IncPre(), NewMemoryOp(Write, 0x20, 0xBB)))
	container.Insert(NewOperation(gc.IncPre(), NewMemoryOp(Read, 0x40, 0xAA)))

	sorted := container.SortedMemory()
	require.Len(t, sorted, 3)
	assert.Equal(t, MemoryAddress(0x20), sorted[0].Op().Address())
	assert.Equal(t, GlobalCounter(1), sorted[1].GC())
	assert.Equal(t, GlobalCounter(3), sorted[2].GC())
	assert.Equal(t, Read, sorted[2].RW())
}

func TestSortedStorage(t *testing.T) {
	var gc GlobalCounter
	container := NewContainer()
	alice := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	bob := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	zero := uint256.NewInt(0)

	container.Insert(NewOperation(gc.IncPre(), NewStorageOp(Write, bob, uint256.NewInt(1), uint256.NewInt(5), zero)))
	container.Insert(NewOperation(gc.IncPre(), NewStorageOp(Write, alice, uint256.NewInt(2), uint256.NewInt(6), zero)))
	container.Insert(NewOperation(gc.IncPre(), NewStorageOp(Read, alice, uint256.NewInt(1), zero, zero)))
	container.Insert(NewOperation(gc.IncPre(), NewStorageOp(Read, alice, uint256.NewInt(2), uint256.NewInt(6), uint256.NewInt(6))))

	sorted := container.SortedStorage()
	require.Len(t, sorted, 4)
	want := []struct {
		address common.Address
		key     uint64
		gc      GlobalCounter
	}{
		{alice, 1, 3},
		{alice, 2, 2},
		{alice, 2, 4},
		{bob, 1, 1},
	}
	for i, w := range want {
		key := sorted[i].Op().Key()
		assert.Equal(t, w.address, sorted[i].Op().Address(), "position %d", i)
		assert.Equal(t, w.key, key.Uint64(), "position %d", i)
		assert.Equal(t, w.gc, sorted[i].GC(), "position %d", i)
	}
}

func TestByCounter(t *testing.T) {
	var gc GlobalCounter
	container := NewContainer()
	container.Insert(NewOperation(gc.IncPre(), NewStackOp(Read, 5, uint256.NewInt(1))))
	container.Insert(NewOperation(gc.IncPre(), NewMemoryOp(Read, 9, 2)))
	container.Insert(NewOperation(gc.IncPre(), NewStackOp(Write, 5, uint256.NewInt(3))))

	all := container.ByCounter()
	require.Len(t, all, 3)
	for i, op := range all {
		assert.Equal(t, GlobalCounter(i+1), op.GC())
	}
	assert.Equal(t, Memory, all[1].Target())
}

func TestNewStackAddress(t *testing.T) {
	_, err := NewStackAddress(StackSize)
	assert.Error(t, err)
	addr, err := NewStackAddress(StackSize - 1)
	assert.NoError(t, err)
	assert.Equal(t, StackAddress(1023), addr)
}
