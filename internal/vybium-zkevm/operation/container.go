package operation

import (
	"cmp"
	"fmt"
	"slices"
)

// Container stores every operation recorded during one execution, one
// append-only store per target.
//
// Insert hands out OperationRefs that point at insertion order positions;
// the Sorted* views produce the canonical per-target order consumed by the
// consistency argument without disturbing the stores.
type Container struct {
	memory  []Operation[MemoryOp]
	stack   []Operation[StackOp]
	storage []Operation[StorageOp]
}

// NewContainer creates an empty container.
func NewContainer() *Container {
	return &Container{
		memory:  make([]Operation[MemoryOp], 0),
		stack:   make([]Operation[StackOp], 0),
		storage: make([]Operation[StorageOp], 0),
	}
}

// Insert appends op to the store of its target and returns a reference to it.
func (c *Container) Insert(op AnyOperation) OperationRef {
	switch op := op.(type) {
	case Operation[MemoryOp]:
		c.memory = append(c.memory, op)
		return OperationRef{Target: Memory, Index: len(c.memory)}
	case Operation[StackOp]:
		c.stack = append(c.stack, op)
		return OperationRef{Target: Stack, Index: len(c.stack)}
	case Operation[StorageOp]:
		c.storage = append(c.storage, op)
		return OperationRef{Target: Storage, Index: len(c.storage)}
	default:
		// Op is sealed, no other instantiation can exist.
		panic(fmt.Sprintf("unsupported operation type %T", op))
	}
}

// Len returns the number of operations recorded for target.
func (c *Container) Len(target Target) int {
	switch target {
	case Memory:
		return len(c.memory)
	case Stack:
		return len(c.stack)
	case Storage:
		return len(c.storage)
	default:
		return 0
	}
}

// Memory dereferences a memory reference.
func (c *Container) Memory(ref OperationRef) (Operation[MemoryOp], bool) {
	return lookup(c.memory, Memory, ref)
}

// Stack dereferences a stack reference.
func (c *Container) Stack(ref OperationRef) (Operation[StackOp], bool) {
	return lookup(c.stack, Stack, ref)
}

// Storage dereferences a storage reference.
func (c *Container) Storage(ref OperationRef) (Operation[StorageOp], bool) {
	return lookup(c.storage, Storage, ref)
}

// Get dereferences a reference of any target.
func (c *Container) Get(ref OperationRef) (AnyOperation, bool) {
	var (
		op AnyOperation
		ok bool
	)
	switch ref.Target {
	case Memory:
		op, ok = c.Memory(ref)
	case Stack:
		op, ok = c.Stack(ref)
	case Storage:
		op, ok = c.Storage(ref)
	}
	if !ok {
		return nil, false
	}
	return op, true
}

// SortedMemory returns all memory operations ordered by (address, counter).
func (c *Container) SortedMemory() []Operation[MemoryOp] {
	return sorted(c.memory)
}

// SortedStack returns all stack operations ordered by (address, counter).
func (c *Container) SortedStack() []Operation[StackOp] {
	return sorted(c.stack)
}

// SortedStorage returns all storage operations ordered by (address, key,
// counter).
func (c *Container) SortedStorage() []Operation[StorageOp] {
	return sorted(c.storage)
}

// ByCounter returns every operation of every target in recording order.
func (c *Container) ByCounter() []AnyOperation {
	all := make([]AnyOperation, 0, len(c.memory)+len(c.stack)+len(c.storage))
	for _, op := range c.memory {
		all = append(all, op)
	}
	for _, op := range c.stack {
		all = append(all, op)
	}
	for _, op := range c.storage {
		all = append(all, op)
	}
	slices.SortFunc(all, func(a, b AnyOperation) int {
		return cmp.Compare(a.GC(), b.GC())
	})
	return all
}

func lookup[T Op[T]](store []Operation[T], target Target, ref OperationRef) (Operation[T], bool) {
	if ref.Target != target || ref.Index < 1 || ref.Index > len(store) {
		return Operation[T]{}, false
	}
	return store[ref.Index-1], true
}

func sorted[T Op[T]](store []Operation[T]) []Operation[T] {
	out := slices.Clone(store)
	slices.SortFunc(out, func(a, b Operation[T]) int {
		return a.Compare(b)
	})
	return out
}
