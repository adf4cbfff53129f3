package table

import "github.com/vybium/vybium-zkevm/internal/vybium-zkevm/core"

// TxTableTag selects a transaction field in the tx table.
type TxTableTag uint64

const (
	TxNonce TxTableTag = iota + 1
	TxGas
	TxGasTipCap
	TxGasFeeCap
	TxCallerAddress
	TxCalleeAddress
	TxIsCreate
	TxValue
	TxCalldataLength
	TxCalldata
)

// Expr returns the tag as a constant expression.
func (t TxTableTag) Expr() core.Expression { return core.Const(uint64(t)) }

// RwTableTag selects the kind of state an rw table row reads or writes.
type RwTableTag uint64

const (
	RwTxAccessListAccount RwTableTag = iota + 1
	RwTxAccessListStorageSlot
	RwTxRefund
	RwAccount
	RwAccountStorage
	RwAccountDestructed
	RwCallContext
	RwStack
	RwMemory
)

// Expr returns the tag as a constant expression.
func (t RwTableTag) Expr() core.Expression { return core.Const(uint64(t)) }

func (t RwTableTag) String() string {
	switch t {
	case RwTxAccessListAccount:
		return "TxAccessListAccount"
	case RwTxAccessListStorageSlot:
		return "TxAccessListStorageSlot"
	case RwTxRefund:
		return "TxRefund"
	case RwAccount:
		return "Account"
	case RwAccountStorage:
		return "AccountStorage"
	case RwAccountDestructed:
		return "AccountDestructed"
	case RwCallContext:
		return "CallContext"
	case RwStack:
		return "Stack"
	case RwMemory:
		return "Memory"
	default:
		return "Unknown"
	}
}

// AccountFieldTag selects an account field in RwAccount rows.
type AccountFieldTag uint64

const (
	AccountNonce AccountFieldTag = iota + 1
	AccountBalance
	AccountCodeHash
)

// Expr returns the tag as a constant expression.
func (t AccountFieldTag) Expr() core.Expression { return core.Const(uint64(t)) }

// CallContextFieldTag selects a call context field in RwCallContext rows.
// The fields from IsRoot on mirror the step state and are saved when a call
// is suspended.
type CallContextFieldTag uint64

const (
	CallContextRwCounterEndOfReversion CallContextFieldTag = iota + 1
	CallContextCallerCallID
	CallContextTxID
	CallContextDepth
	CallContextCallerAddress
	CallContextCalleeAddress
	CallContextCalldataOffset
	CallContextCalldataLength
	CallContextReturndataOffset
	CallContextReturndataLength
	CallContextValue
	CallContextResult
	CallContextIsPersistent
	CallContextIsStatic

	CallContextIsRoot
	CallContextIsCreate
	CallContextOpcodeSource
	CallContextProgramCounter
	CallContextStackPointer
	CallContextGasLeft
	CallContextMemorySize
	CallContextStateWriteCounter
)

// Expr returns the tag as a constant expression.
func (t CallContextFieldTag) Expr() core.Expression { return core.Const(uint64(t)) }
