// Package vmhost defines the contract this repo drives but does not
// implement: a Move bytecode interpreter capable of executing a
// programmable transaction block against a native table and an
// object-runtime extension. Production wiring of a real Move VM is out
// of scope; vmhost.Fake (in vmhost/fake.go) implements the same
// interface for tests.
package vmhost

import (
	"context"

	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/objectruntime"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"
)

// Type is an opaque VM-internal type handle, as distinct from the
// chain-agnostic sui.TypeTag: a VM may represent a generic struct's
// instantiation, a reference, or a primitive differently from its wire
// form. TypeToTypeTag bridges the two.
type Type interface {
	// String renders the VM's own debug form of the type.
	String() string
}

// Layout is an opaque VM-internal serialization layout for a Type,
// obtained via TypeToTypeLayout and consumed by Serialize/Deserialize.
type Layout interface {
	TypeTag() sui.TypeTag
}

// Value is an opaque VM-internal runtime value: the result of
// deserializing bytes under a Layout, or a return value / argument in an
// Execute call.
type Value interface {
	// Bytes returns the value's BCS-serialized form.
	Bytes() ([]byte, error)
}

// NativeFunc is the signature every entry in a NativeTable implements: a
// callback invoked by the VM in place of a Move native function body.
// ctx carries per-call cancellation for natives that may block (e.g. an
// on-demand object fetch triggered by a dynamic-field miss). typeArgs
// carries the native's generic type arguments (e.g. dynamic_field's `K`),
// separate from its value arguments.
type NativeFunc func(ctx context.Context, typeArgs []sui.TypeTag, args []Value) ([]Value, error)

// NativeKey identifies one native function by its fully-qualified Move
// address: (address, module_name, function_name).
type NativeKey struct {
	Address  sui.Address
	Module   string
	Function string
}

// NativeTable maps a (address, module, function) triple to its Go
// implementation.
type NativeTable map[NativeKey]NativeFunc

// Get looks up a native by its fully-qualified name.
func (t NativeTable) Get(address sui.Address, module, function string) (NativeFunc, bool) {
	f, ok := t[NativeKey{Address: address, Module: module, Function: function}]
	return f, ok
}

// Register installs or replaces a native function in the table.
func (t NativeTable) Register(address sui.Address, module, function string, fn NativeFunc) {
	t[NativeKey{Address: address, Module: module, Function: function}] = fn
}

// InputKind discriminates how a PTB command argument refers into the
// transaction's input/result graph.
type InputKind int

const (
	InputPure InputKind = iota
	InputObject
	InputResult
	InputNestedResult
	InputGasCoin
)

// Input is one argument reference in a PTB command: a pure BCS-encoded
// value, an object input, a prior command's result, a nested result
// index, or the gas coin.
type Input struct {
	Kind          InputKind
	PureBytes     []byte
	ObjectID      sui.Address
	ResultIndex   int
	NestedIndex   int
}

// Command is one PTB instruction: a call into a Move function (or a
// built-in transfer/split/merge/publish/upgrade command) with its
// argument inputs.
type Command struct {
	Package  sui.Address
	Module   string
	Function string
	TypeArgs []sui.TypeTag
	Args     []Input
}

// ExecutionInput bundles everything Execute needs for one PTB session:
// the ordered commands, the owners of every referenced object, the gas
// budget, and the epoch context natives consult (MockClock/epoch
// metadata).
type ExecutionInput struct {
	Commands        []Command
	ObjectOwners    map[sui.Address]sui.Owner
	Epoch           uint64
	ProtocolVersion uint64
	ReferenceGasPrice uint64
	GasBudget       uint64
}

// Effects is the outcome of one Execute call: the object ids created,
// mutated, and deleted (already filtered to exclude preloaded
// children), emitted events, command return values, and gas usage.
type Effects struct {
	Success      bool
	AbortCode    uint64
	ErrorMessage string
	Created      []sui.Address
	Mutated      []sui.Address
	Deleted      []sui.Address
	Events       []Event
	ReturnValues [][]byte
	GasUsed      uint64
}

// Event is one emitted Move event.
type Event struct {
	Type     sui.TypeTag
	Sender   sui.Address
	Sequence uint64
	Bytes    []byte
}

// VM is the interpreter contract the replay driver drives.
type VM interface {
	// NativeTable returns the table this VM will consult for every
	// native function call during Execute.
	NativeTable() NativeTable

	// SetObjectRuntimeExtension installs the session-local object
	// runtime. Ownership of the runtime for the session's duration
	// belongs to the core.
	SetObjectRuntimeExtension(rt *objectruntime.Runtime)

	// TypeToTypeLayout resolves a VM-internal Type to its serialization
	// layout.
	TypeToTypeLayout(t Type) (Layout, error)

	// TypeToTypeTag resolves a VM-internal Type to the chain-agnostic
	// sui.TypeTag used as a cache and map key throughout this repo.
	TypeToTypeTag(t Type) (sui.TypeTag, error)

	// Serialize encodes a Value under the given layout.
	Serialize(l Layout, v Value) ([]byte, error)

	// Deserialize decodes bytes into a Value under the given layout.
	Deserialize(l Layout, data []byte) (Value, error)

	// Disassemble renders a compiled module's bytecode as human-readable
	// text, delegated to by internal/introspect.
	Disassemble(module []byte) (string, error)

	// Execute runs one programmable transaction block session to
	// completion. It never suspends except as the Go runtime schedules
	// goroutines; the object runtime, natives, and cache it touches are
	// strictly synchronous.
	Execute(ctx context.Context, in ExecutionInput) (Effects, error)
}
