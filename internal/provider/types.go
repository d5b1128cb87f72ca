// Package provider implements the historical state provider: it
// composes several sources, in a strict preference order, to produce a
// complete ReplayState for a transaction digest.
package provider

import (
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/cache"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/vmhost"
)

// ObjectRef is an object id pinned to a version, as it appears in a
// transaction's inputs, unchanged-object sets, or changed-object list.
type ObjectRef struct {
	ID      sui.Address
	Version uint64
}

// CommandKind distinguishes the PTB command shapes the provider
// inspects for package-id extraction from the shapes the replay driver
// just passes through to the VM untouched.
type CommandKind int

const (
	CommandMoveCall CommandKind = iota
	CommandMakeMoveVec
	CommandOther
)

// Command is one PTB instruction as fetched: enough detail for both
// the provider's package-id extraction (Kind, Package, ElementType)
// and the replay driver's translation into a vmhost.Command —
// Module/Function/TypeArgs/Args carry that detail using vmhost's own
// Input/InputKind vocabulary rather than a second, parallel one.
type Command struct {
	Kind        CommandKind
	Package     sui.Address   // valid when Kind == CommandMoveCall
	ElementType sui.TypeTag   // valid when Kind == CommandMakeMoveVec
	Module      string        // valid when Kind == CommandMoveCall
	Function    string        // valid when Kind == CommandMoveCall
	TypeArgs    []sui.TypeTag // valid when Kind == CommandMoveCall
	Args        []vmhost.Input
}

// TransactionPayload is the subset of a fetched transaction the
// provider needs to build a ReplayState.
type TransactionPayload struct {
	Digest      sui.Digest
	Checkpoint  *uint64
	TimestampMs *uint64
	Epoch       uint64
	Sender      sui.Address

	Inputs                       []ObjectRef
	UnchangedLoadedRuntimeObjects []ObjectRef
	ChangedObjects               []ObjectRef
	UnchangedConsensusObjects    []ObjectRef

	Commands []Command

	// Effects is the authoritative on-chain outcome of this
	// transaction, fetched alongside it — the replay driver's
	// comparison report is scored against this. Nil when the source
	// couldn't supply it (e.g. a transaction whose effects were never
	// indexed).
	Effects *AuthoritativeEffects
}

// AuthoritativeEffects is the ground-truth outcome a replay is
// compared against: whether the transaction succeeded, and how many
// objects it created, mutated, and deleted.
type AuthoritativeEffects struct {
	Success      bool
	CreatedCount int
	MutatedCount int
	DeletedCount int
}

// CheckpointPayload is the subset of a fetched checkpoint the provider
// needs: its own bundled objects/packages and the transactions it
// contains.
type CheckpointPayload struct {
	Sequence     uint64
	Epoch        uint64
	Objects      []cache.VersionedObject
	Packages     []cache.Package
	Transactions []sui.Digest
}

// EpochMeta is the metadata resolved in algorithm step 10.
type EpochMeta struct {
	ProtocolVersion   uint64
	ReferenceGasPrice *uint64
}

// ReplayState is the complete input bundle for one replay.
type ReplayState struct {
	Transaction       TransactionPayload
	Objects           map[sui.Address]cache.VersionedObject
	Packages          map[sui.Address]cache.Package
	ProtocolVersion   uint64
	Epoch             uint64
	ReferenceGasPrice *uint64
	Checkpoint        *uint64

	// Diagnostics is the downgrade/data-gap/linkage-alias log the replay
	// driver surfaces alongside the comparison report.
	Diagnostics []Diagnostic
}
