package nativeruntime

import (
	"errors"
	"sync"

	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"
)

// Receive-failure codes returned by receive_impl.
const (
	ErrCodeReceiveNotFoundByID = 1
	ErrCodeReceiveLayoutUnavailable = 2
	ErrCodeReceiveDeserializeFailed = 3
	ErrCodeReceiveNotFoundAnywhere  = 4
)

// ErrObjectIDTooShort is returned when a native is handed a serialized
// value shorter than the 32-byte id prefix every Sui object carries.
var ErrObjectIDTooShort = errors.New("nativeruntime: serialized object shorter than 32-byte id prefix")

// pendingReceive is a (parent, child) slot waiting to be consumed by
// receive_impl.
type pendingReceive struct {
	tag   sui.TypeTag
	bytes []byte
}

// OwnerRegistry is the shared-state record of every object's current
// owner, mutated by the ownership natives (transfer/freeze/share/
// receive) during a replay session.
type OwnerRegistry struct {
	mu       sync.Mutex
	owners   map[sui.Address]sui.Owner
	pending  map[pendingKey]pendingReceive
}

// pendingKey identifies a pending receive the same way a child object
// entry is identified: by (parent, child).
type pendingKey struct {
	Parent sui.Address
	Child  sui.Address
}

// NewOwnerRegistry returns an empty registry.
func NewOwnerRegistry() *OwnerRegistry {
	return &OwnerRegistry{
		owners:  make(map[sui.Address]sui.Owner),
		pending: make(map[pendingKey]pendingReceive),
	}
}

// objectID extracts the first 32 bytes of a serialized Move value as its
// object id: every Sui object's UID is its leading field.
func objectID(serialized []byte) (sui.Address, error) {
	if len(serialized) < sui.AddressLength {
		return sui.Address{}, ErrObjectIDTooShort
	}
	var a sui.Address
	copy(a[:], serialized[:sui.AddressLength])
	return a, nil
}

// TransferImpl implements transfer::transfer_impl: records the object as
// owned by recipient.
func (r *OwnerRegistry) TransferImpl(serialized []byte, recipient sui.Address) (sui.Address, error) {
	id, err := objectID(serialized)
	if err != nil {
		return sui.Address{}, err
	}
	r.mu.Lock()
	r.owners[id] = sui.NewAddressOwner(recipient)
	r.mu.Unlock()
	return id, nil
}

// FreezeObjectImpl implements transfer::freeze_object_impl.
func (r *OwnerRegistry) FreezeObjectImpl(serialized []byte) (sui.Address, error) {
	id, err := objectID(serialized)
	if err != nil {
		return sui.Address{}, err
	}
	r.mu.Lock()
	r.owners[id] = sui.ImmutableOwner
	r.mu.Unlock()
	return id, nil
}

// ShareObjectImpl implements transfer::share_object_impl, recording the
// version at which the object became shared.
func (r *OwnerRegistry) ShareObjectImpl(serialized []byte, initialVersion uint64) (sui.Address, error) {
	id, err := objectID(serialized)
	if err != nil {
		return sui.Address{}, err
	}
	r.mu.Lock()
	r.owners[id] = sui.NewSharedOwner(initialVersion)
	r.mu.Unlock()
	return id, nil
}

// OwnerOf returns the currently recorded owner for id, if any.
func (r *OwnerRegistry) OwnerOf(id sui.Address) (sui.Owner, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.owners[id]
	return o, ok
}

// RegisterPendingReceive installs a (parent, child) slot a later
// receive_impl call may consume, populated from the transaction's
// Receiving<T> input objects.
func (r *OwnerRegistry) RegisterPendingReceive(parent, child sui.Address, tag sui.TypeTag, bytes []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[pendingKey{Parent: parent, Child: child}] = pendingReceive{tag: tag, bytes: bytes}
}

// ReceiveImpl implements transfer::receive_impl: consumes a Receiving<T>
// value for (parent, child), returning its bytes if the pending entry's
// type tag matches expected.
func (r *OwnerRegistry) ReceiveImpl(parent, child sui.Address, expected sui.TypeTag) ([]byte, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pendingKey{Parent: parent, Child: child}
	entry, ok := r.pending[key]
	if !ok {
		return nil, ErrCodeReceiveNotFoundAnywhere, errors.New("nativeruntime: no pending receive for parent/child")
	}
	if entry.tag.String() != expected.String() {
		return nil, ErrCodeReceiveLayoutUnavailable, errors.New("nativeruntime: pending receive type mismatch")
	}
	delete(r.pending, key)
	return entry.bytes, 0, nil
}
