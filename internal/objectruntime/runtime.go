// Package objectruntime implements the in-session child-object store and
// its cross-session shared-state bridge: the VM extension that backs Move's
// dynamic-field and transfer-receive primitives.
package objectruntime

import (
	"fmt"

	"github.com/google/btree"

	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"
)

// ChildState is the five-state lifecycle of a child-object entry.
type ChildState int

const (
	// StateAbsent is not a stored state; it represents "not in runtime".
	StateAbsent ChildState = iota
	StatePristine
	StatePreloaded
	StateMutated
	StateDeleted
)

func (s ChildState) String() string {
	switch s {
	case StatePristine:
		return "pristine"
	case StatePreloaded:
		return "preloaded"
	case StateMutated:
		return "mutated"
	case StateDeleted:
		return "deleted"
	default:
		return "absent"
	}
}

// ChildKey identifies a child-object entry by its (parent, child) pair.
type ChildKey struct {
	Parent sui.Address
	Child  sui.Address
}

func lessChildKey(a, b ChildKey) bool {
	if a.Parent != b.Parent {
		return bytesLess(a.Parent[:], b.Parent[:])
	}
	return bytesLess(a.Child[:], b.Child[:])
}

func bytesLess(a, b []byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// ChildEntry is one row of the child-object store: the serialized value
// of a dynamic field or wrapped/owned child object, plus its lifecycle
// state.
type ChildEntry struct {
	Key   ChildKey
	Type  sui.TypeTag
	Bytes []byte
	State ChildState
}

type indexEntry struct {
	key ChildKey
}

func lessIndexEntry(a, b indexEntry) bool { return lessChildKey(a.key, b.key) }

// Runtime is the session-local object runtime: one per VM invocation. It is
// not safe for concurrent use from multiple goroutines; a single VM session
// is single-threaded.
type Runtime struct {
	entries map[ChildKey]*ChildEntry
	index   *btree.BTreeG[indexEntry]

	createdIDs map[sui.Address]struct{}
	deletedIDs map[sui.Address]struct{}

	// removedChildren tracks children removed this session so that a
	// stale hydration from shared state cannot resurrect a ghost.
	removedChildren map[ChildKey]struct{}

	shared *Shared
}

// NewRuntime constructs an empty session-local runtime. shared may be nil
// for tests that do not need the cross-session bridge.
func NewRuntime(shared *Shared) *Runtime {
	return &Runtime{
		entries:         make(map[ChildKey]*ChildEntry),
		index:           btree.NewG(32, lessIndexEntry),
		createdIDs:      make(map[sui.Address]struct{}),
		deletedIDs:      make(map[sui.Address]struct{}),
		removedChildren: make(map[ChildKey]struct{}),
		shared:          shared,
	}
}

// AddChildObject implements add_child_object: a brand-new child created
// during this session (absent → pristine).
func (r *Runtime) AddChildObject(parent, child sui.Address, value []byte, tag sui.TypeTag) error {
	key := ChildKey{Parent: parent, Child: child}
	if e, ok := r.entries[key]; ok && e.State != StateDeleted {
		return fmt.Errorf("objectruntime: child %s already present in state %s", child, e.State)
	}
	entry := &ChildEntry{Key: key, Type: tag, Bytes: value, State: StatePristine}
	r.entries[key] = entry
	r.index.ReplaceOrInsert(indexEntry{key: key})
	delete(r.removedChildren, key)
	r.RecordNewID(child)
	if r.shared != nil {
		r.shared.put(key, entry.Type, entry.Bytes, StatePristine)
	}
	return nil
}

// hydrate installs a preloaded entry (absent → preloaded), from either the
// shared state or an on-demand fetch.
func (r *Runtime) hydrate(parent, child sui.Address, value []byte, tag sui.TypeTag) *ChildEntry {
	key := ChildKey{Parent: parent, Child: child}
	entry := &ChildEntry{Key: key, Type: tag, Bytes: value, State: StatePreloaded}
	r.entries[key] = entry
	r.index.ReplaceOrInsert(indexEntry{key: key})
	return entry
}

// lookup resolves an entry from the local table, falling back to the
// shared cross-session state.
func (r *Runtime) lookup(parent, child sui.Address) (*ChildEntry, bool) {
	key := ChildKey{Parent: parent, Child: child}
	if _, removed := r.removedChildren[key]; removed {
		return nil, false
	}
	if e, ok := r.entries[key]; ok {
		return e, true
	}
	if r.shared == nil {
		return nil, false
	}
	tag, bytes, ok := r.shared.get(key)
	if !ok {
		return nil, false
	}
	return r.hydrate(parent, child, bytes, tag), true
}

// ChildObjectExists implements child_object_exists.
func (r *Runtime) ChildObjectExists(parent, child sui.Address) bool {
	e, ok := r.lookup(parent, child)
	return ok && e.State != StateDeleted
}

// ChildObjectExistsWithType implements child_object_exists_with_type.
// Type checking is strict: a type mismatch reports absence rather than
// panicking.
func (r *Runtime) ChildObjectExistsWithType(parent, child sui.Address, expected sui.TypeTag) bool {
	e, ok := r.lookup(parent, child)
	if !ok || e.State == StateDeleted {
		return false
	}
	return e.Type.String() == expected.String()
}

// BorrowChildObject implements borrow_child_object: a read-only reference
// to a child's current bytes.
func (r *Runtime) BorrowChildObject(parent, child sui.Address, expected sui.TypeTag) ([]byte, error) {
	e, ok := r.lookup(parent, child)
	if !ok {
		return nil, ErrFieldDoesNotExist
	}
	if e.State == StateDeleted {
		return nil, ErrAlreadyDeleted
	}
	if e.Type.String() != expected.String() {
		return nil, ErrFieldTypeMismatch
	}
	return e.Bytes, nil
}

// BorrowChildObjectMut implements borrow_child_object_mut. The caller is
// expected to write the returned bytes back via MarkMutated once the VM's
// own change tracking observes a write.
func (r *Runtime) BorrowChildObjectMut(parent, child sui.Address, expected sui.TypeTag) (*ChildEntry, error) {
	e, ok := r.lookup(parent, child)
	if !ok {
		return nil, ErrFieldDoesNotExist
	}
	if e.State == StateDeleted {
		return nil, ErrAlreadyDeleted
	}
	if e.Type.String() != expected.String() {
		return nil, ErrFieldTypeMismatch
	}
	return e, nil
}

// MarkMutated transitions preloaded → mutated (pristine stays pristine),
// and mirrors the new bytes to shared state.
func (r *Runtime) MarkMutated(parent, child sui.Address, newBytes []byte) {
	key := ChildKey{Parent: parent, Child: child}
	e, ok := r.entries[key]
	if !ok {
		return
	}
	e.Bytes = newBytes
	if e.State == StatePreloaded {
		e.State = StateMutated
	}
	if r.shared != nil {
		r.shared.put(key, e.Type, e.Bytes, e.State)
	}
}

// RemoveChildObject implements remove_child_object: pristine/preloaded →
// deleted, returning the value that was stored.
func (r *Runtime) RemoveChildObject(parent, child sui.Address, expected sui.TypeTag) ([]byte, error) {
	e, ok := r.lookup(parent, child)
	if !ok {
		return nil, ErrFieldDoesNotExist
	}
	if e.State == StateDeleted {
		return nil, ErrAlreadyDeleted
	}
	if e.Type.String() != expected.String() {
		return nil, ErrFieldTypeMismatch
	}
	bytes := e.Bytes
	e.State = StateDeleted
	key := ChildKey{Parent: parent, Child: child}
	r.removedChildren[key] = struct{}{}
	r.RecordDeletedID(child)
	if r.shared != nil {
		r.shared.remove(key)
	}
	return bytes, nil
}

// RecordNewID implements record_new_id: tracks an id as newly created this
// session (invariant (a): an id is in at most one of created/deleted).
func (r *Runtime) RecordNewID(id sui.Address) {
	delete(r.deletedIDs, id)
	r.createdIDs[id] = struct{}{}
}

// RecordDeletedID implements record_deleted_id.
func (r *Runtime) RecordDeletedID(id sui.Address) {
	delete(r.createdIDs, id)
	r.deletedIDs[id] = struct{}{}
}

// CountChildrenForParent implements count_children_for_parent, walking the
// btree index in deterministic (parent, child) order.
func (r *Runtime) CountChildrenForParent(parent sui.Address) uint64 {
	var n uint64
	lo := ChildKey{Parent: parent}
	r.index.AscendGreaterOrEqual(indexEntry{key: lo}, func(item indexEntry) bool {
		if item.key.Parent != parent {
			return false
		}
		if e, ok := r.entries[item.key]; ok && e.State != StateDeleted {
			n++
		}
		return true
	})
	return n
}

// CreatedIDs returns the ids created this session, filtered so that
// preloaded children are never surfaced as "created" (invariant (b)).
func (r *Runtime) CreatedIDs() []sui.Address {
	out := make([]sui.Address, 0, len(r.createdIDs))
	for id := range r.createdIDs {
		if key, ok := r.findAnyKeyForChild(id); ok {
			if e := r.entries[key]; e != nil && e.State == StatePreloaded {
				continue
			}
		}
		out = append(out, id)
	}
	return out
}

// DeletedIDs returns the ids deleted this session.
func (r *Runtime) DeletedIDs() []sui.Address {
	out := make([]sui.Address, 0, len(r.deletedIDs))
	for id := range r.deletedIDs {
		out = append(out, id)
	}
	return out
}

// MutatedEntries returns every entry currently in the mutated state,
// excluding preloaded/pristine/deleted.
func (r *Runtime) MutatedEntries() []*ChildEntry {
	var out []*ChildEntry
	for _, e := range r.entries {
		if e.State == StateMutated {
			out = append(out, e)
		}
	}
	return out
}

func (r *Runtime) findAnyKeyForChild(child sui.Address) (ChildKey, bool) {
	for key := range r.entries {
		if key.Child == child {
			return key, true
		}
	}
	return ChildKey{}, false
}

// EndSession clears the per-transaction mutation flag (invariant (c)):
// mutated entries revert to pristine bookkeeping for the next session,
// since the runtime itself is not reused across sessions but the shared
// state's view of "currently mutated" should not leak.
func (r *Runtime) EndSession() {
	for _, e := range r.entries {
		if e.State == StateMutated {
			e.State = StatePristine
		}
	}
	r.createdIDs = make(map[sui.Address]struct{})
	r.deletedIDs = make(map[sui.Address]struct{})
}
