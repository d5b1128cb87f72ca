package objectruntime

import (
	"sync"

	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"
)

type sharedEntry struct {
	tag   sui.TypeTag
	bytes []byte
	state ChildState
}

// Shared is the cross-session shared state: a mutex-protected children
// table consulted by every session's Runtime on a local miss, plus the
// alias map installed once per replay by the driver.
type Shared struct {
	mu       sync.Mutex
	children map[ChildKey]sharedEntry
	aliases  *AliasMap
}

// NewShared constructs an empty shared state with no alias map installed.
func NewShared() *Shared {
	return &Shared{children: make(map[ChildKey]sharedEntry)}
}

// InstallAliasMap records the linkage-upgrade alias map for this replay
// session. Called once, before any Runtime begins resolving dynamic
// fields.
func (s *Shared) InstallAliasMap(m *AliasMap) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aliases = m
}

// RewriteTypeTag delegates to the installed alias map; with no map
// installed it returns tag unchanged.
func (s *Shared) RewriteTypeTag(tag sui.TypeTag, dir RewriteDirection) sui.TypeTag {
	s.mu.Lock()
	m := s.aliases
	s.mu.Unlock()
	if m == nil {
		return tag
	}
	return m.RewriteTypeTag(tag, dir)
}

// AliasMap returns the installed alias map, or nil if none has been
// installed.
func (s *Shared) AliasMap() *AliasMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aliases
}

func (s *Shared) get(key ChildKey) (sui.TypeTag, []byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.children[key]
	if !ok || e.state == StateDeleted {
		return sui.TypeTag{}, nil, false
	}
	bytesCopy := make([]byte, len(e.bytes))
	copy(bytesCopy, e.bytes)
	return e.tag, bytesCopy, true
}

func (s *Shared) put(key ChildKey, tag sui.TypeTag, bytes []byte, state ChildState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bytesCopy := make([]byte, len(bytes))
	copy(bytesCopy, bytes)
	s.children[key] = sharedEntry{tag: tag, bytes: bytesCopy, state: state}
}

func (s *Shared) remove(key ChildKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.children[key]; ok {
		e.state = StateDeleted
		s.children[key] = e
	}
}

// HydrateFromFetch installs an on-demand-fetched child into shared state
// with a preloaded marker, so a subsequent local lookup retries against
// the cached value instead of fetching again.
func (s *Shared) HydrateFromFetch(parent, child sui.Address, tag sui.TypeTag, bytes []byte) {
	s.put(ChildKey{Parent: parent, Child: child}, tag, bytes, StatePreloaded)
}
