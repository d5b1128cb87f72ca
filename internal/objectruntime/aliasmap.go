package objectruntime

import "github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"

// AliasMap is the linkage-upgrade alias map installed on the shared
// state by the replay driver: for each package upgrade it carries both
// the original→upgraded and upgraded→original address mappings, so
// natives can translate between a struct's runtime (bytecode) address
// and its on-chain storage address in either direction.
type AliasMap struct {
	toStorage map[sui.Address]sui.Address
	toRuntime map[sui.Address]sui.Address
}

// NewAliasMap returns an empty alias map.
func NewAliasMap() *AliasMap {
	return &AliasMap{
		toStorage: make(map[sui.Address]sui.Address),
		toRuntime: make(map[sui.Address]sui.Address),
	}
}

// Install records one (original, upgraded) pair, producing both
// directions of the mapping.
func (m *AliasMap) Install(original, upgraded sui.Address) {
	if original == upgraded {
		return
	}
	m.toStorage[upgraded] = original
	m.toRuntime[original] = upgraded
}

// StorageAlias returns the original (on-chain storage) address for a
// runtime address, if known.
func (m *AliasMap) StorageAlias(runtime sui.Address) (sui.Address, bool) {
	a, ok := m.toStorage[runtime]
	return a, ok
}

// RuntimeAlias returns the upgraded (bytecode/runtime) address for a
// storage address, if known.
func (m *AliasMap) RuntimeAlias(storage sui.Address) (sui.Address, bool) {
	a, ok := m.toRuntime[storage]
	return a, ok
}

// KnownAliasesFor returns every known address that aliases addr, in
// either direction, used by the dynamic-field native's fourth
// candidate: each known storage-address alias of the struct address.
func (m *AliasMap) KnownAliasesFor(addr sui.Address) []sui.Address {
	var out []sui.Address
	if a, ok := m.toStorage[addr]; ok {
		out = append(out, a)
	}
	if a, ok := m.toRuntime[addr]; ok {
		out = append(out, a)
	}
	return out
}

// RewriteTypeTag substitutes every struct address in tag that has a known
// alias in the chosen direction (runtime→storage for ToStorage,
// storage→runtime for ToRuntime), recursing into type parameters.
func (m *AliasMap) RewriteTypeTag(tag sui.TypeTag, dir RewriteDirection) sui.TypeTag {
	switch tag.Kind {
	case sui.KindVector:
		inner := m.RewriteTypeTag(*tag.Vector, dir)
		return sui.VectorOf(inner)
	case sui.KindStruct:
		s := *tag.Struct
		var alias sui.Address
		var ok bool
		if dir == ToStorage {
			alias, ok = m.toStorage[s.Address]
		} else {
			alias, ok = m.toRuntime[s.Address]
		}
		if ok {
			s.Address = alias
		}
		params := make([]sui.TypeTag, len(s.TypeParams))
		for i, tp := range s.TypeParams {
			params[i] = m.RewriteTypeTag(tp, dir)
		}
		s.TypeParams = params
		return sui.StructOf(s)
	default:
		return tag
	}
}

// RewriteDirection selects which half of the alias map RewriteTypeTag
// applies.
type RewriteDirection int

const (
	ToStorage RewriteDirection = iota
	ToRuntime
)
