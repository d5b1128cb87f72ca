package nativeruntime

import (
	"encoding/binary"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/objectruntime"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"
)

// childObjectIDScope is the hashing-intent scope byte Sui prepends when
// deriving a dynamic-field child id.
const childObjectIDScope = 0xF0

// suspiciousZeroByteThreshold flags a parent address as likely-corrupted
// input: real Sui addresses are hash-derived and rarely have this many
// zero bytes.
const suspiciousZeroByteThreshold = 24

// OnDemandFetcher resolves a child object the local runtime and shared
// state both miss, via the historical state provider.
type OnDemandFetcher interface {
	FetchChild(parent, child sui.Address) (tag sui.TypeTag, bcsBytes []byte, found bool)
}

type keyMemoKey struct {
	parent sui.Address
	keyHex string
}

// DynamicFields resolves child-object ids from (parent, key) pairs,
// implementing a four-candidate package-upgrade-aware alias resolution
// order.
type DynamicFields struct {
	mu               sync.Mutex
	keyMemo          map[keyMemoKey]sui.TypeTag
	suspiciousParents []sui.Address
}

// NewDynamicFields returns an empty resolver.
func NewDynamicFields() *DynamicFields {
	return &DynamicFields{keyMemo: make(map[keyMemoKey]sui.TypeTag)}
}

// HashTypeAndKey derives the child id for (parent, keyTag, keyBytes),
// trying each candidate type tag in order and preferring the first
// that resolves to an existing (local, shared, or on-demand-fetched)
// child. If none resolve, the rewritten-tag candidate's id is returned.
func (d *DynamicFields) HashTypeAndKey(rt *objectruntime.Runtime, shared *objectruntime.Shared, fetch OnDemandFetcher, parent sui.Address, keyTag sui.TypeTag, keyBytes []byte) sui.Address {
	if parent.ZeroByteCount() > suspiciousZeroByteThreshold {
		d.mu.Lock()
		d.suspiciousParents = append(d.suspiciousParents, parent)
		d.mu.Unlock()
	}

	candidates := d.candidates(shared, parent, keyTag, keyBytes)

	var chosen *sui.Address
	for _, tag := range candidates {
		id := computeChildID(parent, tag, keyBytes)
		d.remember(parent, keyBytes, tag)
		if rt.ChildObjectExists(parent, id) {
			chosen = &id
			break
		}
		if fetch != nil {
			if fTag, fBytes, found := fetch.FetchChild(parent, id); found {
				shared.HydrateFromFetch(parent, id, fTag, fBytes)
				chosen = &id
				break
			}
		}
	}
	if chosen != nil {
		return *chosen
	}
	return computeChildID(parent, candidates[0], keyBytes)
}

// candidates builds the ordered, deduplicated candidate type-tag list:
// the rewritten tag, the tag as given, a memoized prior resolution, and
// any known package-upgrade aliases of the tag's struct address.
func (d *DynamicFields) candidates(shared *objectruntime.Shared, parent sui.Address, keyTag sui.TypeTag, keyBytes []byte) []sui.TypeTag {
	var out []sui.TypeTag
	seen := make(map[string]bool)
	add := func(tag sui.TypeTag) {
		key := tag.String()
		if !seen[key] {
			seen[key] = true
			out = append(out, tag)
		}
	}

	rewritten := shared.RewriteTypeTag(keyTag, objectruntime.ToStorage)
	add(rewritten)
	add(keyTag)

	if resolved, ok := d.lookup(parent, keyBytes); ok {
		add(resolved)
	}

	if keyTag.Kind == sui.KindStruct {
		if am := shared.AliasMap(); am != nil {
			structAddr := keyTag.Struct.Address
			for _, alias := range am.KnownAliasesFor(structAddr) {
				if alias == structAddr {
					continue
				}
				add(keyTag.RewriteAddress(structAddr, alias))
			}
		}
	}
	return out
}

func (d *DynamicFields) remember(parent sui.Address, keyBytes []byte, tag sui.TypeTag) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.keyMemo[keyMemoKey{parent: parent, keyHex: string(keyBytes)}] = tag
}

func (d *DynamicFields) lookup(parent sui.Address, keyBytes []byte) (sui.TypeTag, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	tag, ok := d.keyMemo[keyMemoKey{parent: parent, keyHex: string(keyBytes)}]
	return tag, ok
}

// SuspiciousParents returns every parent address flagged by the
// >24-zero-byte diagnostic since the resolver was created.
func (d *DynamicFields) SuspiciousParents() []sui.Address {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]sui.Address, len(d.suspiciousParents))
	copy(out, d.suspiciousParents)
	return out
}

// computeChildID implements the exact derivation formula:
// Blake2b256(0xF0 || parent || len(key_bytes) as u64-LE || key_bytes ||
// bcs(type_tag)).
func computeChildID(parent sui.Address, tag sui.TypeTag, keyBytes []byte) sui.Address {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	h.Write([]byte{childObjectIDScope})
	h.Write(parent[:])
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(keyBytes)))
	h.Write(lenBuf[:])
	h.Write(keyBytes)
	h.Write(encodeTypeTagBCS(tag))

	sum := h.Sum(nil)
	var out sui.Address
	copy(out[:], sum)
	return out
}
