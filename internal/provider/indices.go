package provider

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"
)

// Indices bundles the four local indices at the lowest source
// preference level: object index, tx-digest index, dynamic-field index,
// package index. Each maps a key to an archival
// checkpoint identifier (or, for the dynamic-field index, the full
// child-discovery record); resolving the checkpoint number is the
// caller's job via a CheckpointSource.
type Indices struct {
	dir string
	mu  sync.Mutex

	objectIndex      map[string]uint64 // "id@version" -> checkpoint
	txIndex          map[string]uint64 // digest -> checkpoint
	packageIndex     map[string]pkgIndexEntry
	dynamicFieldIndex map[string][]DynamicFieldEntry // parent -> children
}

type pkgIndexEntry struct {
	Checkpoint        uint64 `json:"checkpoint"`
	PreviousTxDigest  string `json:"previous_transaction,omitempty"`
}

// DynamicFieldEntry is one recorded child discovery in the
// parent -> [{checkpoint, child, version, type_tag?, prev_tx?}]
// dynamic-field cache.
type DynamicFieldEntry struct {
	Checkpoint    uint64 `json:"checkpoint"`
	Child         string `json:"child"`
	Version       uint64 `json:"version"`
	TypeTag       string `json:"type_tag,omitempty"`
	PreviousTxDigest string `json:"previous_transaction,omitempty"`
}

type indicesFile struct {
	ObjectIndex       map[string]uint64            `json:"object_index"`
	TxIndex           map[string]uint64             `json:"tx_index"`
	PackageIndex      map[string]pkgIndexEntry       `json:"package_index"`
	DynamicFieldIndex map[string][]DynamicFieldEntry `json:"dynamic_field_index"`
}

// OpenIndices loads (or initializes) the indices file under dir.
func OpenIndices(dir string) (*Indices, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("provider: create indices dir: %w", err)
	}
	idx := &Indices{
		dir:               dir,
		objectIndex:       make(map[string]uint64),
		txIndex:           make(map[string]uint64),
		packageIndex:      make(map[string]pkgIndexEntry),
		dynamicFieldIndex: make(map[string][]DynamicFieldEntry),
	}
	raw, err := os.ReadFile(idx.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, err
	}
	var f indicesFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("provider: decode indices file: %w", err)
	}
	if f.ObjectIndex != nil {
		idx.objectIndex = f.ObjectIndex
	}
	if f.TxIndex != nil {
		idx.txIndex = f.TxIndex
	}
	if f.PackageIndex != nil {
		idx.packageIndex = f.PackageIndex
	}
	if f.DynamicFieldIndex != nil {
		idx.dynamicFieldIndex = f.DynamicFieldIndex
	}
	return idx, nil
}

func (idx *Indices) filePath() string {
	return filepath.Join(idx.dir, "indices.json")
}

func objectKey(id sui.Address, version uint64) string {
	return fmt.Sprintf("%s@%d", id.String(), version)
}

// LookupObjectCheckpoint returns the checkpoint the given object
// version was recorded in, if known.
func (idx *Indices) LookupObjectCheckpoint(id sui.Address, version uint64) (uint64, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	cp, ok := idx.objectIndex[objectKey(id, version)]
	return cp, ok
}

// RecordObjectCheckpoint records that (id, version) was observed in
// checkpoint cp.
func (idx *Indices) RecordObjectCheckpoint(id sui.Address, version, cp uint64) error {
	idx.mu.Lock()
	idx.objectIndex[objectKey(id, version)] = cp
	idx.mu.Unlock()
	return idx.persist()
}

// LookupTxCheckpoint returns the checkpoint a transaction digest was
// included in, if known.
func (idx *Indices) LookupTxCheckpoint(digest sui.Digest) (uint64, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	cp, ok := idx.txIndex[digest.String()]
	return cp, ok
}

// RecordTxCheckpoint records a transaction digest's checkpoint.
func (idx *Indices) RecordTxCheckpoint(digest sui.Digest, cp uint64) error {
	idx.mu.Lock()
	idx.txIndex[digest.String()] = cp
	idx.mu.Unlock()
	return idx.persist()
}

// LookupPackageCheckpoint returns the checkpoint (and, if known, the
// publishing transaction digest) a package was observed in.
func (idx *Indices) LookupPackageCheckpoint(id sui.Address) (pkgIndexEntry, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	e, ok := idx.packageIndex[id.String()]
	return e, ok
}

// RecordPackageCheckpoint records a package's checkpoint and (if
// known) publishing transaction.
func (idx *Indices) RecordPackageCheckpoint(id sui.Address, cp uint64, prevTx string) error {
	idx.mu.Lock()
	idx.packageIndex[id.String()] = pkgIndexEntry{Checkpoint: cp, PreviousTxDigest: prevTx}
	idx.mu.Unlock()
	return idx.persist()
}

// LookupDynamicFields returns any previously recorded children of
// parent.
func (idx *Indices) LookupDynamicFields(parent sui.Address) []DynamicFieldEntry {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	entries := idx.dynamicFieldIndex[parent.String()]
	out := make([]DynamicFieldEntry, len(entries))
	copy(out, entries)
	return out
}

// RecordDynamicField appends one child discovery for parent.
func (idx *Indices) RecordDynamicField(parent sui.Address, entry DynamicFieldEntry) error {
	idx.mu.Lock()
	idx.dynamicFieldIndex[parent.String()] = append(idx.dynamicFieldIndex[parent.String()], entry)
	idx.mu.Unlock()
	return idx.persist()
}

// persist writes the full indices file atomically (temp + rename),
// mirroring the unified cache's own write discipline (internal/cache's
// Disk.writeShardFile).
func (idx *Indices) persist() error {
	idx.mu.Lock()
	f := indicesFile{
		ObjectIndex:       idx.objectIndex,
		TxIndex:           idx.txIndex,
		PackageIndex:      idx.packageIndex,
		DynamicFieldIndex: idx.dynamicFieldIndex,
	}
	idx.mu.Unlock()

	raw, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("provider: encode indices file: %w", err)
	}
	tmp, err := os.CreateTemp(idx.dir, "indices-*.tmp")
	if err != nil {
		return fmt.Errorf("provider: create temp indices file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), idx.filePath())
}
