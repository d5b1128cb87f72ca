package cache

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/gofrs/flock"
	"github.com/klauspost/compress/zstd"

	"github.com/erigontech/erigon-lib/log/v3"

	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"
)

// ErrReadOnly is returned by every write operation against a read-only
// cache.
var ErrReadOnly = errors.New("cache: cache opened read-only")

const shardCompressedSuffix = ".json.zst"
const shardSuffix = ".json"

// shardKey partitions the address space into 256 per-prefix shard
// files, keeping any one shard file small enough to decode entirely on
// a cold read.
func shardKey(a sui.Address) string {
	return fmt.Sprintf("%02x", a[0])
}

// Disk is the on-disk half of the unified cache: one JSON file per
// address-prefix shard, written atomically (temp file + rename) and
// optionally zstd-compressed for large bytecode payloads.
type Disk struct {
	dir      string
	readOnly bool
	compress bool

	mu    sync.Mutex
	index map[sui.Address]*indexEntry
}

type indexEntry struct {
	shard         string
	hasObject     bool
	objectVersion uint64
	hasPackage    bool
	packageVersion uint64
}

// OpenDisk scans dir for existing shard files, building the in-memory
// address → (shard, highest version) index. Corrupted or unparsable
// shard files are skipped with a warning, never aborting index
// construction.
func OpenDisk(dir string, readOnly bool, compress bool) (*Disk, error) {
	if !readOnly {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("cache: create cache dir: %w", err)
		}
	}
	d := &Disk{dir: dir, readOnly: readOnly, compress: compress, index: make(map[sui.Address]*indexEntry)}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return d, nil
		}
		return nil, fmt.Errorf("cache: read cache dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !isShardFile(name) {
			continue
		}
		shard := shardFromFilename(name)
		schema, err := d.loadShardFile(shard)
		if err != nil {
			log.Warn("[cache] skipping unreadable shard file", "shard", shard, "err", err)
			continue
		}
		d.indexShard(shard, schema)
	}
	return d, nil
}

func (d *Disk) indexShard(shard string, schema *fileSchema) {
	for idHex, version := range schema.ObjectVersions {
		id, err := sui.ParseAddress(idHex)
		if err != nil {
			continue
		}
		e := d.entryFor(id)
		e.shard = shard
		e.hasObject = true
		e.objectVersion = version
	}
	for idHex, version := range schema.PackageVersions {
		id, err := sui.ParseAddress(idHex)
		if err != nil {
			continue
		}
		e := d.entryFor(id)
		e.shard = shard
		e.hasPackage = true
		e.packageVersion = version
	}
}

func (d *Disk) entryFor(id sui.Address) *indexEntry {
	e, ok := d.index[id]
	if !ok {
		e = &indexEntry{}
		d.index[id] = e
	}
	return e
}

func isShardFile(name string) bool {
	return len(name) >= 5 && (name[len(name)-len(shardSuffix):] == shardSuffix ||
		len(name) >= len(shardCompressedSuffix) && name[len(name)-len(shardCompressedSuffix):] == shardCompressedSuffix)
}

func shardFromFilename(name string) string {
	name = filepath.Base(name)
	for _, suffix := range []string{shardCompressedSuffix, shardSuffix} {
		if len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix {
			return name[:len(name)-len(suffix)]
		}
	}
	return name
}

func (d *Disk) shardPath(shard string, compressed bool) string {
	if compressed {
		return filepath.Join(d.dir, shard+shardCompressedSuffix)
	}
	return filepath.Join(d.dir, shard+shardSuffix)
}

// loadShardFile reads and decodes one shard's JSON content, trying the
// compressed path first since a shard written with compression enabled
// never coexists with an uncompressed file of the same shard key.
func (d *Disk) loadShardFile(shard string) (*fileSchema, error) {
	raw, err := os.ReadFile(d.shardPath(shard, true))
	if err == nil {
		raw, err = zstdDecompress(raw)
		if err != nil {
			return nil, err
		}
	} else if os.IsNotExist(err) {
		raw, err = os.ReadFile(d.shardPath(shard, false))
		if err != nil {
			if os.IsNotExist(err) {
				return newFileSchema(), nil
			}
			return nil, err
		}
	} else {
		return nil, err
	}

	schema := newFileSchema()
	if len(bytes.TrimSpace(raw)) == 0 {
		return schema, nil
	}
	if err := json.Unmarshal(raw, schema); err != nil {
		return nil, fmt.Errorf("cache: decode shard %s: %w", shard, err)
	}
	return schema, nil
}

func zstdDecompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}

func zstdCompress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	out := enc.EncodeAll(data, nil)
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

// writeShardFile persists schema to its shard path atomically: write to
// a temp file in the same directory, then rename. An advisory flock
// guards against concurrent writers racing on the same shard from two
// processes.
func (d *Disk) writeShardFile(shard string, schema *fileSchema) error {
	if d.readOnly {
		return ErrReadOnly
	}
	lockPath := filepath.Join(d.dir, shard+".lock")
	fl := flock.New(lockPath)
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("cache: lock shard %s: %w", shard, err)
	}
	defer fl.Unlock()

	raw, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("cache: encode shard %s: %w", shard, err)
	}

	finalPath := d.shardPath(shard, d.compress)
	if d.compress {
		raw, err = zstdCompress(raw)
		if err != nil {
			return fmt.Errorf("cache: compress shard %s: %w", shard, err)
		}
	}

	tmp, err := os.CreateTemp(d.dir, shard+".tmp-*")
	if err != nil {
		return fmt.Errorf("cache: create temp shard file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("cache: write temp shard file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("cache: close temp shard file: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("cache: rename shard file: %w", err)
	}
	return nil
}

// GetObject returns the currently cached object for id, regardless of
// the version the caller ultimately wants; the caller (Manager) decides
// whether the returned version satisfies the request.
func (d *Disk) GetObject(id sui.Address) (VersionedObject, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.index[id]
	if !ok || !e.hasObject {
		return VersionedObject{}, false, nil
	}
	schema, err := d.loadShardFile(e.shard)
	if err != nil {
		return VersionedObject{}, false, err
	}
	rec, ok := schema.Objects[id.String()]
	if !ok {
		return VersionedObject{}, false, nil
	}
	obj, err := decodeObject(id, e.objectVersion, rec)
	if err != nil {
		return VersionedObject{}, false, err
	}
	return obj, true, nil
}

// PutObject writes v to disk unconditionally, overwriting any existing
// entry for its id; the monotonic-version no-op rule is Manager's
// responsibility.
func (d *Disk) PutObject(v VersionedObject, cachedAt int64) error {
	if d.readOnly {
		return ErrReadOnly
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	shard := shardKey(v.ID)
	schema, err := d.loadShardFile(shard)
	if err != nil {
		return err
	}
	idHex := v.ID.String()
	schema.Objects[idHex] = encodeObject(v)
	schema.ObjectTypes[idHex] = v.Type.String()
	schema.ObjectVersions[idHex] = v.Version
	schema.CachedAt = cachedAt

	if err := d.writeShardFile(shard, schema); err != nil {
		return err
	}
	e := d.entryFor(v.ID)
	e.shard = shard
	e.hasObject = true
	e.objectVersion = v.Version
	return nil
}

// GetPackage returns the currently cached package for id.
func (d *Disk) GetPackage(id sui.Address) (Package, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.index[id]
	if !ok || !e.hasPackage {
		return Package{}, false, nil
	}
	schema, err := d.loadShardFile(e.shard)
	if err != nil {
		return Package{}, false, err
	}
	rec, ok := schema.Packages[id.String()]
	if !ok {
		return Package{}, false, nil
	}
	pkg, err := decodePackage(id, e.packageVersion, rec)
	if err != nil {
		return Package{}, false, err
	}
	return pkg, true, nil
}

// PutPackage writes p to disk unconditionally.
func (d *Disk) PutPackage(p Package, cachedAt int64) error {
	if d.readOnly {
		return ErrReadOnly
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	shard := shardKey(p.ID)
	schema, err := d.loadShardFile(shard)
	if err != nil {
		return err
	}
	idHex := p.ID.String()
	schema.Packages[idHex] = encodePackage(p)
	schema.PackageVersions[idHex] = p.Version
	schema.CachedAt = cachedAt

	if err := d.writeShardFile(shard, schema); err != nil {
		return err
	}
	e := d.entryFor(p.ID)
	e.shard = shard
	e.hasPackage = true
	e.packageVersion = p.Version
	return nil
}

// DiskUsageBytes sums the size of every shard file on disk, for
// cache.Stats.
func (d *Disk) DiskUsageBytes() (int64, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	var total int64
	for _, e := range entries {
		if e.IsDir() || !isShardFile(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}
