package cache

import (
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"
)

const defaultLRUSize = 4096

// Manager implements the unified cache's public contract: get_object,
// put_object, get_package, get_package_latest, put_package, flush. It
// keeps exactly the highest version seen per id — a put with a version
// ≤ the stored version is a no-op, a strictly greater version replaces
// the entry — fronted by an in-memory LRU over the on-disk shard store.
type Manager struct {
	disk *Disk

	mu              sync.Mutex
	objectVersions  map[sui.Address]uint64
	packageVersions map[sui.Address]uint64

	objLRU *lru.Cache[sui.Address, VersionedObject]
	pkgLRU *lru.Cache[sui.Address, Package]

	packageCount atomic.Int64
	objectCount  atomic.Int64
	nowFn        func() int64
}

// Option configures a Manager at construction time.
type Option func(*Manager)

// WithLRUSize overrides the default LRU capacity for both the object and
// package front caches.
func WithLRUSize(size int) Option {
	return func(m *Manager) {
		m.objLRU, _ = lru.New[sui.Address, VersionedObject](size)
		m.pkgLRU, _ = lru.New[sui.Address, Package](size)
	}
}

// WithClock overrides the cached_at timestamp source; tests use this to
// get deterministic shard contents instead of the wall clock.
func WithClock(now func() int64) Option {
	return func(m *Manager) { m.nowFn = now }
}

// NewManager opens (or creates) the on-disk cache at dir and returns a
// Manager fronted by an LRU of the default size.
func NewManager(dir string, readOnly bool, compress bool, opts ...Option) (*Manager, error) {
	disk, err := OpenDisk(dir, readOnly, compress)
	if err != nil {
		return nil, err
	}
	objLRU, _ := lru.New[sui.Address, VersionedObject](defaultLRUSize)
	pkgLRU, _ := lru.New[sui.Address, Package](defaultLRUSize)
	m := &Manager{
		disk:            disk,
		objectVersions:  make(map[sui.Address]uint64),
		packageVersions: make(map[sui.Address]uint64),
		objLRU:          objLRU,
		pkgLRU:          pkgLRU,
	}
	for id, e := range disk.index {
		if e.hasObject {
			m.objectVersions[id] = e.objectVersion
			m.objectCount.Add(1)
		}
		if e.hasPackage {
			m.packageVersions[id] = e.packageVersion
			m.packageCount.Add(1)
		}
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *Manager) now() int64 {
	if m.nowFn != nil {
		return m.nowFn()
	}
	return 0
}

// GetObject implements get_object(id, version). A miss here (wrong
// version or absent entirely) is the caller's signal to fall through to
// the next source in the preference order.
func (m *Manager) GetObject(id sui.Address, version uint64) (VersionedObject, bool) {
	if v, ok := m.objLRU.Get(id); ok {
		if v.Version == version {
			return v, true
		}
		return VersionedObject{}, false
	}
	v, ok, err := m.disk.GetObject(id)
	if err != nil || !ok {
		return VersionedObject{}, false
	}
	m.objLRU.Add(id, v)
	if v.Version != version {
		return VersionedObject{}, false
	}
	return v, true
}

// GetObjectAny returns whatever version of id is currently cached,
// regardless of the caller's target version — the cache's contribution
// to the provider's fall-back-to-latest-available-version downgrade
// path, mirroring GetPackageLatest's relationship to GetPackage.
func (m *Manager) GetObjectAny(id sui.Address) (VersionedObject, bool) {
	if v, ok := m.objLRU.Get(id); ok {
		return v, true
	}
	v, ok, err := m.disk.GetObject(id)
	if err != nil || !ok {
		return VersionedObject{}, false
	}
	m.objLRU.Add(id, v)
	return v, true
}

// PutObject implements put_object: no-op if v.Version is not strictly
// greater than the stored version for v.ID.
func (m *Manager) PutObject(v VersionedObject) error {
	m.mu.Lock()
	existing, ok := m.objectVersions[v.ID]
	if ok && v.Version <= existing {
		m.mu.Unlock()
		return nil
	}
	m.objectVersions[v.ID] = v.Version
	isNew := !ok
	m.mu.Unlock()

	if err := m.disk.PutObject(v, m.now()); err != nil {
		return err
	}
	m.objLRU.Add(v.ID, v)
	if isNew {
		m.objectCount.Add(1)
	}
	return nil
}

// GetPackage implements get_package(id, version): a hit requires the
// cached version to equal the requested one.
func (m *Manager) GetPackage(id sui.Address, version uint64) (Package, bool) {
	p, ok := m.getCachedPackage(id)
	if !ok || p.Version != version {
		return Package{}, false
	}
	return p, true
}

// GetPackageLatest implements get_package_latest(id): returns whatever
// version is currently cached, regardless of the caller's target
// version.
func (m *Manager) GetPackageLatest(id sui.Address) (Package, bool) {
	return m.getCachedPackage(id)
}

func (m *Manager) getCachedPackage(id sui.Address) (Package, bool) {
	if p, ok := m.pkgLRU.Get(id); ok {
		return p, true
	}
	p, ok, err := m.disk.GetPackage(id)
	if err != nil || !ok {
		return Package{}, false
	}
	m.pkgLRU.Add(id, p)
	return p, true
}

// PutPackage implements put_package, with the same monotonic-version
// no-op rule as PutObject.
func (m *Manager) PutPackage(p Package) error {
	m.mu.Lock()
	existing, ok := m.packageVersions[p.ID]
	if ok && p.Version <= existing {
		m.mu.Unlock()
		return nil
	}
	m.packageVersions[p.ID] = p.Version
	isNew := !ok
	m.mu.Unlock()

	if err := m.disk.PutPackage(p, m.now()); err != nil {
		return err
	}
	m.pkgLRU.Add(p.ID, p)
	if isNew {
		m.packageCount.Add(1)
	}
	return nil
}

// Flush implements flush(): the cache is write-through (every Put is
// already durably persisted before it returns), so Flush only rejects
// the call on a read-only cache and otherwise returns immediately.
func (m *Manager) Flush() error {
	if m.disk.readOnly {
		return ErrReadOnly
	}
	return nil
}

// Stats is a read-only snapshot of the cache's current size.
type Stats struct {
	PackageCount int64
	ObjectCount  int64
	DiskBytes    int64
}

// Stats reports the cache's current package/object counts and on-disk
// footprint.
func (m *Manager) Stats() (Stats, error) {
	bytes, err := m.disk.DiskUsageBytes()
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		PackageCount: m.packageCount.Load(),
		ObjectCount:  m.objectCount.Load(),
		DiskBytes:    bytes,
	}, nil
}
