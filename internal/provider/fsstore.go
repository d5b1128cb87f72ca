package provider

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/cache"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"
)

// FSObjectStore is the local filesystem object store, content-addressed
// by (id, version). Unlike the unified cache, it keeps one file per
// version, so it is the actual source of historical-version truth once
// an item has fallen out of the cache's single-latest-version window.
type FSObjectStore struct {
	dir string
	mu  sync.Mutex
}

// NewFSObjectStore opens (creating if absent) a local object store
// rooted at dir.
func NewFSObjectStore(dir string) (*FSObjectStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("provider: create object store dir: %w", err)
	}
	return &FSObjectStore{dir: dir}, nil
}

func (s *FSObjectStore) path(id sui.Address, version uint64) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s@%d.json", id.String(), version))
}

// Get returns the stored object at exactly (id, version), or
// ErrNotFound.
func (s *FSObjectStore) Get(id sui.Address, version uint64) (cache.VersionedObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := os.ReadFile(s.path(id, version))
	if err != nil {
		if os.IsNotExist(err) {
			return cache.VersionedObject{}, ErrNotFound
		}
		return cache.VersionedObject{}, err
	}
	var rec fsObjectRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return cache.VersionedObject{}, fmt.Errorf("provider: decode object store entry: %w", err)
	}
	return rec.toVersionedObject(id, version)
}

// Put records v at its exact (id, version) path. Object bytes and type
// tag are immutable once recorded, so an existing file is never
// overwritten with different content; Put is idempotent for repeated
// writes of the same (id, version).
func (s *FSObjectStore) Put(v cache.VersionedObject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := s.path(v.ID, v.Version)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	rec := fsObjectRecordFrom(v)
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("provider: encode object store entry: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, "obj-*.tmp")
	if err != nil {
		return fmt.Errorf("provider: create temp object file: %w", err)
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
	return os.Rename(tmp.Name(), path)
}

// fsObjectRecord mirrors the object-store file format. The type tag is
// kept as a structural JSON tree rather than a rendered string — step
// 8's package dependency walk needs to recover the package addresses
// embedded in a type tag, which a rendered string can't be parsed back
// out of without reimplementing the Move type grammar.
type fsObjectRecord struct {
	Type        fsTypeTag `json:"type"`
	Bytes       []byte    `json:"bytes"`
	IsShared    bool      `json:"is_shared"`
	IsImmutable bool      `json:"is_immutable"`
}

type fsTypeTag struct {
	Kind       int         `json:"kind"`
	Vector     *fsTypeTag  `json:"vector,omitempty"`
	Address    string      `json:"address,omitempty"`
	Module     string      `json:"module,omitempty"`
	Name       string      `json:"name,omitempty"`
	TypeParams []fsTypeTag `json:"type_params,omitempty"`
}

func toFSTypeTag(t sui.TypeTag) fsTypeTag {
	switch t.Kind {
	case sui.KindVector:
		inner := toFSTypeTag(*t.Vector)
		return fsTypeTag{Kind: int(t.Kind), Vector: &inner}
	case sui.KindStruct:
		out := fsTypeTag{Kind: int(t.Kind), Address: t.Struct.Address.String(), Module: t.Struct.Module, Name: t.Struct.Name}
		for _, tp := range t.Struct.TypeParams {
			out.TypeParams = append(out.TypeParams, toFSTypeTag(tp))
		}
		return out
	default:
		return fsTypeTag{Kind: int(t.Kind)}
	}
}

func (j fsTypeTag) toTypeTag() (sui.TypeTag, error) {
	kind := sui.TagKind(j.Kind)
	switch kind {
	case sui.KindVector:
		if j.Vector == nil {
			return sui.TypeTag{}, fmt.Errorf("provider: vector type tag missing inner element")
		}
		inner, err := j.Vector.toTypeTag()
		if err != nil {
			return sui.TypeTag{}, err
		}
		return sui.VectorOf(inner), nil
	case sui.KindStruct:
		addr, err := sui.ParseAddress(j.Address)
		if err != nil {
			return sui.TypeTag{}, fmt.Errorf("provider: decode struct address: %w", err)
		}
		tag := sui.StructTag{Address: addr, Module: j.Module, Name: j.Name}
		for _, tp := range j.TypeParams {
			inner, err := tp.toTypeTag()
			if err != nil {
				return sui.TypeTag{}, err
			}
			tag.TypeParams = append(tag.TypeParams, inner)
		}
		return sui.StructOf(tag), nil
	default:
		return sui.TypeTag{Kind: kind}, nil
	}
}

func fsObjectRecordFrom(v cache.VersionedObject) fsObjectRecord {
	rec := fsObjectRecord{Type: toFSTypeTag(v.Type), Bytes: v.Bytes}
	switch v.Owner.Kind {
	case sui.OwnerShared:
		rec.IsShared = true
	case sui.OwnerImmutable:
		rec.IsImmutable = true
	}
	return rec
}

func (r fsObjectRecord) toVersionedObject(id sui.Address, version uint64) (cache.VersionedObject, error) {
	owner := sui.Owner{}
	switch {
	case r.IsShared:
		owner = sui.NewSharedOwner(version)
	case r.IsImmutable:
		owner = sui.ImmutableOwner
	}
	typ, err := r.Type.toTypeTag()
	if err != nil {
		return cache.VersionedObject{}, err
	}
	return cache.VersionedObject{ID: id, Version: version, Type: typ, Bytes: r.Bytes, Owner: owner}, nil
}
