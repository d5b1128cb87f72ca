// Package cache implements the unified cache: a content-addressed,
// versioned store for packages and objects shared by the historical
// state provider and the native function table.
package cache

import (
	"fmt"

	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"
)

// VersionedObject is one object at the version currently known to the
// cache: its type tag, BCS bytes, and owner.
type VersionedObject struct {
	ID      sui.Address
	Version uint64
	Type    sui.TypeTag
	Bytes   []byte
	Owner   sui.Owner
}

// Package is one Move package at the version currently known to the
// cache: its compiled modules by name, linkage table (runtime module
// address → storage address), and transitive dependency addresses.
type Package struct {
	ID           sui.Address
	Version      uint64
	Modules      map[string][]byte
	Linkage      map[sui.Address]sui.Address
	Dependencies []sui.Address
}

// typeTagJSON mirrors sui.TypeTag as a directly JSON-serializable tree,
// so a cache file round-trips a TypeTag exactly rather than only its
// rendered string.
type typeTagJSON struct {
	Kind   int          `json:"kind"`
	Vector *typeTagJSON `json:"vector,omitempty"`
	Struct *structTagJSON `json:"struct,omitempty"`
}

type structTagJSON struct {
	Address    string        `json:"address"`
	Module     string        `json:"module"`
	Name       string        `json:"name"`
	TypeParams []typeTagJSON `json:"type_params,omitempty"`
}

func toTypeTagJSON(t sui.TypeTag) typeTagJSON {
	switch t.Kind {
	case sui.KindVector:
		inner := toTypeTagJSON(*t.Vector)
		return typeTagJSON{Kind: int(t.Kind), Vector: &inner}
	case sui.KindStruct:
		s := structTagJSON{
			Address: t.Struct.Address.String(),
			Module:  t.Struct.Module,
			Name:    t.Struct.Name,
		}
		for _, tp := range t.Struct.TypeParams {
			s.TypeParams = append(s.TypeParams, toTypeTagJSON(tp))
		}
		return typeTagJSON{Kind: int(t.Kind), Struct: &s}
	default:
		return typeTagJSON{Kind: int(t.Kind)}
	}
}

func (j typeTagJSON) toTypeTag() (sui.TypeTag, error) {
	kind := sui.TagKind(j.Kind)
	switch kind {
	case sui.KindVector:
		if j.Vector == nil {
			return sui.TypeTag{}, fmt.Errorf("cache: vector type tag missing inner element")
		}
		inner, err := j.Vector.toTypeTag()
		if err != nil {
			return sui.TypeTag{}, err
		}
		return sui.VectorOf(inner), nil
	case sui.KindStruct:
		if j.Struct == nil {
			return sui.TypeTag{}, fmt.Errorf("cache: struct type tag missing struct payload")
		}
		addr, err := sui.ParseAddress(j.Struct.Address)
		if err != nil {
			return sui.TypeTag{}, err
		}
		params := make([]sui.TypeTag, len(j.Struct.TypeParams))
		for i, tp := range j.Struct.TypeParams {
			pt, err := tp.toTypeTag()
			if err != nil {
				return sui.TypeTag{}, err
			}
			params[i] = pt
		}
		return sui.StructOf(sui.StructTag{Address: addr, Module: j.Struct.Module, Name: j.Struct.Name, TypeParams: params}), nil
	default:
		return sui.Primitive(kind), nil
	}
}

// ownerJSON mirrors sui.Owner for JSON round-tripping.
type ownerJSON struct {
	Kind                 int    `json:"kind"`
	AddressOwner         string `json:"address_owner,omitempty"`
	ObjectOwner          string `json:"object_owner,omitempty"`
	InitialSharedVersion uint64 `json:"initial_shared_version,omitempty"`
}

func toOwnerJSON(o sui.Owner) ownerJSON {
	oj := ownerJSON{Kind: int(o.Kind)}
	switch o.Kind {
	case sui.OwnerAddress:
		oj.AddressOwner = o.AddressOwner.String()
	case sui.OwnerObject:
		oj.ObjectOwner = o.ObjectOwner.String()
	case sui.OwnerShared:
		oj.InitialSharedVersion = o.InitialSharedVersion
	}
	return oj
}

func (oj ownerJSON) toOwner() (sui.Owner, error) {
	switch sui.OwnerKind(oj.Kind) {
	case sui.OwnerAddress:
		a, err := sui.ParseAddress(oj.AddressOwner)
		if err != nil {
			return sui.Owner{}, err
		}
		return sui.NewAddressOwner(a), nil
	case sui.OwnerObject:
		a, err := sui.ParseAddress(oj.ObjectOwner)
		if err != nil {
			return sui.Owner{}, err
		}
		return sui.NewObjectOwner(a), nil
	case sui.OwnerShared:
		return sui.NewSharedOwner(oj.InitialSharedVersion), nil
	default:
		return sui.ImmutableOwner, nil
	}
}

// objectRecord is one object entry in a shard file.
type objectRecord struct {
	Type  typeTagJSON `json:"type"`
	Bytes []byte      `json:"bytes"`
	Owner ownerJSON   `json:"owner"`
}

func encodeObject(v VersionedObject) objectRecord {
	return objectRecord{Type: toTypeTagJSON(v.Type), Bytes: v.Bytes, Owner: toOwnerJSON(v.Owner)}
}

func decodeObject(id sui.Address, version uint64, rec objectRecord) (VersionedObject, error) {
	tag, err := rec.Type.toTypeTag()
	if err != nil {
		return VersionedObject{}, err
	}
	owner, err := rec.Owner.toOwner()
	if err != nil {
		return VersionedObject{}, err
	}
	return VersionedObject{ID: id, Version: version, Type: tag, Bytes: rec.Bytes, Owner: owner}, nil
}

// packageRecord is one package entry in a shard file.
type packageRecord struct {
	Modules      map[string][]byte `json:"modules"`
	Linkage      map[string]string `json:"linkage"`
	Dependencies []string          `json:"dependencies"`
}

func encodePackage(p Package) packageRecord {
	rec := packageRecord{Modules: p.Modules}
	if len(p.Linkage) > 0 {
		rec.Linkage = make(map[string]string, len(p.Linkage))
		for runtime, storage := range p.Linkage {
			rec.Linkage[runtime.String()] = storage.String()
		}
	}
	for _, dep := range p.Dependencies {
		rec.Dependencies = append(rec.Dependencies, dep.String())
	}
	return rec
}

func decodePackage(id sui.Address, version uint64, rec packageRecord) (Package, error) {
	p := Package{ID: id, Version: version, Modules: rec.Modules}
	if len(rec.Linkage) > 0 {
		p.Linkage = make(map[sui.Address]sui.Address, len(rec.Linkage))
		for runtimeHex, storageHex := range rec.Linkage {
			runtime, err := sui.ParseAddress(runtimeHex)
			if err != nil {
				return Package{}, err
			}
			storage, err := sui.ParseAddress(storageHex)
			if err != nil {
				return Package{}, err
			}
			p.Linkage[runtime] = storage
		}
	}
	for _, depHex := range rec.Dependencies {
		dep, err := sui.ParseAddress(depHex)
		if err != nil {
			return Package{}, err
		}
		p.Dependencies = append(p.Dependencies, dep)
	}
	return p, nil
}

// fileSchema is the on-disk JSON shape of one shard file: one JSON
// object per shard with fields packages, objects, object_types,
// object_versions, package_versions, cached_at.
type fileSchema struct {
	Packages        map[string]packageRecord `json:"packages"`
	Objects         map[string]objectRecord  `json:"objects"`
	ObjectTypes     map[string]string        `json:"object_types"`
	ObjectVersions  map[string]uint64        `json:"object_versions"`
	PackageVersions map[string]uint64        `json:"package_versions"`
	CachedAt        int64                    `json:"cached_at"`
}

func newFileSchema() *fileSchema {
	return &fileSchema{
		Packages:        make(map[string]packageRecord),
		Objects:         make(map[string]objectRecord),
		ObjectTypes:     make(map[string]string),
		ObjectVersions:  make(map[string]uint64),
		PackageVersions: make(map[string]uint64),
	}
}
