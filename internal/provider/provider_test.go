package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/cache"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/config"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"
)

// fakeTxSource, fakeObjectSource, fakePackageSource, fakeCheckpointSource
// and fakeEpochSource are in-memory stand-ins for the real remote
// sources, following the same fake-over-live-service testing discipline
// the vmhost package uses for its VM.

type fakeTxSource struct {
	byDigest map[sui.Digest]TransactionPayload
}

func (f *fakeTxSource) GetTransaction(_ context.Context, digest sui.Digest) (TransactionPayload, error) {
	tx, ok := f.byDigest[digest]
	if !ok {
		return TransactionPayload{}, ErrNotFound
	}
	return tx, nil
}

type fakeObjectSource struct {
	objects map[string]cache.VersionedObject
}

func newFakeObjectSource() *fakeObjectSource {
	return &fakeObjectSource{objects: make(map[string]cache.VersionedObject)}
}

func (f *fakeObjectSource) put(v cache.VersionedObject) {
	f.objects[objectKey(v.ID, v.Version)] = v
}

func (f *fakeObjectSource) GetObject(_ context.Context, id sui.Address, version uint64) (cache.VersionedObject, error) {
	v, ok := f.objects[objectKey(id, version)]
	if !ok {
		return cache.VersionedObject{}, ErrNotFound
	}
	return v, nil
}

type fakePackageSource struct {
	packages map[sui.Address]cache.Package
}

func (f *fakePackageSource) GetPackage(_ context.Context, id sui.Address, _ *uint64) (cache.Package, error) {
	pkg, ok := f.packages[id]
	if !ok {
		return cache.Package{}, ErrNotFound
	}
	return pkg, nil
}

type fakeCheckpointSource struct {
	bySequence map[uint64]CheckpointPayload
}

func (f *fakeCheckpointSource) GetCheckpoint(_ context.Context, sequence uint64) (CheckpointPayload, error) {
	cp, ok := f.bySequence[sequence]
	if !ok {
		return CheckpointPayload{}, ErrNotFound
	}
	return cp, nil
}

type fakeEpochSource struct {
	byEpoch map[uint64]EpochMeta
}

func (f *fakeEpochSource) GetEpoch(_ context.Context, epoch uint64) (EpochMeta, error) {
	meta, ok := f.byEpoch[epoch]
	if !ok {
		return EpochMeta{}, ErrNotFound
	}
	return meta, nil
}

func testProvider(t *testing.T, tx TxSource, objectSrc ObjectSource, pkgSrc PackageSource, cpSrc CheckpointSource, epochSrc EpochSource) *Provider {
	t.Helper()
	dir := t.TempDir()
	mgr, err := cache.NewManager(dir+"/cache", false, false)
	require.NoError(t, err)
	store, err := NewFSObjectStore(dir + "/objects")
	require.NoError(t, err)
	idx, err := OpenIndices(dir + "/indices")
	require.NoError(t, err)

	var objects []ObjectSource
	if objectSrc != nil {
		objects = []ObjectSource{objectSrc}
	}
	var packages []PackageSource
	if pkgSrc != nil {
		packages = []PackageSource{pkgSrc}
	}

	cfg := config.Default()
	return New(cfg, mgr, store, idx, cpSrc, tx, objects, packages, nil, epochSrc)
}

func sampleCoin(id sui.Address, version uint64) cache.VersionedObject {
	return cache.VersionedObject{
		ID:      id,
		Version: version,
		Type:    sui.StructOf(sui.StructTag{Address: sui.FrameworkAddress, Module: "coin", Name: "Coin"}),
		Bytes:   []byte("coin-bytes"),
		Owner:   sui.NewAddressOwner(sui.MustParseAddress("0xdead")),
	}
}

func TestFetchReplayStateResolvesInputsFromObjectSource(t *testing.T) {
	digest, err := sui.ParseDigest("0x1")
	require.NoError(t, err)
	obj := sui.MustParseAddress("0xaaa1")

	objSrc := newFakeObjectSource()
	objSrc.put(sampleCoin(obj, 3))

	tx := &fakeTxSource{byDigest: map[sui.Digest]TransactionPayload{
		digest: {
			Digest: digest,
			Sender: sui.MustParseAddress("0x5e0d"),
			Inputs: []ObjectRef{{ID: obj, Version: 3}},
		},
	}}

	p := testProvider(t, tx, objSrc, nil, &fakeCheckpointSource{}, nil)
	state, err := p.FetchReplayState(context.Background(), digest)
	require.NoError(t, err)

	got, ok := state.Objects[obj]
	require.True(t, ok)
	require.EqualValues(t, 3, got.Version)
	require.Empty(t, state.Diagnostics)
}

func TestFetchReplayStateDowngradesOnMissingExactVersion(t *testing.T) {
	digest, err := sui.ParseDigest("0x2")
	require.NoError(t, err)
	obj := sui.MustParseAddress("0xaaa2")

	objSrc := newFakeObjectSource()
	objSrc.put(sampleCoin(obj, 1)) // only v1 is ever available anywhere

	tx := &fakeTxSource{byDigest: map[sui.Digest]TransactionPayload{
		digest: {
			Digest: digest,
			Inputs: []ObjectRef{{ID: obj, Version: 5}},
		},
	}}

	p := testProvider(t, tx, objSrc, nil, &fakeCheckpointSource{}, nil)
	// Seed the cache with the only version ever observed, so the
	// downgrade fallback (GetObjectAny) has something to return once
	// the exact-version fetch from objSrc also misses.
	require.NoError(t, p.Cache.PutObject(sampleCoin(obj, 1)))

	state, err := p.FetchReplayState(context.Background(), digest)
	require.NoError(t, err)

	got, ok := state.Objects[obj]
	require.True(t, ok)
	require.EqualValues(t, 1, got.Version)
	require.Len(t, state.Diagnostics, 1)
}

func TestFetchReplayStateReportsGapOnUnresolvableObject(t *testing.T) {
	digest, err := sui.ParseDigest("0x3")
	require.NoError(t, err)
	obj := sui.MustParseAddress("0xaaa3")

	tx := &fakeTxSource{byDigest: map[sui.Digest]TransactionPayload{
		digest: {Digest: digest, Inputs: []ObjectRef{{ID: obj, Version: 9}}},
	}}

	p := testProvider(t, tx, newFakeObjectSource(), nil, &fakeCheckpointSource{}, nil)
	state, err := p.FetchReplayState(context.Background(), digest)
	require.NoError(t, err)

	_, ok := state.Objects[obj]
	require.False(t, ok)
	require.Len(t, state.Diagnostics, 1)
}

func TestFetchReplayStateSynthesizesSystemObjectsByDefault(t *testing.T) {
	digest, err := sui.ParseDigest("0x4")
	require.NoError(t, err)
	ts := uint64(1234)

	tx := &fakeTxSource{byDigest: map[sui.Digest]TransactionPayload{
		digest: {Digest: digest, TimestampMs: &ts},
	}}

	p := testProvider(t, tx, newFakeObjectSource(), nil, &fakeCheckpointSource{}, nil)
	state, err := p.FetchReplayState(context.Background(), digest)
	require.NoError(t, err)

	clock, ok := state.Objects[ClockObjectID]
	require.True(t, ok)
	require.True(t, clock.Owner.IsShared())

	_, ok = state.Objects[RandomObjectID]
	require.True(t, ok)
}

func TestFetchReplayStateWalksPackageDependenciesFromMoveCall(t *testing.T) {
	digest, err := sui.ParseDigest("0x5")
	require.NoError(t, err)
	pkgA := sui.MustParseAddress("0xaaa5")
	pkgB := sui.MustParseAddress("0xbbb5")

	pkgSrc := &fakePackageSource{packages: map[sui.Address]cache.Package{
		pkgA: {ID: pkgA, Version: 1, Dependencies: []sui.Address{pkgB}},
		pkgB: {ID: pkgB, Version: 1},
	}}

	tx := &fakeTxSource{byDigest: map[sui.Digest]TransactionPayload{
		digest: {
			Digest:   digest,
			Commands: []Command{{Kind: CommandMoveCall, Package: pkgA}},
		},
	}}

	p := testProvider(t, tx, newFakeObjectSource(), pkgSrc, &fakeCheckpointSource{}, nil)
	state, err := p.FetchReplayState(context.Background(), digest)
	require.NoError(t, err)

	require.Contains(t, state.Packages, pkgA)
	require.Contains(t, state.Packages, pkgB)
}

func TestFetchReplayStateResolvesEpochMetadata(t *testing.T) {
	digest, err := sui.ParseDigest("0x6")
	require.NoError(t, err)
	refGasPrice := uint64(1000)

	epochSrc := &fakeEpochSource{byEpoch: map[uint64]EpochMeta{
		7: {ProtocolVersion: 42, ReferenceGasPrice: &refGasPrice},
	}}
	tx := &fakeTxSource{byDigest: map[sui.Digest]TransactionPayload{
		digest: {Digest: digest, Epoch: 7},
	}}

	p := testProvider(t, tx, newFakeObjectSource(), nil, &fakeCheckpointSource{}, epochSrc)
	state, err := p.FetchReplayState(context.Background(), digest)
	require.NoError(t, err)

	require.EqualValues(t, 42, state.ProtocolVersion)
	require.NotNil(t, state.ReferenceGasPrice)
	require.EqualValues(t, 1000, *state.ReferenceGasPrice)
}

func TestFetchReplayStateIngestsCheckpointBundledObjectsAndPackages(t *testing.T) {
	digest, err := sui.ParseDigest("0x7")
	require.NoError(t, err)
	checkpointSeq := uint64(100)
	bundled := sui.MustParseAddress("0xaaa7")
	bundledPkg := sui.MustParseAddress("0xbbb7")

	cpSrc := &fakeCheckpointSource{bySequence: map[uint64]CheckpointPayload{
		checkpointSeq: {
			Sequence: checkpointSeq,
			Objects:  []cache.VersionedObject{sampleCoin(bundled, 2)},
			Packages: []cache.Package{{ID: bundledPkg, Version: 1}},
		},
	}}

	tx := &fakeTxSource{byDigest: map[sui.Digest]TransactionPayload{
		digest: {Digest: digest, Checkpoint: &checkpointSeq},
	}}

	p := testProvider(t, tx, newFakeObjectSource(), nil, cpSrc, nil)
	state, err := p.FetchReplayState(context.Background(), digest)
	require.NoError(t, err)

	got, ok := state.Objects[bundled]
	require.True(t, ok)
	require.EqualValues(t, 2, got.Version)

	cached, ok := p.Cache.GetPackageLatest(bundledPkg)
	require.True(t, ok)
	require.EqualValues(t, 1, cached.Version)
}

func TestFetchObjectsVersionedSkipsUnresolvableRefs(t *testing.T) {
	objSrc := newFakeObjectSource()
	present := sui.MustParseAddress("0xaaa8")
	objSrc.put(sampleCoin(present, 1))
	missing := sui.MustParseAddress("0xbbb8")

	p := testProvider(t, &fakeTxSource{}, objSrc, nil, &fakeCheckpointSource{}, nil)
	out, err := p.FetchObjectsVersioned(context.Background(), []ObjectRef{
		{ID: present, Version: 1},
		{ID: missing, Version: 1},
	})
	require.NoError(t, err)
	require.Contains(t, out, present)
	require.NotContains(t, out, missing)
}

func TestIngestPackagesFromCheckpointRangeAccumulatesCounts(t *testing.T) {
	pkg1 := sui.MustParseAddress("0xaaa9")
	pkg2 := sui.MustParseAddress("0xbbb9")

	cpSrc := &fakeCheckpointSource{bySequence: map[uint64]CheckpointPayload{
		10: {Sequence: 10, Packages: []cache.Package{{ID: pkg1, Version: 1}}},
		11: {Sequence: 11, Packages: []cache.Package{{ID: pkg2, Version: 1}}},
	}}

	p := testProvider(t, &fakeTxSource{}, newFakeObjectSource(), nil, cpSrc, nil)
	total, err := p.IngestPackagesFromCheckpointRange(context.Background(), 10, 2)
	require.NoError(t, err)
	require.Equal(t, 2, total)

	_, ok := p.Cache.GetPackageLatest(pkg1)
	require.True(t, ok)
	_, ok = p.Cache.GetPackageLatest(pkg2)
	require.True(t, ok)
}
