package provider

import (
	"context"
	"fmt"

	"github.com/erigontech/erigon-lib/log/v3"

	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/cache"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/config"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"
)

// Provider is the historical state provider: it composes the cache,
// the local filesystem store/indices, and the configured remote
// sources behind FetchReplayState's strict preference order.
type Provider struct {
	Cfg config.Config

	Cache       *cache.Manager
	ObjectStore *FSObjectStore
	Indices     *Indices
	Checkpoints *CheckpointFetcher

	TxSource       TxSource
	ObjectSources  []ObjectSource // tried in order after cache+fsstore
	PackageSources []PackageSource
	DynamicFields  DynamicFieldSource
	Epochs         EpochSource
}

// New builds a Provider wired to the given cache manager, local store,
// indices, and remote sources.
func New(cfg config.Config, c *cache.Manager, store *FSObjectStore, idx *Indices, checkpoints CheckpointSource, tx TxSource, objects []ObjectSource, packages []PackageSource, df DynamicFieldSource, epochs EpochSource) *Provider {
	return &Provider{
		Cfg:            cfg,
		Cache:          c,
		ObjectStore:    store,
		Indices:        idx,
		Checkpoints:    NewCheckpointFetcher(checkpoints),
		TxSource:       tx,
		ObjectSources:  objects,
		PackageSources: packages,
		DynamicFields:  df,
		Epochs:         epochs,
	}
}

// FetchReplayState assembles the complete input bundle one replay
// needs: the transaction, its checkpoint, every object and package it
// touches at the right version, and the epoch/gas metadata in effect
// at the time, each resolved through the provider's source preference
// order.
func (p *Provider) FetchReplayState(ctx context.Context, digest sui.Digest) (ReplayState, error) {
	gaps := NewGapReporter()

	// Step 1: fetch the transaction payload.
	tx, err := p.TxSource.GetTransaction(ctx, digest)
	if err != nil {
		return ReplayState{}, fmt.Errorf("provider: fetch transaction %s: %w", digest, err)
	}

	// Step 2: fetch the checkpoint payload (if known) and merge its
	// bundled objects into the local view.
	var checkpointObjects []cache.VersionedObject
	var checkpointPackages []cache.Package
	if tx.Checkpoint != nil {
		cp, err := p.Checkpoints.Get(ctx, *tx.Checkpoint)
		if err != nil {
			gaps.Report(Gap{Kind: GapCheckpointUnavailable, Message: fmt.Sprintf("checkpoint %d unavailable: %v", *tx.Checkpoint, err)})
		} else {
			checkpointObjects = cp.Objects
			checkpointPackages = cp.Packages
		}
	}

	// Step 3: build historical_versions as the union of every pinned
	// reference.
	historicalVersions := make(map[sui.Address]uint64)
	for _, ref := range tx.Inputs {
		historicalVersions[ref.ID] = ref.Version
	}
	for _, ref := range tx.UnchangedLoadedRuntimeObjects {
		historicalVersions[ref.ID] = ref.Version
	}
	for _, ref := range tx.ChangedObjects {
		historicalVersions[ref.ID] = ref.Version
	}
	for _, ref := range tx.UnchangedConsensusObjects {
		historicalVersions[ref.ID] = ref.Version
	}
	for _, obj := range checkpointObjects {
		historicalVersions[obj.ID] = obj.Version
	}

	// Step 4: opportunistically ingest the checkpoint's package and
	// object lists into the cache/indices.
	if tx.Checkpoint != nil {
		for _, obj := range checkpointObjects {
			_ = p.Cache.PutObject(obj)
		}
		for _, pkg := range checkpointPackages {
			_ = p.Cache.PutPackage(pkg)
			_ = p.Indices.RecordPackageCheckpoint(pkg.ID, *tx.Checkpoint, "")
		}
	}

	objects := make(map[sui.Address]cache.VersionedObject)
	for _, obj := range checkpointObjects {
		objects[obj.ID] = obj
	}

	// Step 5: dynamic-field BFS prefetch.
	if p.Cfg.PrefetchDynamicFields && p.DynamicFields != nil {
		roots := make([]sui.Address, 0, len(historicalVersions))
		for id := range historicalVersions {
			roots = append(roots, id)
		}
		depth := int(p.Cfg.DFDepth)
		limit := int(p.Cfg.DFLimit)
		children, err := PrefetchDynamicFields(ctx, p.DynamicFields, roots, depth, limit)
		if err != nil {
			log.Warn("[provider] dynamic field prefetch error", "digest", digest.String(), "err", err)
		}
		for _, child := range children {
			historicalVersions[child.ID] = child.Version
			objects[child.ID] = child
		}
	}

	// Step 6: fetch every (id, version) via the source preference
	// order, falling back to the latest available version on a miss.
	for id, version := range historicalVersions {
		if _, ok := objects[id]; ok {
			continue
		}
		obj, downgraded, err := p.fetchObjectVersioned(ctx, id, version)
		if err != nil {
			gaps.Report(Gap{Kind: GapObjectMissing, ID: id, Wanted: version, Message: err.Error()})
			continue
		}
		if downgraded {
			gaps.Report(Gap{Kind: GapObjectDowngraded, ID: id, Wanted: version, Got: obj.Version, Message: fmt.Sprintf("object %s: wanted v%d, got v%d", id, version, obj.Version)})
		}
		objects[id] = obj
		_ = p.Cache.PutObject(obj)
	}

	// Step 7: synthesize system objects.
	if p.Cfg.AutoSystemObjects {
		ts := uint64(0)
		if tx.TimestampMs != nil {
			ts = *tx.TimestampMs
		}
		cp := uint64(0)
		if tx.Checkpoint != nil {
			cp = *tx.Checkpoint
		}
		SynthesizeSystemObjects(objects, ts, cp)
	}

	// Step 8: collect package ids and walk dependencies transitively.
	packageIDs := PackageIDsFromCommands(tx.Commands)
	seen := make(map[sui.Address]bool)
	for _, id := range packageIDs {
		seen[id] = true
	}
	for _, obj := range objects {
		for _, id := range obj.Type.PackageAddresses(nil) {
			if !seen[id] {
				seen[id] = true
				packageIDs = append(packageIDs, id)
			}
		}
	}

	packages, err := WalkPackageDependencies(ctx, p.cachingPackageSource(), packageIDs, defaultMaxPackageDepth)
	if err != nil {
		return ReplayState{}, fmt.Errorf("provider: fetch packages: %w", err)
	}

	// Step 9: step 8 fetches every package at its latest version and
	// never pins one to a historical version, with or without a
	// downgrade; a downgrade in step 6 is only logged here.
	if gaps.AnyDowngrade() {
		log.Warn("[provider] object downgrade recorded; package versions are not pinned", "digest", digest.String())
	}

	// Step 10: resolve epoch metadata.
	var protocolVersion uint64
	var refGasPrice *uint64
	if tx.Epoch != 0 && p.Epochs != nil {
		meta, err := p.Epochs.GetEpoch(ctx, tx.Epoch)
		if err != nil {
			log.Warn("[provider] epoch metadata fetch failed", "epoch", tx.Epoch, "err", err)
		} else {
			protocolVersion = meta.ProtocolVersion
			refGasPrice = meta.ReferenceGasPrice
		}
	}

	return ReplayState{
		Transaction:       tx,
		Objects:           objects,
		Packages:          packages,
		ProtocolVersion:   protocolVersion,
		Epoch:             tx.Epoch,
		ReferenceGasPrice: refGasPrice,
		Checkpoint:        tx.Checkpoint,
		Diagnostics:       gaps.Diagnostics(),
	}, nil
}

// fetchObjectVersioned resolves one (id, version) via the full source
// preference chain, returning whether the result had to be downgraded
// to a different version.
func (p *Provider) fetchObjectVersioned(ctx context.Context, id sui.Address, version uint64) (cache.VersionedObject, bool, error) {
	if v, ok := p.Cache.GetObject(id, version); ok {
		return v, false, nil
	}
	if p.ObjectStore != nil {
		if v, err := p.ObjectStore.Get(id, version); err == nil {
			return v, false, nil
		}
	}
	for _, src := range p.ObjectSources {
		if v, err := src.GetObject(ctx, id, version); err == nil {
			if p.ObjectStore != nil {
				_ = p.ObjectStore.Put(v)
			}
			return v, false, nil
		}
	}
	// Every exact-version source missed; fall back to whatever version
	// the unified cache holds. The local object store and the remote
	// sources are not asked for a latest version.
	if v, ok := p.Cache.GetObjectAny(id); ok {
		return v, true, nil
	}
	return cache.VersionedObject{}, false, ErrNotFound
}

// FetchObjectsVersioned is the batch object-version fetch used both by
// FetchReplayState internally and directly by callers that already
// know an exact historical version set.
func (p *Provider) FetchObjectsVersioned(ctx context.Context, refs []ObjectRef) (map[sui.Address]cache.VersionedObject, error) {
	out := make(map[sui.Address]cache.VersionedObject, len(refs))
	for _, ref := range refs {
		obj, _, err := p.fetchObjectVersioned(ctx, ref.ID, ref.Version)
		if err != nil {
			continue
		}
		out[ref.ID] = obj
	}
	return out, nil
}

// cachingPackageSource adapts the Provider's cache and configured
// remote package sources into a single PackageSource, so the package
// dependency walk (WalkPackageDependencies) can stay source-agnostic.
func (p *Provider) cachingPackageSource() PackageSource {
	return cachingPackageSourceFunc(func(ctx context.Context, id sui.Address, version *uint64) (cache.Package, error) {
		if version == nil {
			if pkg, ok := p.Cache.GetPackageLatest(id); ok {
				return pkg, nil
			}
		} else if pkg, ok := p.Cache.GetPackage(id, *version); ok {
			return pkg, nil
		}
		for _, src := range p.PackageSources {
			if pkg, err := src.GetPackage(ctx, id, version); err == nil {
				_ = p.Cache.PutPackage(pkg)
				return pkg, nil
			}
		}
		return cache.Package{}, ErrNotFound
	})
}

type cachingPackageSourceFunc func(ctx context.Context, id sui.Address, version *uint64) (cache.Package, error)

func (f cachingPackageSourceFunc) GetPackage(ctx context.Context, id sui.Address, version *uint64) (cache.Package, error) {
	return f(ctx, id, version)
}

// IngestPackagesFromCheckpoint opportunistically bulk-ingests every
// package bundled in one checkpoint into the cache and package index.
// Returns the number of packages ingested.
func (p *Provider) IngestPackagesFromCheckpoint(ctx context.Context, checkpoint uint64) (int, error) {
	cp, err := p.Checkpoints.Get(ctx, checkpoint)
	if err != nil {
		return 0, fmt.Errorf("provider: ingest checkpoint %d: %w", checkpoint, err)
	}
	for _, pkg := range cp.Packages {
		_ = p.Cache.PutPackage(pkg)
		_ = p.Indices.RecordPackageCheckpoint(pkg.ID, checkpoint, "")
	}
	return len(cp.Packages), nil
}

// IngestPackagesFromCheckpointRange ingests every checkpoint in
// [start, start+n).
func (p *Provider) IngestPackagesFromCheckpointRange(ctx context.Context, start uint64, n int) (int, error) {
	total := 0
	for i := 0; i < n; i++ {
		count, err := p.IngestPackagesFromCheckpoint(ctx, start+uint64(i))
		if err != nil {
			log.Warn("[provider] checkpoint ingest failed", "checkpoint", start+uint64(i), "err", err)
			continue
		}
		total += count
	}
	return total, nil
}
