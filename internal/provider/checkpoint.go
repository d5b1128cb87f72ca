package provider

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// CheckpointFetcher deduplicates concurrent fetches of the same
// checkpoint number across transactions being processed at once: an
// in-flight map keyed by checkpoint number, where late arrivals wait on
// a per-checkpoint notification, implemented with
// golang.org/x/sync/singleflight.
type CheckpointFetcher struct {
	source CheckpointSource
	group  singleflight.Group

	mu    sync.RWMutex
	cache map[uint64]CheckpointPayload
}

// NewCheckpointFetcher wraps source with in-flight dedup and a
// permanent in-memory cache of fetched checkpoints (a checkpoint's
// content never changes once finalized).
func NewCheckpointFetcher(source CheckpointSource) *CheckpointFetcher {
	return &CheckpointFetcher{source: source, cache: make(map[uint64]CheckpointPayload)}
}

// Get fetches checkpoint sequence, deduplicating concurrent callers
// requesting the same sequence and caching the result for subsequent
// calls.
func (f *CheckpointFetcher) Get(ctx context.Context, sequence uint64) (CheckpointPayload, error) {
	f.mu.RLock()
	if cp, ok := f.cache[sequence]; ok {
		f.mu.RUnlock()
		return cp, nil
	}
	f.mu.RUnlock()

	key := fmt.Sprintf("%d", sequence)
	v, err, _ := f.group.Do(key, func() (interface{}, error) {
		cp, err := f.source.GetCheckpoint(ctx, sequence)
		if err != nil {
			return CheckpointPayload{}, err
		}
		f.mu.Lock()
		f.cache[sequence] = cp
		f.mu.Unlock()
		return cp, nil
	})
	if err != nil {
		return CheckpointPayload{}, err
	}
	return v.(CheckpointPayload), nil
}
