package provider

import (
	"context"

	arc "github.com/hashicorp/golang-lru/arc/v2"

	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/cache"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"
)

const defaultVisitedSetSize = 8192

// PrefetchDynamicFields performs the breadth-first walk from every
// currently-known object id up to depth D and limit L children per
// parent. The visited set is an ARC cache rather than a plain map
// since a long batch run's visited set can grow past any fixed memory
// budget and ARC balances recency/frequency better than a pure LRU
// eviction would for a workload that revisits popular shared objects
// across many transactions.
func PrefetchDynamicFields(ctx context.Context, source DynamicFieldSource, roots []sui.Address, depth, limit int) ([]cache.VersionedObject, error) {
	visited, err := arc.NewARC[sui.Address, struct{}](defaultVisitedSetSize)
	if err != nil {
		return nil, err
	}

	var discovered []cache.VersionedObject
	frontier := make([]sui.Address, len(roots))
	copy(frontier, roots)
	for _, r := range roots {
		visited.Add(r, struct{}{})
	}

	for d := 0; d < depth && len(frontier) > 0; d++ {
		var next []sui.Address
		for _, parent := range frontier {
			select {
			case <-ctx.Done():
				return discovered, nil
			default:
			}
			children, err := source.ListDynamicFields(ctx, parent, limit)
			if err != nil {
				// Transient fetch errors abort only this parent's walk,
				// not the whole prefetch.
				continue
			}
			for _, child := range children {
				if _, ok := visited.Get(child.ID); ok {
					continue
				}
				visited.Add(child.ID, struct{}{})
				discovered = append(discovered, child)
				next = append(next, child.ID)
			}
		}
		frontier = next
	}
	return discovered, nil
}
