package provider

import (
	"context"

	"github.com/erigontech/erigon-lib/log/v3"

	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/cache"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"
)

const defaultMaxPackageDepth = 25

// PackageIDsFromCommands extracts every package id a PTB command
// references directly: MoveCall.package, MakeMoveVec.element_type.
func PackageIDsFromCommands(commands []Command) []sui.Address {
	var out []sui.Address
	seen := make(map[sui.Address]bool)
	add := func(a sui.Address) {
		if !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	for _, c := range commands {
		switch c.Kind {
		case CommandMoveCall:
			add(c.Package)
		case CommandMakeMoveVec:
			for _, a := range c.ElementType.PackageAddresses(nil) {
				add(a)
			}
		}
	}
	return out
}

// WalkPackageDependencies transitively resolves every package reachable
// from roots via (a) each fetched package's linkage table and (b) its
// recorded Dependencies, standing in for the immediate dependencies a
// module's bytecode handles would otherwise need extracting: the
// bytecode-handle walk itself is the VM host's job, but the dependency
// addresses it would yield are exactly what Package.Dependencies
// carries once a package has been fetched once.
// Depth is capped at maxDepth with a warning on saturation.
func WalkPackageDependencies(ctx context.Context, src PackageSource, roots []sui.Address, maxDepth int) (map[sui.Address]cache.Package, error) {
	if maxDepth <= 0 {
		maxDepth = defaultMaxPackageDepth
	}
	resolved := make(map[sui.Address]cache.Package)
	frontier := make([]sui.Address, len(roots))
	copy(frontier, roots)

	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		var next []sui.Address
		for _, id := range frontier {
			if _, ok := resolved[id]; ok {
				continue
			}
			pkg, err := src.GetPackage(ctx, id, nil)
			if err != nil {
				continue
			}
			resolved[id] = pkg
			for _, storage := range pkg.Linkage {
				if _, ok := resolved[storage]; !ok {
					next = append(next, storage)
				}
			}
			for _, dep := range pkg.Dependencies {
				if _, ok := resolved[dep]; !ok {
					next = append(next, dep)
				}
			}
		}
		frontier = next
	}
	if len(frontier) > 0 {
		log.Warn("[provider] package dependency walk saturated depth cap", "max_depth", maxDepth, "remaining", len(frontier))
	}
	return resolved, nil
}
