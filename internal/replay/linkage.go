package replay

import (
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/cache"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/objectruntime"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"
)

// BuildAliasMap builds, for each package's linkage table, both the
// (original→upgraded) and (upgraded→original) mappings the object
// runtime needs to rewrite type tags and resolve child ids across a
// package upgrade.
//
// A package's Linkage maps runtime (bytecode) module address to
// storage (on-chain) address (internal/cache.Package doc comment);
// AliasMap.Install takes (original, upgraded) in that same
// (storage, runtime) order.
func BuildAliasMap(packages map[sui.Address]cache.Package) *objectruntime.AliasMap {
	m := objectruntime.NewAliasMap()
	for _, pkg := range packages {
		for runtimeAddr, storageAddr := range pkg.Linkage {
			m.Install(storageAddr, runtimeAddr)
		}
	}
	return m
}
