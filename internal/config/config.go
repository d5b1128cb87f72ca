// Package config loads and defaults the sandbox's configuration
// surface: source enable/disable flags, debug gates, timeouts, and
// filesystem paths. Defaults are applied in code, never baked into
// the TOML file itself.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config is the sandbox's full configuration surface.
type Config struct {
	// AutoSystemObjects synthesizes Clock/Random system objects when
	// they're absent from fetched replay state.
	AutoSystemObjects bool `toml:"auto_system_objects"`

	// PrefetchDynamicFields enables the BFS dynamic-field prefetch
	// pass, bounded by DFDepth and DFLimit.
	PrefetchDynamicFields bool   `toml:"prefetch_dynamic_fields"`
	DFDepth               uint32 `toml:"df_depth"`
	DFLimit               uint32 `toml:"df_limit"`

	// Sources controls which archival source is tried, and in what
	// capacity, for each kind of lookup.
	Sources SourceConfig `toml:"sources"`

	// Debug holds the instrumentation gates, named after the underlying
	// debug env vars they stand in for.
	Debug DebugConfig `toml:"debug"`

	// ArchivalStoreDir is the local filesystem root for the object
	// store, indices, and dynamic-field cache. Defaults under the
	// user's home directory.
	ArchivalStoreDir string `toml:"archival_store_dir"`

	// Timeouts, one per kind of blocking operation.
	Timeouts TimeoutConfig `toml:"timeouts"`

	// CacheCompress enables zstd compression of unified-cache shard
	// files (internal/cache's on-disk layout).
	CacheCompress bool `toml:"cache_compress"`

	// CacheDir is the unified cache's on-disk root.
	CacheDir string `toml:"cache_dir"`
}

// SourceConfig enables or disables each archival source independently
// for each kind of lookup.
type SourceConfig struct {
	RPCCheckpointLookup       bool `toml:"rpc_checkpoint_lookup"`
	GraphQLCheckpointLookup   bool `toml:"graphql_checkpoint_lookup"`
	RPCObjectFetch            bool `toml:"rpc_object_fetch"`
	GraphQLObjectFetchFallback bool `toml:"graphql_object_fetch_fallback"`
	ArchivalOnlyPackageMode   bool `toml:"archival_only_package_mode"`
	FullCheckpointIngest      bool `toml:"full_checkpoint_ingest"`
	RecursiveCheckpointHydration bool `toml:"recursive_checkpoint_hydration"`
	MaxCheckpoints            uint32 `toml:"max_checkpoints"`
	MaxTxSteps                uint32 `toml:"max_tx_steps"`
}

// DebugConfig is the set of debug instrumentation gates, named after
// the underlying env vars they stand in for: SUI_DUMP_TX_OBJECTS →
// DumpTxObjects, SUI_CHECKPOINT_LOOKUP_SELF_TEST →
// CheckpointLookupSelfTest, and so on.
type DebugConfig struct {
	Linkage              bool `toml:"linkage"`
	Timing               bool `toml:"timing"`
	CheckpointLookup     bool `toml:"checkpoint_lookup"`
	DataGap              bool `toml:"data_gap"`
	ArchivalStore        bool `toml:"archival_store"`
	DumpTxObjects        bool `toml:"dump_tx_objects"`
	CheckpointLookupSelfTest bool `toml:"checkpoint_lookup_self_test"`
}

// TimeoutConfig holds per-operation timeouts.
type TimeoutConfig struct {
	RPCCallSeconds             uint32 `toml:"rpc_call_seconds"`
	ArchivalFetchSeconds       uint32 `toml:"archival_fetch_seconds"`
	DynamicFieldPrefetchSeconds uint32 `toml:"dynamic_field_prefetch_seconds"`
}

func (t TimeoutConfig) RPCCall() time.Duration {
	return time.Duration(t.RPCCallSeconds) * time.Second
}

func (t TimeoutConfig) ArchivalFetch() time.Duration {
	return time.Duration(t.ArchivalFetchSeconds) * time.Second
}

func (t TimeoutConfig) DynamicFieldPrefetch() time.Duration {
	return time.Duration(t.DynamicFieldPrefetchSeconds) * time.Second
}

// Default returns the baseline configuration: auto system objects on,
// dynamic-field prefetch on with conservative bounds, primary RPC
// sources enabled and GraphQL as fallback only, every debug gate off.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		AutoSystemObjects:     true,
		PrefetchDynamicFields: true,
		DFDepth:               4,
		DFLimit:               10_000,
		Sources: SourceConfig{
			RPCCheckpointLookup:          true,
			GraphQLCheckpointLookup:      false,
			RPCObjectFetch:               true,
			GraphQLObjectFetchFallback:   true,
			ArchivalOnlyPackageMode:      false,
			FullCheckpointIngest:         false,
			RecursiveCheckpointHydration: false,
			MaxCheckpoints:               1,
			MaxTxSteps:                   1_000,
		},
		ArchivalStoreDir: filepath.Join(home, ".sui-sandbox", "archival"),
		CacheDir:         filepath.Join(home, ".sui-sandbox", "cache"),
		CacheCompress:    false,
		Timeouts: TimeoutConfig{
			RPCCallSeconds:              10,
			ArchivalFetchSeconds:        30,
			DynamicFieldPrefetchSeconds: 15,
		},
	}
}

// Load reads a TOML config file at path, starting from Default and
// overlaying whatever the file sets.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
