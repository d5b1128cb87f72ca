package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultEnablesAutoSystemObjectsAndPrimaryRPCSources(t *testing.T) {
	cfg := Default()
	require.True(t, cfg.AutoSystemObjects)
	require.True(t, cfg.PrefetchDynamicFields)
	require.True(t, cfg.Sources.RPCCheckpointLookup)
	require.True(t, cfg.Sources.RPCObjectFetch)
	require.False(t, cfg.Sources.GraphQLCheckpointLookup)
	require.False(t, cfg.Debug.Linkage)
	require.False(t, cfg.Debug.DumpTxObjects)
}

func TestLoadOverlaysFileOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sandbox.toml")
	contents := `
cache_compress = true

[sources]
graphql_checkpoint_lookup = true
max_checkpoints = 5

[debug]
linkage = true

[timeouts]
rpc_call_seconds = 42
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.True(t, cfg.CacheCompress)
	require.True(t, cfg.Sources.GraphQLCheckpointLookup)
	require.EqualValues(t, 5, cfg.Sources.MaxCheckpoints)
	require.True(t, cfg.Debug.Linkage)
	require.EqualValues(t, 42, cfg.Timeouts.RPCCallSeconds)

	// Untouched fields keep their defaults.
	require.True(t, cfg.AutoSystemObjects)
	require.True(t, cfg.Sources.RPCObjectFetch)
	require.EqualValues(t, 10_000, cfg.DFLimit)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.Error(t, err)
}

func TestLoadMalformedTOMLReturnsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid toml"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestTimeoutHelpersConvertSecondsToDuration(t *testing.T) {
	cfg := Default()
	require.Equal(t, 10*time.Second, cfg.Timeouts.RPCCall())
	require.Equal(t, 30*time.Second, cfg.Timeouts.ArchivalFetch())
	require.Equal(t, 15*time.Second, cfg.Timeouts.DynamicFieldPrefetch())
}
