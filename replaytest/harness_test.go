package replaytest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/cache"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/config"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/provider"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/vmhost"
)

type fakeTxSource struct {
	byDigest map[sui.Digest]provider.TransactionPayload
}

func (f *fakeTxSource) GetTransaction(_ context.Context, digest sui.Digest) (provider.TransactionPayload, error) {
	tx, ok := f.byDigest[digest]
	if !ok {
		return provider.TransactionPayload{}, provider.ErrNotFound
	}
	return tx, nil
}

type fakeCheckpointSource struct{}

func (fakeCheckpointSource) GetCheckpoint(context.Context, uint64) (provider.CheckpointPayload, error) {
	return provider.CheckpointPayload{}, provider.ErrNotFound
}

func testProvider(t *testing.T, txs map[sui.Digest]provider.TransactionPayload, objs []cache.VersionedObject) *provider.Provider {
	t.Helper()
	dir := t.TempDir()
	mgr, err := cache.NewManager(dir+"/cache", false, false)
	require.NoError(t, err)
	for _, v := range objs {
		require.NoError(t, mgr.PutObject(v))
	}
	store, err := provider.NewFSObjectStore(dir + "/objects")
	require.NoError(t, err)
	idx, err := provider.OpenIndices(dir + "/indices")
	require.NoError(t, err)
	return provider.New(config.Default(), mgr, store, idx, fakeCheckpointSource{}, &fakeTxSource{byDigest: txs}, nil, nil, nil, nil)
}

func TestRunScenarioVerifiesPerfectMatch(t *testing.T) {
	obj := sui.MustParseAddress("0xaaa1")
	digest, err := sui.ParseDigest("0x01")
	require.NoError(t, err)

	tx := provider.TransactionPayload{
		Digest:   digest,
		Inputs:   []provider.ObjectRef{{ID: obj, Version: 1}},
		Commands: []provider.Command{{Kind: provider.CommandOther}},
		Effects:  &provider.AuthoritativeEffects{Success: true},
	}
	versioned := cache.VersionedObject{
		ID:      obj,
		Version: 1,
		Type:    sui.StructOf(sui.StructTag{Address: sui.FrameworkAddress, Module: "coin", Name: "Coin"}),
		Bytes:   []byte("bytes"),
		Owner:   sui.NewAddressOwner(sui.MustParseAddress("0xdead")),
	}
	p := testProvider(t, map[sui.Digest]provider.TransactionPayload{digest: tx}, []cache.VersionedObject{versioned})

	out, err := RunScenario(context.Background(), p, digest, func() vmhost.VM { return vmhost.NewFake() })
	require.NoError(t, err)
	require.Equal(t, 1.0, out.Report.MatchScore)
}

func TestRunScenarioReturnsErrorOnMismatch(t *testing.T) {
	obj := sui.MustParseAddress("0xbbb1")
	digest, err := sui.ParseDigest("0x02")
	require.NoError(t, err)

	tx := provider.TransactionPayload{
		Digest:   digest,
		Inputs:   []provider.ObjectRef{{ID: obj, Version: 1}},
		Commands: []provider.Command{{Kind: provider.CommandOther}},
		Effects:  &provider.AuthoritativeEffects{Success: true, CreatedCount: 5},
	}
	versioned := cache.VersionedObject{
		ID:      obj,
		Version: 1,
		Type:    sui.StructOf(sui.StructTag{Address: sui.FrameworkAddress, Module: "coin", Name: "Coin"}),
		Bytes:   []byte("bytes"),
		Owner:   sui.NewAddressOwner(sui.MustParseAddress("0xdead")),
	}
	p := testProvider(t, map[sui.Digest]provider.TransactionPayload{digest: tx}, []cache.VersionedObject{versioned})

	_, err = RunScenario(context.Background(), p, digest, func() vmhost.VM { return vmhost.NewFake() })
	require.Error(t, err)

	out, err := RunScenarioNoVerify(context.Background(), p, digest, func() vmhost.VM { return vmhost.NewFake() })
	require.NoError(t, err)
	require.False(t, out.Report.CreatedCountMatch)
}

func TestRunScenarioPropagatesFetchError(t *testing.T) {
	p := testProvider(t, nil, nil)
	unknown, err := sui.ParseDigest("0x99")
	require.NoError(t, err)

	_, err = RunScenario(context.Background(), p, unknown, func() vmhost.VM { return vmhost.NewFake() })
	require.Error(t, err)
}
