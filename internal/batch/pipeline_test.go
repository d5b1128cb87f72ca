package batch

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

type fakeCheckpointSource struct {
	bySequence map[uint64]provider.CheckpointPayload
}

func (f *fakeCheckpointSource) GetCheckpoint(_ context.Context, sequence uint64) (provider.CheckpointPayload, error) {
	cp, ok := f.bySequence[sequence]
	if !ok {
		return provider.CheckpointPayload{}, provider.ErrNotFound
	}
	return cp, nil
}

func digestOf(t *testing.T, hex string) sui.Digest {
	t.Helper()
	d, err := sui.ParseDigest(hex)
	require.NoError(t, err)
	return d
}

func newTestPipeline(t *testing.T, txs map[sui.Digest]provider.TransactionPayload, checkpoints map[uint64]provider.CheckpointPayload) *Pipeline {
	t.Helper()
	dir := t.TempDir()
	mgr, err := cache.NewManager(dir+"/cache", false, false)
	require.NoError(t, err)
	store, err := provider.NewFSObjectStore(dir + "/objects")
	require.NoError(t, err)
	idx, err := provider.OpenIndices(dir + "/indices")
	require.NoError(t, err)

	p := provider.New(config.Default(), mgr, store, idx,
		&fakeCheckpointSource{bySequence: checkpoints},
		&fakeTxSource{byDigest: txs},
		nil, nil, nil, nil)

	return NewPipeline(p, func() vmhost.VM { return vmhost.NewFake() }, 4)
}

func sampleObject(id sui.Address) cache.VersionedObject {
	return cache.VersionedObject{
		ID:      id,
		Version: 1,
		Type:    sui.StructOf(sui.StructTag{Address: sui.FrameworkAddress, Module: "coin", Name: "Coin"}),
		Bytes:   []byte("bytes"),
		Owner:   sui.NewAddressOwner(sui.MustParseAddress("0xdead")),
	}
}

func TestRunCheckpointsReplaysEveryTransactionInRange(t *testing.T) {
	obj := sui.MustParseAddress("0xaaa1")
	d1 := digestOf(t, "0x01")
	d2 := digestOf(t, "0x02")

	cp := uint64(100)
	txs := map[sui.Digest]provider.TransactionPayload{
		d1: {
			Digest:   d1,
			Checkpoint: &cp,
			Inputs:   []provider.ObjectRef{{ID: obj, Version: 1}},
			Commands: []provider.Command{{Kind: provider.CommandOther}},
			Effects:  &provider.AuthoritativeEffects{Success: true},
		},
		d2: {
			Digest:   d2,
			Checkpoint: &cp,
			Inputs:   []provider.ObjectRef{{ID: obj, Version: 1}},
			Commands: []provider.Command{{Kind: provider.CommandOther}},
			Effects:  &provider.AuthoritativeEffects{Success: true},
		},
	}
	checkpoints := map[uint64]provider.CheckpointPayload{
		cp: {
			Sequence:     cp,
			Objects:      []cache.VersionedObject{sampleObject(obj)},
			Transactions: []sui.Digest{d1, d2},
		},
	}

	pipe := newTestPipeline(t, txs, checkpoints)
	stats, err := pipe.RunCheckpoints(context.Background(), cp, 1)
	require.NoError(t, err)
	require.Equal(t, 1, stats.CheckpointsProcessed)
	require.Equal(t, 2, stats.TransactionsFetched)
	require.Equal(t, 2, stats.TransactionsProcessed)
	require.Equal(t, 2, stats.SuccessfulReplays)
	require.Equal(t, 2, stats.OutcomeMatches)
	require.Equal(t, 1.0, stats.MatchRate())
}

func TestRunCheckpointsSkipsMissingCheckpointWithoutFailing(t *testing.T) {
	pipe := newTestPipeline(t, nil, nil)
	stats, err := pipe.RunCheckpoints(context.Background(), 500, 3)
	require.NoError(t, err)
	require.Equal(t, 0, stats.CheckpointsProcessed)
	require.Equal(t, 0, stats.TransactionsProcessed)
}

func TestRunCheckpointsCountsFetchSkipOnUnresolvableTransaction(t *testing.T) {
	cp := uint64(7)
	d1 := digestOf(t, "0x03")
	checkpoints := map[uint64]provider.CheckpointPayload{
		cp: {Sequence: cp, Transactions: []sui.Digest{d1}},
	}
	// No tx registered in fakeTxSource for d1: FetchReplayState fails.
	pipe := newTestPipeline(t, map[sui.Digest]provider.TransactionPayload{}, checkpoints)

	stats, err := pipe.RunCheckpoints(context.Background(), cp, 1)
	require.NoError(t, err)
	require.Equal(t, 1, stats.SkippedFetchErrors)
	require.Equal(t, 0, stats.TransactionsProcessed)
}

func TestRunFromCacheReplaysSuppliedDigestsWithoutCheckpointLookup(t *testing.T) {
	obj := sui.MustParseAddress("0xbbb1")
	d1 := digestOf(t, "0x04")
	txs := map[sui.Digest]provider.TransactionPayload{
		d1: {
			Digest:   d1,
			Inputs:   []provider.ObjectRef{{ID: obj, Version: 1}},
			Commands: []provider.Command{{Kind: provider.CommandOther}},
			Effects:  &provider.AuthoritativeEffects{Success: true},
		},
	}
	pipe := newTestPipeline(t, txs, nil)
	// Pre-seed the cache as a prior fetch-mode run would have.
	require.NoError(t, pipe.Provider.Cache.PutObject(sampleObject(obj)))

	stats, err := pipe.RunFromCache(context.Background(), []sui.Digest{d1})
	require.NoError(t, err)
	require.Equal(t, 0, stats.CheckpointsProcessed)
	require.Equal(t, 1, stats.TransactionsFetched)
	require.Equal(t, 1, stats.TransactionsProcessed)
	require.Equal(t, 1, stats.OutcomeMatches)
}

func TestMatchScoreHistogramBucketsPartialMatches(t *testing.T) {
	stats := NewStats()
	stats.recordOutcome(transactionOutcome{digest: "a", matchScore: 1.0, outcomeMatches: true, localSuccess: true})
	stats.recordOutcome(transactionOutcome{digest: "b", matchScore: 0.5, outcomeMatches: false, localSuccess: true, onchainSuccess: true})

	require.Equal(t, 1, stats.MatchScoreHistogram[1.0])
	require.Equal(t, 1, stats.MatchScoreHistogram[0.5])
	require.Len(t, stats.Mismatches, 1)
	require.Equal(t, "b", stats.Mismatches[0].Digest)
}
