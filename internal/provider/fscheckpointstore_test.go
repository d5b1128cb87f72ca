package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"
)

func TestFSCheckpointStoreRoundTripsTransactionDigests(t *testing.T) {
	store, err := NewFSCheckpointStore(t.TempDir())
	require.NoError(t, err)

	d1, err := sui.ParseDigest("0x01")
	require.NoError(t, err)
	d2, err := sui.ParseDigest("0x02")
	require.NoError(t, err)

	cp := CheckpointPayload{Sequence: 42, Epoch: 3, Transactions: []sui.Digest{d1, d2}}
	require.NoError(t, store.Put(cp))

	got, err := store.GetCheckpoint(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, uint64(42), got.Sequence)
	require.Equal(t, uint64(3), got.Epoch)
	require.Equal(t, []sui.Digest{d1, d2}, got.Transactions)
}

func TestFSCheckpointStoreUnknownSequenceIsNotFound(t *testing.T) {
	store, err := NewFSCheckpointStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.GetCheckpoint(context.Background(), 99)
	require.ErrorIs(t, err, ErrNotFound)
}
