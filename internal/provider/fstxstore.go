package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"
)

// FSTxStore is a local filesystem transaction-payload store,
// content-addressed by digest — FSObjectStore's own one-file-per-record
// pattern applied to transactions rather than objects, so the batch
// pipeline's RunFromCache and the replay CLI can operate against
// previously-ingested transactions without a live chain RPC.
type FSTxStore struct {
	dir string
	mu  sync.Mutex
}

// NewFSTxStore opens (creating if absent) a local transaction store
// rooted at dir.
func NewFSTxStore(dir string) (*FSTxStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("provider: create transaction store dir: %w", err)
	}
	return &FSTxStore{dir: dir}, nil
}

func (s *FSTxStore) path(digest sui.Digest) string {
	return filepath.Join(s.dir, digest.String()+".json")
}

// GetTransaction implements TxSource by reading digest's payload back
// from disk, or ErrNotFound if it was never ingested.
func (s *FSTxStore) GetTransaction(_ context.Context, digest sui.Digest) (TransactionPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := os.ReadFile(s.path(digest))
	if err != nil {
		if os.IsNotExist(err) {
			return TransactionPayload{}, ErrNotFound
		}
		return TransactionPayload{}, err
	}
	var tx TransactionPayload
	if err := json.Unmarshal(raw, &tx); err != nil {
		return TransactionPayload{}, fmt.Errorf("provider: decode transaction store entry: %w", err)
	}
	return tx, nil
}

// Put records tx at its digest's path, so a later cache-only run can
// replay it without re-fetching from a remote source.
func (s *FSTxStore) Put(tx TransactionPayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("provider: encode transaction store entry: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, "tx-*.tmp")
	if err != nil {
		return fmt.Errorf("provider: create temp transaction file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path(tx.Digest))
}
