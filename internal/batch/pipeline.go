package batch

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/objectruntime"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/provider"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/replay"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/vmhost"
)

var defaultConcurrency = runtime.NumCPU()

// Pipeline is the batch processing pipeline: a bounded-parallelism
// worker pool over a checkpoint range, replaying every PTB transaction
// it finds and aggregating the outcomes into Stats.
type Pipeline struct {
	Provider    *provider.Provider
	NewVM       func() vmhost.VM
	Concurrency int
}

// NewPipeline builds a Pipeline over p, constructing a fresh VM (and
// object-runtime session) per transaction via newVM so that replaying
// one transaction can never leak state into another.
func NewPipeline(p *provider.Provider, newVM func() vmhost.VM, concurrency int) *Pipeline {
	return &Pipeline{Provider: p, NewVM: newVM, Concurrency: concurrency}
}

func (p *Pipeline) concurrency() int {
	if p.Concurrency > 0 {
		return p.Concurrency
	}
	return defaultConcurrency
}

// transactionOutcome is one replayed transaction's contribution to
// Stats, computed by processOneDigest and folded in by the caller.
type transactionOutcome struct {
	digest                string
	localSuccess          bool
	onchainSuccess        bool
	outcomeMatches        bool
	errorText             string
	matchScore            float64
	objectsFetched        int
	packagesFetched       int
	dynamicFieldsResolved int
}

// RunCheckpoints fetches every checkpoint in [start,
// start+numCheckpoints), collects their PTB transactions, and replays
// each one through the provider and replay driver, bounded to
// p.concurrency() concurrent in-flight operations at both the
// checkpoint-fetch and transaction-replay stage.
func (p *Pipeline) RunCheckpoints(ctx context.Context, start, numCheckpoints uint64) (*Stats, error) {
	stats := NewStats()
	fetchStart := time.Now()

	type checkpointResult struct {
		found   bool
		digests []sui.Digest
	}
	results := make([]checkpointResult, numCheckpoints)

	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(p.concurrency()))
	for i := uint64(0); i < numCheckpoints; i++ {
		i := i
		sequence := start + i
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)
			cp, err := p.Provider.Checkpoints.Get(gctx, sequence)
			if err != nil {
				// A missing/unreachable checkpoint is skipped, not
				// fatal.
				return nil
			}
			results[i] = checkpointResult{found: true, digests: cp.Transactions}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, fmt.Errorf("batch: fetch checkpoints: %w", err)
	}

	var allDigests []sui.Digest
	for _, r := range results {
		if !r.found {
			continue
		}
		stats.recordCheckpoint(len(r.digests))
		allDigests = append(allDigests, r.digests...)
	}
	stats.DataFetchTime = time.Since(fetchStart)

	execStart := time.Now()
	if err := p.processDigests(ctx, allDigests, stats); err != nil {
		return stats, err
	}
	stats.ExecutionTime = time.Since(execStart)
	return stats, nil
}

// RunFromCache re-replays an already-known set of transaction digests
// without enumerating any checkpoint. Each digest is resolved through
// p.Provider.FetchReplayState as usual, so the provider's cache and
// local filesystem store are consulted first, and anything missing
// there is fetched from whatever sources p.Provider is configured
// with; RunFromCache itself does not restrict them. Callers build this
// digest list from a prior RunCheckpoints call (or any other manifest
// of digests known to be fully cached).
func (p *Pipeline) RunFromCache(ctx context.Context, digests []sui.Digest) (*Stats, error) {
	stats := NewStats()
	stats.TransactionsFetched = len(digests) // no checkpoint-level bookkeeping in cache-only mode

	execStart := time.Now()
	if err := p.processDigests(ctx, digests, stats); err != nil {
		return stats, err
	}
	stats.ExecutionTime = time.Since(execStart)
	return stats, nil
}

// processDigests replays every digest with bounded parallelism,
// folding each outcome into stats as it completes.
func (p *Pipeline) processDigests(ctx context.Context, digests []sui.Digest, stats *Stats) error {
	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(p.concurrency()))

	for _, digest := range digests {
		digest := digest
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			outcome, err := p.processOneDigest(gctx, digest)
			if err != nil {
				stats.recordFetchSkip()
				return nil
			}
			stats.recordOutcome(outcome)
			return nil
		})
	}
	return g.Wait()
}

// processOneDigest replays a single transaction through the full
// pipeline: fetch its ReplayState, replay it through a fresh VM
// session, and compare the result to the authoritative effects.
func (p *Pipeline) processOneDigest(ctx context.Context, digest sui.Digest) (transactionOutcome, error) {
	state, err := p.Provider.FetchReplayState(ctx, digest)
	if err != nil {
		return transactionOutcome{}, fmt.Errorf("batch: fetch replay state for %s: %w", digest, err)
	}

	vm := p.NewVM()
	shared := objectruntime.NewShared()

	out, err := replay.Replay(ctx, vm, shared, state)
	if err != nil {
		return transactionOutcome{
			digest:          digest.String(),
			onchainSuccess:  state.Transaction.Effects != nil && state.Transaction.Effects.Success,
			errorText:       err.Error(),
			objectsFetched:  len(state.Objects),
			packagesFetched: len(state.Packages),
		}, nil
	}

	onchainSuccess := false
	if state.Transaction.Effects != nil {
		onchainSuccess = state.Transaction.Effects.Success
	}

	errText := ""
	if out.ErrorClass != replay.ErrorNone {
		errText = out.ErrorClass.String()
	}

	return transactionOutcome{
		digest:          digest.String(),
		localSuccess:    out.Effects.Success,
		onchainSuccess:  onchainSuccess,
		outcomeMatches:  out.Report.StatusMatch && out.Report.CreatedCountMatch && out.Report.MutatedCountMatch && out.Report.DeletedCountMatch,
		errorText:       errText,
		matchScore:      out.Report.MatchScore,
		objectsFetched:  len(state.Objects),
		packagesFetched: len(state.Packages),
	}, nil
}
