// Package batch implements the batch pipeline: a bounded-parallelism
// worker pool that replays every PTB transaction in a checkpoint range
// and aggregates the outcomes into Stats.
package batch

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Mismatch records one replay whose outcome disagreed with the
// authoritative on-chain effects, bounded to maxMismatchSamples per
// run so a pathological range can't grow Stats without limit.
type Mismatch struct {
	Digest         string
	LocalSuccess   bool
	OnchainSuccess bool
	Error          string
}

const maxMismatchSamples = 100

// Stats is the batch pipeline's aggregate report: per-stage counters,
// timing, a failure-reason histogram, and a bounded mismatch sample.
type Stats struct {
	mu sync.Mutex

	CheckpointsProcessed int
	TransactionsFetched  int
	TransactionsProcessed int
	SuccessfulReplays    int
	FailedReplays        int
	SkippedFetchErrors   int

	TotalObjectsFetched   int
	TotalPackagesFetched  int
	DynamicFieldsResolved int

	DataFetchTime time.Duration
	ExecutionTime time.Duration

	FailureReasons map[string]int

	OutcomeMatches int
	Mismatches     []Mismatch

	// MatchScoreHistogram buckets every replayed transaction's
	// replay.ComparisonReport.MatchScore into one of five bands:
	// 0.00, 0.25, 0.50, 0.75, 1.00.
	MatchScoreHistogram map[float64]int
}

// NewStats returns a zeroed Stats ready for concurrent accumulation.
func NewStats() *Stats {
	return &Stats{
		FailureReasons:      make(map[string]int),
		MatchScoreHistogram: make(map[float64]int),
	}
}

// recordCheckpoint accounts for one checkpoint having been processed,
// optionally contributing its PTB transaction count.
func (s *Stats) recordCheckpoint(txCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CheckpointsProcessed++
	s.TransactionsFetched += txCount
}

// recordFetchSkip accounts for one transaction whose fetch failed
// outright (never reached replay).
func (s *Stats) recordFetchSkip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SkippedFetchErrors++
}

// recordOutcome folds one successfully replayed transaction's result
// into the aggregate.
func (s *Stats) recordOutcome(o transactionOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.TransactionsProcessed++
	s.TotalObjectsFetched += o.objectsFetched
	s.TotalPackagesFetched += o.packagesFetched
	s.DynamicFieldsResolved += o.dynamicFieldsResolved

	bucket := matchScoreBucket(o.matchScore)
	s.MatchScoreHistogram[bucket]++

	if o.outcomeMatches {
		s.OutcomeMatches++
	} else if len(s.Mismatches) < maxMismatchSamples {
		s.Mismatches = append(s.Mismatches, Mismatch{
			Digest:         o.digest,
			LocalSuccess:   o.localSuccess,
			OnchainSuccess: o.onchainSuccess,
			Error:          o.errorText,
		})
	}

	if o.localSuccess {
		s.SuccessfulReplays++
	} else {
		s.FailedReplays++
		if o.errorText != "" {
			s.FailureReasons[o.errorText]++
		}
	}
}

func matchScoreBucket(score float64) float64 {
	return float64(int(score*4+0.5)) / 4.0
}

// MatchRate is the fraction of processed transactions whose replayed
// outcome matched the authoritative one — 0 when nothing was
// processed.
func (s *Stats) MatchRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.TransactionsProcessed == 0 {
		return 0
	}
	return float64(s.OutcomeMatches) / float64(s.TransactionsProcessed)
}

// Throughput is transactions processed per second of execution time.
func (s *Stats) Throughput() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ExecutionTime <= 0 {
		return 0
	}
	return float64(s.TransactionsProcessed) / s.ExecutionTime.Seconds()
}

// WriteSummary renders the stats as a table via go-pretty/v6: the
// top-level counters, the match-score histogram, then any failure
// reasons.
func (s *Stats) WriteSummary(w *os.File) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"metric", "value"})
	t.AppendRows([]table.Row{
		{"checkpoints processed", s.CheckpointsProcessed},
		{"transactions fetched", s.TransactionsFetched},
		{"transactions processed", s.TransactionsProcessed},
		{"successful replays", s.SuccessfulReplays},
		{"failed replays", s.FailedReplays},
		{"skipped (fetch errors)", s.SkippedFetchErrors},
		{"match rate", fmt.Sprintf("%.2f%%", s.matchRateLocked()*100)},
		{"objects fetched", s.TotalObjectsFetched},
		{"packages fetched", s.TotalPackagesFetched},
		{"dynamic fields resolved", s.DynamicFieldsResolved},
		{"data fetch time", s.DataFetchTime},
		{"execution time", s.ExecutionTime},
	})
	t.Render()

	h := table.NewWriter()
	h.SetOutputMirror(w)
	h.SetTitle("match score histogram")
	h.AppendHeader(table.Row{"score", "count"})
	buckets := make([]float64, 0, len(s.MatchScoreHistogram))
	for b := range s.MatchScoreHistogram {
		buckets = append(buckets, b)
	}
	sort.Float64s(buckets)
	for _, b := range buckets {
		h.AppendRow(table.Row{fmt.Sprintf("%.2f", b), s.MatchScoreHistogram[b]})
	}
	h.Render()

	if len(s.FailureReasons) > 0 {
		f := table.NewWriter()
		f.SetOutputMirror(w)
		f.SetTitle("failure reasons")
		f.AppendHeader(table.Row{"reason", "count"})
		reasons := make([]string, 0, len(s.FailureReasons))
		for r := range s.FailureReasons {
			reasons = append(reasons, r)
		}
		sort.Strings(reasons)
		for _, r := range reasons {
			f.AppendRow(table.Row{r, s.FailureReasons[r]})
		}
		f.Render()
	}
}

func (s *Stats) matchRateLocked() float64 {
	if s.TransactionsProcessed == 0 {
		return 0
	}
	return float64(s.OutcomeMatches) / float64(s.TransactionsProcessed)
}
