package provider

import (
	"sync"

	"github.com/erigontech/erigon-lib/log/v3"

	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"
)

// GapKind classifies why an item could not be resolved as requested.
type GapKind int

const (
	// GapObjectDowngraded: a historically-pinned object version was
	// unavailable everywhere; the latest available version was
	// substituted instead.
	GapObjectDowngraded GapKind = iota
	// GapObjectMissing: an object could not be found at any version,
	// from any source.
	GapObjectMissing
	// GapPackageMissing: a package id referenced by the transaction or
	// an object's type could not be fetched from any source.
	GapPackageMissing
	// GapCheckpointUnavailable: the checkpoint containing this
	// transaction could not be fetched; step 2/4 were skipped.
	GapCheckpointUnavailable
)

// Gap is one data-gap event, reported via the gap-reporting channel.
type Gap struct {
	Kind    GapKind
	ID      sui.Address
	Wanted  uint64
	Got     uint64
	Message string
}

// DiagnosticKind classifies one replay diagnostic: a downgrade, a data
// gap, or a linkage-alias decision.
type DiagnosticKind int

const (
	DiagnosticDowngrade DiagnosticKind = iota
	DiagnosticDataGap
	DiagnosticLinkageAlias
)

// Diagnostic is one entry in ReplayState.Diagnostics.
type Diagnostic struct {
	Kind    DiagnosticKind
	Message string
}

// GapReporter collects data gaps for one FetchReplayState call and
// exposes whether any object fetch was downgraded, which step 9 logs.
type GapReporter struct {
	mu   sync.Mutex
	gaps []Gap
}

// NewGapReporter returns an empty reporter.
func NewGapReporter() *GapReporter {
	return &GapReporter{}
}

// Report records a gap and logs it.
func (r *GapReporter) Report(g Gap) {
	r.mu.Lock()
	r.gaps = append(r.gaps, g)
	r.mu.Unlock()
	log.Warn("[provider] data gap", "kind", g.Kind, "id", g.ID.String(), "wanted", g.Wanted, "got", g.Got, "message", g.Message)
}

// Gaps returns every gap reported so far.
func (r *GapReporter) Gaps() []Gap {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Gap, len(r.gaps))
	copy(out, r.gaps)
	return out
}

// AnyDowngrade reports whether at least one GapObjectDowngraded event
// was recorded; step 9 logs a warning when it was.
func (r *GapReporter) AnyDowngrade() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.gaps {
		if g.Kind == GapObjectDowngraded {
			return true
		}
	}
	return false
}

// Diagnostics renders the recorded gaps as replay diagnostics.
func (r *GapReporter) Diagnostics() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Diagnostic, 0, len(r.gaps))
	for _, g := range r.gaps {
		kind := DiagnosticDataGap
		if g.Kind == GapObjectDowngraded {
			kind = DiagnosticDowngrade
		}
		out = append(out, Diagnostic{Kind: kind, Message: g.Message})
	}
	return out
}
