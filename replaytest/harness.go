// Package replaytest is a thin wrapper that fetches one transaction's
// replay state, replays it, and verifies the outcome: a two-phase
// "run, then verify post-state" structure.
package replaytest

import (
	"context"
	"fmt"

	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/objectruntime"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/provider"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/replay"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/vmhost"
)

// Scenario is one transaction's replay setup: the state to replay and
// the VM constructor to replay it with. Mirroring StateTest, a
// Scenario is built once and can be run with or without verification.
type Scenario struct {
	Digest sui.Digest
	State  provider.ReplayState
	NewVM  func() vmhost.VM
}

// RunNoVerify replays the scenario and returns the raw outcome without
// checking it against the authoritative effects — the first phase of
// StateTest's own Run, exposed separately for callers that want to
// inspect a mismatching replay rather than have it turned into an
// error.
func (s Scenario) RunNoVerify(ctx context.Context) (replay.Outcome, error) {
	shared := objectruntime.NewShared()
	vm := s.NewVM()
	return replay.Replay(ctx, vm, shared, s.State)
}

// Run replays the scenario and verifies the comparison report is a
// perfect match, mirroring StateTest.Run's two-step "RunNoVerify, then
// check the post-state root/logs" structure — here the "post-state"
// being checked is the replay.ComparisonReport's four criteria rather
// than a state root.
func (s Scenario) Run(ctx context.Context) (replay.Outcome, error) {
	out, err := s.RunNoVerify(ctx)
	if err != nil {
		return out, err
	}
	if out.Report.MatchScore != 1.0 {
		return out, fmt.Errorf(
			"replaytest: outcome mismatch for %s: match_score=%.2f (status=%v created=%v mutated=%v deleted=%v)",
			s.Digest, out.Report.MatchScore,
			out.Report.StatusMatch, out.Report.CreatedCountMatch,
			out.Report.MutatedCountMatch, out.Report.DeletedCountMatch,
		)
	}
	return out, nil
}

// RunScenario fetches digest's replay state from p, then runs and
// verifies it in one call — the common case for a test that just
// wants to assert one historical transaction replays cleanly.
func RunScenario(ctx context.Context, p *provider.Provider, digest sui.Digest, newVM func() vmhost.VM) (replay.Outcome, error) {
	state, err := p.FetchReplayState(ctx, digest)
	if err != nil {
		return replay.Outcome{}, fmt.Errorf("replaytest: fetch replay state for %s: %w", digest, err)
	}
	scenario := Scenario{Digest: digest, State: state, NewVM: newVM}
	return scenario.Run(ctx)
}

// RunScenarioNoVerify is RunScenario's unverified counterpart, for
// callers that want the outcome even when it doesn't match (e.g. to
// report a detailed mismatch rather than stop at the first one).
func RunScenarioNoVerify(ctx context.Context, p *provider.Provider, digest sui.Digest, newVM func() vmhost.VM) (replay.Outcome, error) {
	state, err := p.FetchReplayState(ctx, digest)
	if err != nil {
		return replay.Outcome{}, fmt.Errorf("replaytest: fetch replay state for %s: %w", digest, err)
	}
	scenario := Scenario{Digest: digest, State: state, NewVM: newVM}
	return scenario.RunNoVerify(ctx)
}
