package replay

import (
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/provider"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/vmhost"
)

// ComparisonReport is a structured pass/fail breakdown of the replayed
// effects against the authoritative on-chain effects, plus the
// fraction of criteria satisfied.
type ComparisonReport struct {
	StatusMatch       bool
	CreatedCountMatch bool
	MutatedCountMatch bool
	DeletedCountMatch bool
	MatchScore        float64
}

// Compare produces the ComparisonReport for one replayed Effects
// against its authoritative counterpart. match_score is the fraction
// of the four criteria satisfied.
func Compare(got vmhost.Effects, want provider.AuthoritativeEffects) ComparisonReport {
	r := ComparisonReport{
		StatusMatch:       got.Success == want.Success,
		CreatedCountMatch: len(got.Created) == want.CreatedCount,
		MutatedCountMatch: len(got.Mutated) == want.MutatedCount,
		DeletedCountMatch: len(got.Deleted) == want.DeletedCount,
	}
	satisfied := 0
	for _, ok := range []bool{r.StatusMatch, r.CreatedCountMatch, r.MutatedCountMatch, r.DeletedCountMatch} {
		if ok {
			satisfied++
		}
	}
	r.MatchScore = float64(satisfied) / 4.0
	return r
}
