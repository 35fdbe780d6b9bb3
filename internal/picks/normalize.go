package picks

import (
	"macro-picks/internal/experts"
	"macro-picks/internal/types"
)

const (
	MaxPicks          = 5
	MaxExpertsPerPick = 3
	DefaultConfidence = 5
)

// NormalizeReport counts what Normalize removed.
type NormalizeReport struct {
	DroppedExperts int // not on the allow-list
	TrimmedExperts int // valid but past MaxExpertsPerPick
	DroppedPicks   int
}

// Normalize filters each pick's experts against allow, keeps at most
// MaxExpertsPerPick of them and truncates the list to MaxPicks. The input is
// left untouched.
func Normalize(out types.PicksOutput, allow experts.AllowList) (types.PicksOutput, NormalizeReport) {
	var report NormalizeReport

	n := len(out.Picks)
	if n > MaxPicks {
		report.DroppedPicks = n - MaxPicks
		n = MaxPicks
	}

	kept := (types.PicksOutput{Picks: out.Picks[:n]}).Clone()
	res := types.PicksOutput{Picks: make([]types.Pick, 0, n)}
	for _, p := range kept.Picks {
		valid := make([]string, 0, MaxExpertsPerPick)
		for _, e := range p.BestExperts {
			if !allow.Contains(e) {
				report.DroppedExperts++
				continue
			}
			if len(valid) == MaxExpertsPerPick {
				report.TrimmedExperts++
				continue
			}
			valid = append(valid, e)
		}
		p.BestExperts = valid
		res.Picks = append(res.Picks, p)
	}
	return res, report
}

// FillConfidence sets DefaultConfidence on every pick that has none and
// returns how many were filled.
func FillConfidence(out *types.PicksOutput) int {
	filled := 0
	for i := range out.Picks {
		if out.Picks[i].Confidence == nil {
			c := DefaultConfidence
			out.Picks[i].Confidence = &c
			filled++
		}
	}
	return filled
}

// Empty reports whether nothing was removed.
func (r NormalizeReport) Empty() bool {
	return r.DroppedExperts == 0 && r.TrimmedExperts == 0 && r.DroppedPicks == 0
}
