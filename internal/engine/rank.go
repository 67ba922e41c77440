package engine

import (
	"sort"
	"time"
)

// pickWinner orders candidates by priority desc, match score desc, updated
// time desc, then resolves the remaining top tier with the pet/day hash so
// that repeated calls for the same pet on the same day pick the same item
// while different pets rotate across the tied items.
func pickWinner(candidates []scoredCandidate, petID string, day time.Time) *scoredCandidate {
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.candidate.Priority != b.candidate.Priority {
			return a.candidate.Priority > b.candidate.Priority
		}
		if a.matchScore != b.matchScore {
			return a.matchScore > b.matchScore
		}
		return a.candidate.UpdatedTime > b.candidate.UpdatedTime
	})

	top := candidates[0]
	tier := 1
	for tier < len(candidates) {
		c := candidates[tier]
		if c.candidate.Priority != top.candidate.Priority || c.matchScore != top.matchScore {
			break
		}
		tier++
	}

	winner := candidates[TieBreakIndex(petID, day, tier)]
	return &winner
}
