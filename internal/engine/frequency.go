package engine

import (
	"context"

	"github.com/abupet/reco-engine/internal/metrics"
	"github.com/abupet/reco-engine/internal/models"
	"github.com/abupet/reco-engine/pkg/utils"
)

// applyFrequencyCaps removes candidates whose effective frequency cap is
// already met. Each cap dimension is independently sufficient to exclude.
// A count failure fails open: the candidate is treated as not capped and
// the failure is logged, never surfaced to the caller.
func (e *Engine) applyFrequencyCaps(ctx context.Context, req SelectRequest, rule ContextRule, candidates []scoredCandidate) []scoredCandidate {
	kept := candidates[:0]

	for _, sc := range candidates {
		cap := sc.candidate.EffectiveFrequencyCap(rule.FrequencyCap)
		if cap.IsZero() {
			kept = append(kept, sc)
			continue
		}

		if e.capBreached(ctx, req, sc.candidate.ItemID, cap) {
			metrics.RecordExclusion("frequency_cap")
			e.logger.WithFields(map[string]interface{}{
				"item_id": sc.candidate.ItemID,
				"pet_id":  req.PetID,
				"context": req.Context,
			}).Debug("Candidate frequency capped")
			continue
		}

		kept = append(kept, sc)
	}

	return kept
}

// capBreached checks the three cap dimensions against recorded impressions
func (e *Engine) capBreached(ctx context.Context, req SelectRequest, itemID string, cap models.FrequencyCap) bool {
	now := e.now()
	todayStart := utils.StartOfDayMillis(now)

	if cap.PerSession != nil {
		count, err := e.events.CountImpressions(ctx, req.OwnerID, req.PetID, req.Context, "", todayStart)
		if err != nil {
			e.countFailure(err, req, itemID, "per_session")
		} else if count >= *cap.PerSession {
			return true
		}
	}

	if cap.PerWeek != nil {
		weekStart := utils.TrailingWindowMillis(now, 7)
		count, err := e.events.CountImpressions(ctx, req.OwnerID, req.PetID, "", "", weekStart)
		if err != nil {
			e.countFailure(err, req, itemID, "per_week")
		} else if count >= *cap.PerWeek {
			return true
		}
	}

	if cap.PerEvent != nil {
		count, err := e.events.CountImpressions(ctx, req.OwnerID, req.PetID, req.Context, itemID, todayStart)
		if err != nil {
			e.countFailure(err, req, itemID, "per_event")
		} else if count >= *cap.PerEvent {
			return true
		}
	}

	return false
}

func (e *Engine) countFailure(err error, req SelectRequest, itemID, dimension string) {
	e.logger.WithError(err).WithFields(map[string]interface{}{
		"pet_id":    req.PetID,
		"item_id":   itemID,
		"dimension": dimension,
	}).Warn("Impression count unavailable, cap not enforced")
	metrics.RecordDependencyFailure("impression_store")
}
