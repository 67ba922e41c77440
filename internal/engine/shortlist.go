package engine

import (
	"context"

	"github.com/abupet/reco-engine/internal/metrics"
	"github.com/abupet/reco-engine/internal/models"
	"github.com/abupet/reco-engine/pkg/utils"
)

// tryShortlist consults the AI shortlist for the pet and returns the first
// entry that still passes every safety and consent check. A nil return means
// the caller should fall through to fresh eligibility evaluation; the
// shortlist never blocks a selection.
//
// When every cached entry fails validation the stale shortlist is
// invalidated in the background so the next precompute rebuilds it.
func (e *Engine) tryShortlist(
	ctx context.Context,
	req SelectRequest,
	rule ContextRule,
	consent models.EffectiveConsent,
) *models.Selection {
	entries, err := e.shortlists.GetShortlist(ctx, req.PetID)
	if err != nil {
		e.logger.WithError(err).WithField("pet_id", req.PetID).Warn("Shortlist unavailable")
		metrics.RecordDependencyFailure("shortlist_cache")
		return nil
	}
	if len(entries) == 0 {
		return nil
	}

	// Session and weekly activity are entry-independent, so count once
	// for the whole shortlist.
	capped := e.shortlistCapReached(ctx, req, rule)

	var valid []models.ShortlistEntry
	for _, entry := range entries {
		if e.shortlistEntryValid(ctx, req, rule, consent, entry, capped) {
			valid = append(valid, entry)
		}
	}

	if len(valid) == 0 {
		e.invalidateShortlistAsync(req.PetID)
		return nil
	}

	// Same pet/day rotation rule as the ranking tie-break, so a cached
	// shortlist and a fresh run agree on stability within a day.
	entry := valid[TieBreakIndex(req.PetID, e.now(), len(valid))]
	return &models.Selection{
		PromoItemID: entry.CandidateID,
		TenantID:    entry.TenantID,
		Category:    entry.Category,
		MatchedTags: reportableMatchReasons(req.Context, consent, entry.MatchReasons),
		Source:      models.SourceAIRecommendation,
	}
}

// reportableMatchReasons applies the same sensitivity gate as scoring to a
// cached shortlist entry's match reasons: clinical tags recorded at
// precompute time must not surface after the owner opts out or outside the
// high-sensitivity contexts.
func reportableMatchReasons(context models.Context, consent models.EffectiveConsent, reasons []string) []string {
	clinicalAllowed := ClinicalTagsAllowed(consent) && clinicalScoringContexts[context]

	matched := make([]string, 0, len(reasons))
	for _, tag := range reasons {
		if models.IsClinicalTag(tag) && !clinicalAllowed {
			continue
		}
		matched = append(matched, tag)
	}
	return matched
}

// shortlistEntryValid re-applies the checks that may have changed since the
// shortlist was precomputed: consent, context rules, the vet veto, and
// frequency caps
func (e *Engine) shortlistEntryValid(
	ctx context.Context,
	req SelectRequest,
	rule ContextRule,
	consent models.EffectiveConsent,
	entry models.ShortlistEntry,
	capped bool,
) bool {
	if !MarketingAllowed(consent, "") {
		return false
	}

	switch entry.ServiceType {
	case models.ServiceTypeNutrition:
		if !NutritionAllowed(consent, entry.TenantID) {
			return false
		}
	case models.ServiceTypeInsurance:
		if !InsuranceAllowed(consent, entry.TenantID) {
			return false
		}
	default:
		if !MarketingAllowed(consent, entry.TenantID) {
			return false
		}
	}

	if !rule.AllowsCategory(entry.Category) {
		return false
	}
	if !rule.AllowsServiceType(entry.ServiceType) {
		return false
	}

	flagged, err := e.vetFlags.HasActiveFlag(ctx, req.PetID, entry.CandidateID)
	if err != nil {
		e.logger.WithError(err).WithFields(map[string]interface{}{
			"pet_id":  req.PetID,
			"item_id": entry.CandidateID,
		}).Warn("Vet flag check unavailable for shortlist entry")
		metrics.RecordDependencyFailure("vet_flag_store")
	} else if flagged {
		return false
	}

	return !capped
}

// shortlistCapReached applies the context rule's session and weekly caps to
// shortlist entries. Count failures fail open.
func (e *Engine) shortlistCapReached(ctx context.Context, req SelectRequest, rule ContextRule) bool {
	cap := rule.FrequencyCap
	now := e.now()

	if cap.PerSession != nil {
		count, err := e.events.CountImpressions(ctx, req.OwnerID, req.PetID, req.Context, "", utils.StartOfDayMillis(now))
		if err != nil {
			e.countFailure(err, req, "", "per_session")
		} else if count >= *cap.PerSession {
			return true
		}
	}

	if cap.PerWeek != nil {
		count, err := e.events.CountImpressions(ctx, req.OwnerID, req.PetID, "", "", utils.TrailingWindowMillis(now, 7))
		if err != nil {
			e.countFailure(err, req, "", "per_week")
		} else if count >= *cap.PerWeek {
			return true
		}
	}

	return false
}

func (e *Engine) invalidateShortlistAsync(petID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.invalidateTimeout)
		defer cancel()
		if err := e.shortlists.InvalidateShortlist(ctx, petID); err != nil {
			e.logger.WithError(err).WithField("pet_id", petID).Warn("Shortlist invalidation failed")
		}
	}()
}
