package engine

import (
	"context"

	"github.com/abupet/reco-engine/internal/metrics"
	"github.com/abupet/reco-engine/internal/models"
)

// scoredCandidate is a candidate that survived eligibility filtering,
// carrying its tag match score
type scoredCandidate struct {
	candidate   models.Candidate
	matchScore  int
	matchedTags []string
}

// clinicalScoringContexts is the fixed high-sensitivity allow-list: the only
// contexts where clinical tags may influence scoring or be reported as
// matched, and then only under explicit clinical-tags consent.
var clinicalScoringContexts = map[models.Context]bool{
	models.ContextPostVisit:       true,
	models.ContextPostVaccination: true,
}

// filterEligible applies the eligibility checks to each candidate in order,
// excluding on the first failing check, then scores the survivors.
//
// ForcedPreview mode skips every marketing-preference check and keeps only
// the vet veto and the missing-description check: the veto is a clinical
// safety measure, not a preference, so it is deliberately not parameterized
// by mode.
func (e *Engine) filterEligible(
	ctx context.Context,
	req SelectRequest,
	rule ContextRule,
	consent models.EffectiveConsent,
	snapshot *models.PetTagSnapshot,
	candidates []models.Candidate,
) []scoredCandidate {
	var eligible []scoredCandidate

	for i := range candidates {
		candidate := &candidates[i]

		if reason := e.excludeReason(ctx, req, rule, consent, snapshot, candidate); reason != "" {
			metrics.RecordExclusion(reason)
			e.logger.WithFields(map[string]interface{}{
				"item_id": candidate.ItemID,
				"pet_id":  req.PetID,
				"reason":  reason,
			}).Debug("Candidate excluded")
			continue
		}

		score, matched := matchScore(req.Context, consent, snapshot, candidate)
		eligible = append(eligible, scoredCandidate{
			candidate:   *candidate,
			matchScore:  score,
			matchedTags: matched,
		})
	}

	return eligible
}

// excludeReason evaluates the ordered exclusion checks and returns the first
// failing one, or "" when the candidate is eligible
func (e *Engine) excludeReason(
	ctx context.Context,
	req SelectRequest,
	rule ContextRule,
	consent models.EffectiveConsent,
	snapshot *models.PetTagSnapshot,
	candidate *models.Candidate,
) string {
	normal := req.Mode == ModeNormal

	if normal && !consentAllowsCandidate(consent, candidate) {
		return "brand_consent"
	}

	if normal && excludedByTargeting(string(snapshot.Species), candidate.Species, models.SpeciesAll) {
		return "species"
	}

	if normal && excludedByTargeting(string(snapshot.Lifecycle), candidate.LifecycleTargets, models.LifecycleAll) {
		return "lifecycle"
	}

	if normal && !rule.AllowsCategory(candidate.Category) {
		return "category"
	}

	if normal && candidate.Campaign != nil && len(candidate.Campaign.Contexts) > 0 &&
		!candidate.Campaign.HasContext(req.Context) {
		return "campaign_context"
	}

	// Vet veto: evaluated in every mode. A store failure skips the veto for
	// this one candidate and is logged, so the absence of the check is
	// never silent.
	flagged, err := e.vetFlags.HasActiveFlag(ctx, req.PetID, candidate.ItemID)
	if err != nil {
		e.logger.WithError(err).WithFields(map[string]interface{}{
			"pet_id":  req.PetID,
			"item_id": candidate.ItemID,
		}).Warn("Vet flag check unavailable, veto skipped for candidate")
		metrics.RecordDependencyFailure("vet_flag_store")
	} else if flagged {
		return "vet_flag"
	}

	if normal && anyTagPresent(snapshot, candidate.TagsExclude) {
		return "excluded_tag"
	}

	if !candidate.HasDescription() {
		return "missing_description"
	}

	return ""
}

// excludedByTargeting implements the shared species/lifecycle check: a known
// pet value against a non-empty target list that contains neither the
// wildcard nor the value excludes the candidate. An unknown pet value never
// excludes.
func excludedByTargeting(value string, targets []string, wildcard string) bool {
	if value == "" || len(targets) == 0 {
		return false
	}
	for _, t := range targets {
		if t == wildcard || t == value {
			return false
		}
	}
	return true
}

// anyTagPresent reports whether any of the listed tags is in the pet's tag set
func anyTagPresent(snapshot *models.PetTagSnapshot, tags []string) bool {
	for _, tag := range tags {
		if snapshot.HasTag(tag) {
			return true
		}
	}
	return false
}

// matchScore counts the candidate's include tags present in the pet's tag
// set. Clinical entries are removed from the include list first unless the
// owner consented to clinical tags AND the context is in the fixed
// high-sensitivity allow-list; the sensitivity filter only prevents clinical
// tags from inflating the score or being reported as matched, it never
// excludes the candidate.
func matchScore(
	context models.Context,
	consent models.EffectiveConsent,
	snapshot *models.PetTagSnapshot,
	candidate *models.Candidate,
) (int, []string) {
	clinicalAllowed := ClinicalTagsAllowed(consent) && clinicalScoringContexts[context]

	matched := make([]string, 0, len(candidate.TagsInclude))
	for _, tag := range candidate.TagsInclude {
		if models.IsClinicalTag(tag) && !clinicalAllowed {
			continue
		}
		if snapshot.HasTag(tag) {
			matched = append(matched, tag)
		}
	}

	return len(matched), matched
}
