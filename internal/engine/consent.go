package engine

import (
	"context"

	"github.com/abupet/reco-engine/internal/metrics"
	"github.com/abupet/reco-engine/internal/models"
)

// FoldConsent folds an owner's raw consent rows into the resolved
// request-scoped view, applying the type defaults for any missing
// (type, scope) pair. Pure; shared by the engine and the consent read API.
func FoldConsent(records []models.ConsentRecord) models.EffectiveConsent {
	effective := models.DefaultEffectiveConsent()

	for _, record := range records {
		switch record.ConsentType {
		case models.ConsentTypeMarketingGlobal:
			effective.MarketingGlobal = record.Status
		case models.ConsentTypeClinicalTags:
			effective.ClinicalTags = record.Status
		case models.ConsentTypeNutritionPlan:
			effective.NutritionPlan = record.Status
		case models.ConsentTypeInsuranceDataSharing:
			effective.InsuranceDataSharing = record.Status
		case models.ConsentTypeMarketingBrand:
			effective.BrandConsents[record.Scope] = record.Status
		case models.ConsentTypeNutritionBrand:
			effective.NutritionBrandConsents[record.Scope] = record.Status
		case models.ConsentTypeInsuranceBrand:
			effective.InsuranceBrandConsents[record.Scope] = record.Status
		}
	}

	return effective
}

// resolveConsent fetches and folds the owner's consent rows. A storage
// failure falls back to the all-defaults view: prudent for sensitive
// categories, permissive only for general marketing.
func (e *Engine) resolveConsent(ctx context.Context, ownerID string) models.EffectiveConsent {
	records, err := e.consents.GetByOwner(ctx, ownerID)
	if err != nil {
		e.logger.WithError(err).WithField("owner_id", ownerID).
			Warn("Consent store unavailable, falling back to default consent")
		metrics.RecordDependencyFailure("consent_store")
		return models.DefaultEffectiveConsent()
	}

	return FoldConsent(records)
}

// brandAllowed consults a brand map: an absent record inherits the global
// decision, an opted_out or pending record blocks
func brandAllowed(brands map[string]models.ConsentStatus, tenantID string) bool {
	if tenantID == "" {
		return true
	}
	status, ok := brands[tenantID]
	if !ok {
		return true
	}
	return status == models.ConsentStatusOptedIn
}

// MarketingAllowed reports whether general marketing content from the given
// brand may be shown. Pass an empty tenantID for the global gate alone.
func MarketingAllowed(c models.EffectiveConsent, tenantID string) bool {
	if c.MarketingGlobal != models.ConsentStatusOptedIn {
		return false
	}
	return brandAllowed(c.BrandConsents, tenantID)
}

// NutritionAllowed reports whether nutrition content from the given brand
// may be shown
func NutritionAllowed(c models.EffectiveConsent, tenantID string) bool {
	if c.NutritionPlan != models.ConsentStatusOptedIn {
		return false
	}
	return brandAllowed(c.NutritionBrandConsents, tenantID)
}

// InsuranceAllowed reports whether insurance content from the given brand
// may be shown
func InsuranceAllowed(c models.EffectiveConsent, tenantID string) bool {
	if c.InsuranceDataSharing != models.ConsentStatusOptedIn {
		return false
	}
	return brandAllowed(c.InsuranceBrandConsents, tenantID)
}

// ClinicalTagsAllowed reports whether clinical tags may influence scoring
func ClinicalTagsAllowed(c models.EffectiveConsent) bool {
	return c.ClinicalTags == models.ConsentStatusOptedIn
}

// consentAllowsCandidate selects the predicate matching the candidate's
// primary service type and evaluates it for the candidate's brand
func consentAllowsCandidate(c models.EffectiveConsent, candidate *models.Candidate) bool {
	switch candidate.PrimaryServiceType() {
	case models.ServiceTypeNutrition:
		return NutritionAllowed(c, candidate.TenantID)
	case models.ServiceTypeInsurance:
		return InsuranceAllowed(c, candidate.TenantID)
	default:
		return MarketingAllowed(c, candidate.TenantID)
	}
}
