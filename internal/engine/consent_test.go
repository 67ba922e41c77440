package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abupet/reco-engine/internal/models"
)

func TestFoldConsentDefaults(t *testing.T) {
	effective := FoldConsent(nil)

	assert.Equal(t, models.ConsentStatusOptedIn, effective.MarketingGlobal)
	assert.Equal(t, models.ConsentStatusOptedOut, effective.ClinicalTags)
	assert.Equal(t, models.ConsentStatusOptedOut, effective.NutritionPlan)
	assert.Equal(t, models.ConsentStatusOptedOut, effective.InsuranceDataSharing)
	assert.Empty(t, effective.BrandConsents)
}

func TestFoldConsentOverridesDefaults(t *testing.T) {
	records := []models.ConsentRecord{
		{ConsentType: models.ConsentTypeMarketingGlobal, Scope: models.ScopeGlobal, Status: models.ConsentStatusOptedOut},
		{ConsentType: models.ConsentTypeClinicalTags, Scope: models.ScopeGlobal, Status: models.ConsentStatusOptedIn},
		{ConsentType: models.ConsentTypeMarketingBrand, Scope: "tenant-acme", Status: models.ConsentStatusOptedOut},
		{ConsentType: models.ConsentTypeNutritionBrand, Scope: "tenant-chow", Status: models.ConsentStatusOptedIn},
	}

	effective := FoldConsent(records)

	assert.Equal(t, models.ConsentStatusOptedOut, effective.MarketingGlobal)
	assert.Equal(t, models.ConsentStatusOptedIn, effective.ClinicalTags)
	assert.Equal(t, models.ConsentStatusOptedOut, effective.BrandConsents["tenant-acme"])
	assert.Equal(t, models.ConsentStatusOptedIn, effective.NutritionBrandConsents["tenant-chow"])
}

func TestMarketingAllowedBrandScoping(t *testing.T) {
	effective := models.DefaultEffectiveConsent()
	effective.BrandConsents["tenant-acme"] = models.ConsentStatusOptedOut
	effective.BrandConsents["tenant-pending"] = models.ConsentStatusPending

	// No brand record inherits the global opt-in.
	assert.True(t, MarketingAllowed(effective, "tenant-other"))
	assert.True(t, MarketingAllowed(effective, ""))

	assert.False(t, MarketingAllowed(effective, "tenant-acme"))
	assert.False(t, MarketingAllowed(effective, "tenant-pending"))
}

func TestMarketingGlobalOptOutBlocksAllBrands(t *testing.T) {
	effective := models.DefaultEffectiveConsent()
	effective.MarketingGlobal = models.ConsentStatusOptedOut
	effective.BrandConsents["tenant-acme"] = models.ConsentStatusOptedIn

	assert.False(t, MarketingAllowed(effective, "tenant-acme"))
	assert.False(t, MarketingAllowed(effective, ""))
}

func TestNutritionAndInsuranceDefaultClosed(t *testing.T) {
	effective := models.DefaultEffectiveConsent()

	assert.False(t, NutritionAllowed(effective, "tenant-chow"))
	assert.False(t, InsuranceAllowed(effective, "tenant-cover"))

	effective.NutritionPlan = models.ConsentStatusOptedIn
	effective.InsuranceDataSharing = models.ConsentStatusOptedIn

	assert.True(t, NutritionAllowed(effective, "tenant-chow"))
	assert.True(t, InsuranceAllowed(effective, "tenant-cover"))

	effective.InsuranceBrandConsents["tenant-cover"] = models.ConsentStatusOptedOut
	assert.False(t, InsuranceAllowed(effective, "tenant-cover"))
}

func TestConsentAllowsCandidateByServiceType(t *testing.T) {
	effective := models.DefaultEffectiveConsent()

	promo := &models.Candidate{TenantID: "tenant-a", ServiceTypes: []models.ServiceType{models.ServiceTypePromo}}
	nutrition := &models.Candidate{TenantID: "tenant-a", ServiceTypes: []models.ServiceType{models.ServiceTypeNutrition}}
	legacy := &models.Candidate{TenantID: "tenant-a"}

	assert.True(t, consentAllowsCandidate(effective, promo))
	assert.False(t, consentAllowsCandidate(effective, nutrition))
	// An empty service type list is treated as promo.
	assert.True(t, consentAllowsCandidate(effective, legacy))
}
