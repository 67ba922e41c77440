package engine

import (
	"github.com/abupet/reco-engine/internal/models"
)

// ContextRule is the static configuration for one presentation context.
// Rules are compiled in, not stored per request; campaign overrides may
// replace the frequency cap and the context targeting per item.
type ContextRule struct {
	Context models.Context

	// AllowedCategories nil means any category is eligible, narrowed only
	// by tag matching
	AllowedCategories []string

	FrequencyCap        models.FrequencyCap
	AllowedServiceTypes []models.ServiceType
}

// AllowsCategory reports whether the rule admits the given category
func (r *ContextRule) AllowsCategory(category string) bool {
	if r.AllowedCategories == nil {
		return true
	}
	for _, c := range r.AllowedCategories {
		if c == category {
			return true
		}
	}
	return false
}

// AllowsServiceType reports whether the rule admits the given service type
func (r *ContextRule) AllowsServiceType(st models.ServiceType) bool {
	for _, s := range r.AllowedServiceTypes {
		if s == st {
			return true
		}
	}
	return false
}

// DefaultServiceType returns the service type used when the caller does not
// supply one
func (r *ContextRule) DefaultServiceType() models.ServiceType {
	if len(r.AllowedServiceTypes) == 0 {
		return models.ServiceTypePromo
	}
	return r.AllowedServiceTypes[0]
}

func intPtr(v int) *int {
	return &v
}

var contextRules = map[models.Context]ContextRule{
	models.ContextHomeFeed: {
		Context:             models.ContextHomeFeed,
		AllowedCategories:   nil,
		FrequencyCap:        models.FrequencyCap{PerSession: intPtr(1), PerWeek: intPtr(3)},
		AllowedServiceTypes: []models.ServiceType{models.ServiceTypePromo, models.ServiceTypeNutrition, models.ServiceTypeInsurance},
	},
	models.ContextPostVisit: {
		Context:             models.ContextPostVisit,
		AllowedCategories:   []string{"aftercare", "nutrition", "wellness"},
		FrequencyCap:        models.FrequencyCap{PerSession: intPtr(1), PerWeek: intPtr(2)},
		AllowedServiceTypes: []models.ServiceType{models.ServiceTypePromo, models.ServiceTypeNutrition},
	},
	models.ContextPostVaccination: {
		Context:             models.ContextPostVaccination,
		AllowedCategories:   []string{"wellness", "prevention"},
		FrequencyCap:        models.FrequencyCap{PerSession: intPtr(1), PerWeek: intPtr(2)},
		AllowedServiceTypes: []models.ServiceType{models.ServiceTypePromo},
	},
	models.ContextPetProfile: {
		Context:             models.ContextPetProfile,
		AllowedCategories:   nil,
		FrequencyCap:        models.FrequencyCap{PerSession: intPtr(2), PerWeek: intPtr(5)},
		AllowedServiceTypes: []models.ServiceType{models.ServiceTypePromo, models.ServiceTypeNutrition, models.ServiceTypeInsurance},
	},
	models.ContextFAQView: {
		Context:             models.ContextFAQView,
		AllowedCategories:   []string{"education"},
		FrequencyCap:        models.FrequencyCap{PerSession: intPtr(1)},
		AllowedServiceTypes: []models.ServiceType{models.ServiceTypePromo},
	},
	models.ContextMilestone: {
		Context:             models.ContextMilestone,
		AllowedCategories:   []string{"wellness", "nutrition"},
		FrequencyCap:        models.FrequencyCap{PerSession: intPtr(1), PerWeek: intPtr(1)},
		AllowedServiceTypes: []models.ServiceType{models.ServiceTypePromo, models.ServiceTypeNutrition},
	},
	models.ContextNutritionReview: {
		Context:             models.ContextNutritionReview,
		AllowedCategories:   []string{"nutrition"},
		FrequencyCap:        models.FrequencyCap{PerSession: intPtr(2), PerWeek: intPtr(4), PerEvent: intPtr(1)},
		AllowedServiceTypes: []models.ServiceType{models.ServiceTypeNutrition},
	},
	models.ContextInsuranceReview: {
		Context:             models.ContextInsuranceReview,
		AllowedCategories:   []string{"insurance"},
		FrequencyCap:        models.FrequencyCap{PerSession: intPtr(2), PerWeek: intPtr(4), PerEvent: intPtr(1)},
		AllowedServiceTypes: []models.ServiceType{models.ServiceTypeInsurance},
	},
}

// RuleFor returns the static rule for a context
func RuleFor(context models.Context) (ContextRule, bool) {
	rule, ok := contextRules[context]
	return rule, ok
}
