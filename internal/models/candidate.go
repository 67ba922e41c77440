package models

import (
	"fmt"
)

// ServiceType is the commercial category of a promotable item
type ServiceType string

const (
	ServiceTypePromo     ServiceType = "promo"
	ServiceTypeNutrition ServiceType = "nutrition"
	ServiceTypeInsurance ServiceType = "insurance"
)

// ParseServiceType validates a raw service type string
func ParseServiceType(raw string) (ServiceType, error) {
	switch ServiceType(raw) {
	case ServiceTypePromo, ServiceTypeNutrition, ServiceTypeInsurance:
		return ServiceType(raw), nil
	default:
		return "", fmt.Errorf("invalid service type: %s", raw)
	}
}

// Context is the UI location or moment triggering a recommendation request
type Context string

const (
	ContextHomeFeed        Context = "home_feed"
	ContextPostVisit       Context = "post_visit"
	ContextPostVaccination Context = "post_vaccination"
	ContextPetProfile      Context = "pet_profile"
	ContextFAQView         Context = "faq_view"
	ContextMilestone       Context = "milestone"
	ContextNutritionReview Context = "nutrition_review"
	ContextInsuranceReview Context = "insurance_review"
)

// ParseContext validates a raw context string
func ParseContext(raw string) (Context, error) {
	switch Context(raw) {
	case ContextHomeFeed, ContextPostVisit, ContextPostVaccination, ContextPetProfile,
		ContextFAQView, ContextMilestone, ContextNutritionReview, ContextInsuranceReview:
		return Context(raw), nil
	default:
		return "", fmt.Errorf("invalid context: %s", raw)
	}
}

// Candidate statuses
const (
	CandidateStatusPublished = "published"
	CandidateStatusDraft     = "draft"
)

// SpeciesAll is the wildcard entry in a candidate's species targeting list
const SpeciesAll = "all"

// LifecycleAll is the wildcard entry in a candidate's lifecycle targeting list
const LifecycleAll = "all"

// FrequencyCap limits how often an owner/pet pair may be shown an
// impression. Counts, not durations; a nil field means uncapped.
type FrequencyCap struct {
	PerSession *int `json:"perSession,omitempty"`
	PerWeek    *int `json:"perWeek,omitempty"`
	PerEvent   *int `json:"perEvent,omitempty"`
}

// IsZero reports whether no cap dimension is set
func (c FrequencyCap) IsZero() bool {
	return c.PerSession == nil && c.PerWeek == nil && c.PerEvent == nil
}

// CampaignOverride is the currently active campaign joined to a candidate.
// Its contexts and frequency cap override the static context rule.
type CampaignOverride struct {
	CampaignID   string        `json:"campaignId"`
	Contexts     []Context     `json:"contexts,omitempty"`
	FrequencyCap *FrequencyCap `json:"frequencyCap,omitempty"`
	Priority     int           `json:"priority"`
}

// HasContext reports whether the campaign targets the given context
func (c *CampaignOverride) HasContext(context Context) bool {
	for _, ctx := range c.Contexts {
		if ctx == context {
			return true
		}
	}
	return false
}

// Candidate is a published promotable item, optionally carrying the active
// campaign override for the current date
type Candidate struct {
	ItemID              string            `json:"itemId"`
	TenantID            string            `json:"tenantId"`
	Category            string            `json:"category"`
	ServiceTypes        []ServiceType     `json:"serviceTypes"`
	Species             []string          `json:"species,omitempty"`
	LifecycleTargets    []string          `json:"lifecycleTargets,omitempty"`
	TagsInclude         []string          `json:"tagsInclude,omitempty"`
	TagsExclude         []string          `json:"tagsExclude,omitempty"`
	Priority            int               `json:"priority"`
	Description         *string           `json:"description,omitempty"`
	ExtendedDescription *string           `json:"extendedDescription,omitempty"`
	Status              string            `json:"status"`
	UpdatedTime         int64             `json:"updatedTime"`
	Campaign            *CampaignOverride `json:"campaign,omitempty"`
}

// PrimaryServiceType returns the first declared service type, defaulting to
// promo for legacy items with an empty list
func (c *Candidate) PrimaryServiceType() ServiceType {
	if len(c.ServiceTypes) == 0 {
		return ServiceTypePromo
	}
	return c.ServiceTypes[0]
}

// HasServiceType reports whether the candidate carries the given service type
func (c *Candidate) HasServiceType(st ServiceType) bool {
	for _, s := range c.ServiceTypes {
		if s == st {
			return true
		}
	}
	return false
}

// HasDescription reports whether the candidate can later be explained to the
// owner. Items without any description text are not promotable.
func (c *Candidate) HasDescription() bool {
	if c.Description != nil && *c.Description != "" {
		return true
	}
	return c.ExtendedDescription != nil && *c.ExtendedDescription != ""
}

// EffectiveFrequencyCap returns the campaign cap when present, otherwise the
// supplied context rule cap
func (c *Candidate) EffectiveFrequencyCap(ruleCap FrequencyCap) FrequencyCap {
	if c.Campaign != nil && c.Campaign.FrequencyCap != nil {
		return *c.Campaign.FrequencyCap
	}
	return ruleCap
}
