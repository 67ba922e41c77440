package models

import (
	"fmt"
)

// ConsentType identifies one axis of the owner consent hierarchy
type ConsentType string

const (
	ConsentTypeMarketingGlobal      ConsentType = "marketing_global"
	ConsentTypeMarketingBrand       ConsentType = "marketing_brand"
	ConsentTypeClinicalTags         ConsentType = "clinical_tags"
	ConsentTypeNutritionPlan        ConsentType = "nutrition_plan"
	ConsentTypeNutritionBrand       ConsentType = "nutrition_brand"
	ConsentTypeInsuranceDataSharing ConsentType = "insurance_data_sharing"
	ConsentTypeInsuranceBrand       ConsentType = "insurance_brand"
)

// ParseConsentType validates a raw consent type string
func ParseConsentType(raw string) (ConsentType, error) {
	switch ConsentType(raw) {
	case ConsentTypeMarketingGlobal, ConsentTypeMarketingBrand, ConsentTypeClinicalTags,
		ConsentTypeNutritionPlan, ConsentTypeNutritionBrand,
		ConsentTypeInsuranceDataSharing, ConsentTypeInsuranceBrand:
		return ConsentType(raw), nil
	default:
		return "", fmt.Errorf("invalid consent type: %s", raw)
	}
}

// IsBrandScoped reports whether the consent type takes a brand scope
// instead of the global scope
func (t ConsentType) IsBrandScoped() bool {
	switch t {
	case ConsentTypeMarketingBrand, ConsentTypeNutritionBrand, ConsentTypeInsuranceBrand:
		return true
	default:
		return false
	}
}

// ConsentStatus is the state of a single consent record
type ConsentStatus string

const (
	ConsentStatusOptedIn  ConsentStatus = "opted_in"
	ConsentStatusOptedOut ConsentStatus = "opted_out"
	ConsentStatusPending  ConsentStatus = "pending"
)

// ParseConsentStatus validates a raw consent status string
func ParseConsentStatus(raw string) (ConsentStatus, error) {
	switch ConsentStatus(raw) {
	case ConsentStatusOptedIn, ConsentStatusOptedOut, ConsentStatusPending:
		return ConsentStatus(raw), nil
	default:
		return "", fmt.Errorf("invalid consent status: %s", raw)
	}
}

// ScopeGlobal is the scope value for non-brand-scoped consent records
const ScopeGlobal = "global"

// ConsentRecord represents the CONSENT_RECORD table. At most one active row
// exists per (OWNER_ID, CONSENT_TYPE, SCOPE); rows are never deleted.
type ConsentRecord struct {
	ConsentID   string        `db:"CONSENT_ID" json:"consentId"`
	OwnerID     string        `db:"OWNER_ID" json:"ownerId"`
	ConsentType ConsentType   `db:"CONSENT_TYPE" json:"consentType"`
	Scope       string        `db:"SCOPE" json:"scope"`
	Status      ConsentStatus `db:"STATUS" json:"status"`
	CreatedTime int64         `db:"CREATED_TIME" json:"createdTime"`
	UpdatedTime int64         `db:"UPDATED_TIME" json:"updatedTime"`
}

// ConsentStatusAudit represents the CONSENT_STATUS_AUDIT table, an
// append-only log of every consent change
type ConsentStatusAudit struct {
	AuditID        string      `db:"AUDIT_ID" json:"auditId"`
	ConsentID      string      `db:"CONSENT_ID" json:"consentId"`
	OwnerID        string      `db:"OWNER_ID" json:"ownerId"`
	ConsentType    ConsentType `db:"CONSENT_TYPE" json:"consentType"`
	Scope          string      `db:"SCOPE" json:"scope"`
	PreviousStatus *string     `db:"PREVIOUS_STATUS" json:"previousStatus,omitempty"`
	NewStatus      string      `db:"NEW_STATUS" json:"newStatus"`
	ChangedBy      *string     `db:"CHANGED_BY" json:"changedBy,omitempty"`
	ActionTime     int64       `db:"ACTION_TIME" json:"actionTime"`
}

// EffectiveConsent is the request-scoped resolved view of an owner's consent
// rows. It is recomputed on every decision and never cached beyond one call.
type EffectiveConsent struct {
	MarketingGlobal        ConsentStatus            `json:"marketingGlobal"`
	ClinicalTags           ConsentStatus            `json:"clinicalTags"`
	NutritionPlan          ConsentStatus            `json:"nutritionPlan"`
	InsuranceDataSharing   ConsentStatus            `json:"insuranceDataSharing"`
	BrandConsents          map[string]ConsentStatus `json:"brandConsents"`
	NutritionBrandConsents map[string]ConsentStatus `json:"nutritionBrandConsents"`
	InsuranceBrandConsents map[string]ConsentStatus `json:"insuranceBrandConsents"`
}

// DefaultEffectiveConsent returns the view applied when an owner has no
// consent rows, or when the consent store is unavailable. General marketing
// defaults to opted in; every sensitive axis defaults to opted out.
func DefaultEffectiveConsent() EffectiveConsent {
	return EffectiveConsent{
		MarketingGlobal:        ConsentStatusOptedIn,
		ClinicalTags:           ConsentStatusOptedOut,
		NutritionPlan:          ConsentStatusOptedOut,
		InsuranceDataSharing:   ConsentStatusOptedOut,
		BrandConsents:          make(map[string]ConsentStatus),
		NutritionBrandConsents: make(map[string]ConsentStatus),
		InsuranceBrandConsents: make(map[string]ConsentStatus),
	}
}

// ConsentUpsertRequest is the API payload for creating or updating a consent
type ConsentUpsertRequest struct {
	Type   string `json:"type" binding:"required"`
	Scope  string `json:"scope,omitempty"`
	Status string `json:"status" binding:"required"`
}

// ConsentListResponse is the API response for listing an owner's consents.
// Effective is the resolved view including defaults for missing rows.
type ConsentListResponse struct {
	OwnerID   string           `json:"ownerId"`
	Records   []ConsentRecord  `json:"records"`
	Effective EffectiveConsent `json:"effective"`
}
