package models

// SelectionSource identifies which path produced a selection
type SelectionSource string

const (
	SourceAIRecommendation SelectionSource = "ai_recommendation"
	SourceEligibility      SelectionSource = "eligibility"
)

// Selection is the engine's output: the single item to show, or absent when
// there is nothing to show. The engine never persists it; the caller may
// record it as an ImpressionEvent.
type Selection struct {
	PromoItemID string          `json:"promoItemId"`
	TenantID    string          `json:"tenantId"`
	Category    string          `json:"category"`
	MatchedTags []string        `json:"matchedTags"`
	Source      SelectionSource `json:"sourceTag"`
}

// ShortlistEntry is one entry of a previously computed AI-ranked shortlist,
// cached out-of-band per pet
type ShortlistEntry struct {
	CandidateID  string      `json:"candidateId"`
	TenantID     string      `json:"tenantId"`
	Category     string      `json:"category"`
	ServiceType  ServiceType `json:"serviceType"`
	MatchReasons []string    `json:"matchReasons,omitempty"`
}
