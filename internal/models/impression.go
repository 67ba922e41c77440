package models

import (
	"fmt"
)

// Impression event types
const (
	EventTypeImpression = "impression"
	EventTypeClick      = "click"
	EventTypeDismiss    = "dismiss"
)

// ParseEventType validates a raw event type string
func ParseEventType(raw string) (string, error) {
	switch raw {
	case EventTypeImpression, EventTypeClick, EventTypeDismiss:
		return raw, nil
	default:
		return "", fmt.Errorf("invalid event type: %s", raw)
	}
}

// ImpressionEvent represents the IMPRESSION_EVENT table. Append-only; it is
// the sole ledger the frequency-cap guard counts against and is never
// mutated after insert.
type ImpressionEvent struct {
	EventID      string  `db:"EVENT_ID" json:"eventId"`
	OwnerID      string  `db:"OWNER_ID" json:"ownerId"`
	PetID        string  `db:"PET_ID" json:"petId"`
	ItemID       *string `db:"ITEM_ID" json:"promoItemId,omitempty"`
	EventType    string  `db:"EVENT_TYPE" json:"eventType"`
	Context      Context `db:"CONTEXT" json:"context"`
	OccurredTime int64   `db:"OCCURRED_TIME" json:"occurredAt"`
}

// ImpressionCreateRequest is the API payload for recording an impression.
// The caller records the event after acting on a Selection; the engine
// itself performs no writes.
type ImpressionCreateRequest struct {
	OwnerID   string `json:"ownerId" binding:"required"`
	PetID     string `json:"petId" binding:"required"`
	ItemID    string `json:"promoItemId,omitempty"`
	EventType string `json:"eventType" binding:"required"`
	Context   string `json:"context" binding:"required"`
}
