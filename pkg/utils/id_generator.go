package utils

import (
	"github.com/google/uuid"
)

// GenerateID generates a new plain UUID
func GenerateID() string {
	return uuid.New().String()
}

// GenerateConsentID generates a unique consent record ID
func GenerateConsentID() string {
	return "CONSENT-" + uuid.New().String()
}

// GenerateAuditID generates a unique consent audit ID
func GenerateAuditID() string {
	return "AUDIT-" + uuid.New().String()
}

// GenerateEventID generates a unique impression event ID
func GenerateEventID() string {
	return "EVT-" + uuid.New().String()
}

// IsValidUUID checks if a string is a valid UUID
func IsValidUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
