package utils

import (
	"fmt"
	"strings"
)

// ValidateOwnerID validates owner ID format
func ValidateOwnerID(ownerID string) error {
	if ownerID == "" {
		return fmt.Errorf("owner ID cannot be empty")
	}
	if len(ownerID) > 255 {
		return fmt.Errorf("owner ID too long (max 255 characters)")
	}
	return nil
}

// ValidatePetID validates pet ID format
func ValidatePetID(petID string) error {
	if petID == "" {
		return fmt.Errorf("pet ID cannot be empty")
	}
	if len(petID) > 255 {
		return fmt.Errorf("pet ID too long (max 255 characters)")
	}
	return nil
}

// ValidateTenantID validates tenant (brand) ID format
func ValidateTenantID(tenantID string) error {
	if tenantID == "" {
		return fmt.Errorf("tenant ID cannot be empty")
	}
	if len(tenantID) > 255 {
		return fmt.Errorf("tenant ID too long (max 255 characters)")
	}
	return nil
}

// SanitizeString removes dangerous characters from user input
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")
	// Trim whitespace
	input = strings.TrimSpace(input)
	return input
}

// ValidateRequired validates that a field is not empty
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateMaxLength validates maximum string length
func ValidateMaxLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%s exceeds maximum length of %d characters", fieldName, maxLength)
	}
	return nil
}

// IsAlphanumeric checks if a string contains only alphanumeric characters
func IsAlphanumeric(s string) bool {
	for _, char := range s {
		if !((char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9')) {
			return false
		}
	}
	return true
}
