package service

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/abupet/reco-engine/internal/models"
)

func newValidationOnlyConsentService() *ConsentService {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return &ConsentService{logger: logger}
}

// TestUpsertConsent_RejectsEmptyOwner tests owner validation before any
// storage access
func TestUpsertConsent_RejectsEmptyOwner(t *testing.T) {
	service := newValidationOnlyConsentService()

	record, err := service.UpsertConsent(context.Background(), "", &models.ConsentUpsertRequest{
		Type:   "marketing_global",
		Status: "opted_out",
	}, "")

	assert.Error(t, err)
	assert.Nil(t, record)
}

// TestUpsertConsent_RejectsUnknownType tests consent type validation
func TestUpsertConsent_RejectsUnknownType(t *testing.T) {
	service := newValidationOnlyConsentService()

	record, err := service.UpsertConsent(context.Background(), "owner-1", &models.ConsentUpsertRequest{
		Type:   "telemetry",
		Status: "opted_in",
	}, "")

	assert.Error(t, err)
	assert.Nil(t, record)
	assert.Contains(t, err.Error(), "invalid consent type")
}

// TestUpsertConsent_RejectsUnknownStatus tests status validation
func TestUpsertConsent_RejectsUnknownStatus(t *testing.T) {
	service := newValidationOnlyConsentService()

	record, err := service.UpsertConsent(context.Background(), "owner-1", &models.ConsentUpsertRequest{
		Type:   "marketing_global",
		Status: "maybe",
	}, "")

	assert.Error(t, err)
	assert.Nil(t, record)
	assert.Contains(t, err.Error(), "invalid consent status")
}

// TestUpsertConsent_BrandTypeRequiresScope tests the scope rules for
// brand-scoped consent types
func TestUpsertConsent_BrandTypeRequiresScope(t *testing.T) {
	service := newValidationOnlyConsentService()

	record, err := service.UpsertConsent(context.Background(), "owner-1", &models.ConsentUpsertRequest{
		Type:   "marketing_brand",
		Status: "opted_out",
	}, "")

	assert.Error(t, err)
	assert.Nil(t, record)
	assert.Contains(t, err.Error(), "requires a brand scope")
}

// TestUpsertConsent_GlobalTypeRejectsBrandScope tests that global consent
// types refuse a brand scope
func TestUpsertConsent_GlobalTypeRejectsBrandScope(t *testing.T) {
	service := newValidationOnlyConsentService()

	record, err := service.UpsertConsent(context.Background(), "owner-1", &models.ConsentUpsertRequest{
		Type:   "clinical_tags",
		Scope:  "tenant-acme",
		Status: "opted_in",
	}, "")

	assert.Error(t, err)
	assert.Nil(t, record)
	assert.Contains(t, err.Error(), "does not take a brand scope")
}

// TestListConsents_RejectsEmptyOwner tests owner validation on the read path
func TestListConsents_RejectsEmptyOwner(t *testing.T) {
	service := newValidationOnlyConsentService()

	resp, err := service.ListConsents(context.Background(), "")

	assert.Error(t, err)
	assert.Nil(t, resp)
}
