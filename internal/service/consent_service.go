package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/abupet/reco-engine/internal/dao"
	"github.com/abupet/reco-engine/internal/database"
	"github.com/abupet/reco-engine/internal/engine"
	"github.com/abupet/reco-engine/internal/models"
	"github.com/abupet/reco-engine/pkg/utils"
)

// ConsentService handles business logic for owner consent operations
type ConsentService struct {
	consentDAO *dao.ConsentDAO
	auditDAO   *dao.ConsentAuditDAO
	db         *database.DB
	logger     *logrus.Logger
}

// NewConsentService creates a new consent service instance
func NewConsentService(
	consentDAO *dao.ConsentDAO,
	auditDAO *dao.ConsentAuditDAO,
	db *database.DB,
	logger *logrus.Logger,
) *ConsentService {
	return &ConsentService{
		consentDAO: consentDAO,
		auditDAO:   auditDAO,
		db:         db,
		logger:     logger,
	}
}

// UpsertConsent creates or updates the single consent row for
// (owner, type, scope) and writes an audit entry in the same transaction.
// changedBy records who made the change when known.
func (s *ConsentService) UpsertConsent(ctx context.Context, ownerID string, request *models.ConsentUpsertRequest, changedBy string) (*models.ConsentRecord, error) {
	if err := utils.ValidateOwnerID(ownerID); err != nil {
		return nil, err
	}

	consentType, err := models.ParseConsentType(request.Type)
	if err != nil {
		return nil, err
	}
	status, err := models.ParseConsentStatus(request.Status)
	if err != nil {
		return nil, err
	}

	scope := request.Scope
	if consentType.IsBrandScoped() {
		if scope == "" || scope == models.ScopeGlobal {
			return nil, fmt.Errorf("consent type %s requires a brand scope", consentType)
		}
	} else {
		if scope != "" && scope != models.ScopeGlobal {
			return nil, fmt.Errorf("consent type %s does not take a brand scope", consentType)
		}
		scope = models.ScopeGlobal
	}

	now := utils.GetCurrentTimeMillis()

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := s.consentDAO.GetByOwnerTypeScopeWithTx(ctx, tx, ownerID, consentType, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to read existing consent: %w", err)
	}

	var record *models.ConsentRecord
	var previousStatus *string

	if existing == nil {
		record = &models.ConsentRecord{
			ConsentID:   utils.GenerateConsentID(),
			OwnerID:     ownerID,
			ConsentType: consentType,
			Scope:       scope,
			Status:      status,
			CreatedTime: now,
			UpdatedTime: now,
		}
		if err := s.consentDAO.CreateWithTx(ctx, tx, record); err != nil {
			return nil, fmt.Errorf("failed to create consent: %w", err)
		}
	} else {
		prev := string(existing.Status)
		previousStatus = &prev
		if err := s.consentDAO.UpdateStatusWithTx(ctx, tx, existing.ConsentID, status, now); err != nil {
			return nil, fmt.Errorf("failed to update consent: %w", err)
		}
		updated := *existing
		updated.Status = status
		updated.UpdatedTime = now
		record = &updated
	}

	audit := &models.ConsentStatusAudit{
		AuditID:        utils.GenerateAuditID(),
		ConsentID:      record.ConsentID,
		OwnerID:        ownerID,
		ConsentType:    consentType,
		Scope:          scope,
		PreviousStatus: previousStatus,
		NewStatus:      string(status),
		ActionTime:     now,
	}
	if changedBy != "" {
		audit.ChangedBy = &changedBy
	}
	if err := s.auditDAO.CreateWithTx(ctx, tx, audit); err != nil {
		return nil, fmt.Errorf("failed to create audit record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"owner_id":     ownerID,
		"consent_type": consentType,
		"scope":        scope,
		"status":       status,
	}).Info("Consent upserted")

	return record, nil
}

// ListConsents returns the owner's stored consent rows together with the
// resolved effective view the engine would apply
func (s *ConsentService) ListConsents(ctx context.Context, ownerID string) (*models.ConsentListResponse, error) {
	if err := utils.ValidateOwnerID(ownerID); err != nil {
		return nil, err
	}

	records, err := s.consentDAO.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list consents: %w", err)
	}

	return &models.ConsentListResponse{
		OwnerID:   ownerID,
		Records:   records,
		Effective: engine.FoldConsent(records),
	}, nil
}

// ListAudit returns the append-only consent change history for an owner
func (s *ConsentService) ListAudit(ctx context.Context, ownerID string) ([]models.ConsentStatusAudit, error) {
	if err := utils.ValidateOwnerID(ownerID); err != nil {
		return nil, err
	}

	audits, err := s.auditDAO.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list consent audit: %w", err)
	}
	return audits, nil
}
