package dao

import (
	"context"
	"fmt"

	"github.com/abupet/reco-engine/internal/database"
	"github.com/abupet/reco-engine/internal/models"
)

// ConsentAuditDAO handles database operations for the append-only consent
// audit log
type ConsentAuditDAO struct {
	db *database.DB
}

// NewConsentAuditDAO creates a new ConsentAuditDAO instance
func NewConsentAuditDAO(db *database.DB) *ConsentAuditDAO {
	return &ConsentAuditDAO{db: db}
}

// CreateWithTx appends an audit row using a transaction. Audit rows are
// never updated or deleted.
func (dao *ConsentAuditDAO) CreateWithTx(ctx context.Context, tx *database.Transaction, audit *models.ConsentStatusAudit) error {
	query := `
		INSERT INTO CONSENT_STATUS_AUDIT (
			AUDIT_ID, CONSENT_ID, OWNER_ID, CONSENT_TYPE, SCOPE,
			PREVIOUS_STATUS, NEW_STATUS, CHANGED_BY, ACTION_TIME
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		audit.AuditID,
		audit.ConsentID,
		audit.OwnerID,
		audit.ConsentType,
		audit.Scope,
		audit.PreviousStatus,
		audit.NewStatus,
		audit.ChangedBy,
		audit.ActionTime,
	)

	if err != nil {
		return fmt.Errorf("failed to create consent audit: %w", err)
	}

	return nil
}

// ListByOwner retrieves the audit trail for an owner, newest first
func (dao *ConsentAuditDAO) ListByOwner(ctx context.Context, ownerID string) ([]models.ConsentStatusAudit, error) {
	query := `
		SELECT AUDIT_ID, CONSENT_ID, OWNER_ID, CONSENT_TYPE, SCOPE,
		       PREVIOUS_STATUS, NEW_STATUS, CHANGED_BY, ACTION_TIME
		FROM CONSENT_STATUS_AUDIT
		WHERE OWNER_ID = ?
		ORDER BY ACTION_TIME DESC
	`

	var audits []models.ConsentStatusAudit
	if err := dao.db.SelectContext(ctx, &audits, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list consent audits: %w", err)
	}

	return audits, nil
}
