package dao

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/abupet/reco-engine/internal/database"
	"github.com/abupet/reco-engine/internal/models"
)

// ConsentDAO handles database operations for consent records
type ConsentDAO struct {
	db *database.DB
}

// NewConsentDAO creates a new ConsentDAO instance
func NewConsentDAO(db *database.DB) *ConsentDAO {
	return &ConsentDAO{db: db}
}

// GetByOwner retrieves all consent rows for an owner in one query
func (dao *ConsentDAO) GetByOwner(ctx context.Context, ownerID string) ([]models.ConsentRecord, error) {
	query := `
		SELECT CONSENT_ID, OWNER_ID, CONSENT_TYPE, SCOPE, STATUS, CREATED_TIME, UPDATED_TIME
		FROM CONSENT_RECORD
		WHERE OWNER_ID = ?
		ORDER BY CONSENT_TYPE, SCOPE
	`

	var records []models.ConsentRecord
	if err := dao.db.SelectContext(ctx, &records, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to get consents for owner: %w", err)
	}

	return records, nil
}

// GetByOwnerTypeScope retrieves the single active consent row for
// (owner, type, scope). Returns (nil, nil) when no row exists; absence is a
// defaulted state, not an error.
func (dao *ConsentDAO) GetByOwnerTypeScope(ctx context.Context, ownerID string, consentType models.ConsentType, scope string) (*models.ConsentRecord, error) {
	query := `
		SELECT CONSENT_ID, OWNER_ID, CONSENT_TYPE, SCOPE, STATUS, CREATED_TIME, UPDATED_TIME
		FROM CONSENT_RECORD
		WHERE OWNER_ID = ? AND CONSENT_TYPE = ? AND SCOPE = ?
	`

	var record models.ConsentRecord
	err := dao.db.GetContext(ctx, &record, query, ownerID, consentType, scope)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get consent: %w", err)
	}

	return &record, nil
}

// GetByOwnerTypeScopeWithTx retrieves the consent row for (owner, type,
// scope) inside a transaction. Returns (nil, nil) when no row exists.
func (dao *ConsentDAO) GetByOwnerTypeScopeWithTx(ctx context.Context, tx *database.Transaction, ownerID string, consentType models.ConsentType, scope string) (*models.ConsentRecord, error) {
	query := `
		SELECT CONSENT_ID, OWNER_ID, CONSENT_TYPE, SCOPE, STATUS, CREATED_TIME, UPDATED_TIME
		FROM CONSENT_RECORD
		WHERE OWNER_ID = ? AND CONSENT_TYPE = ? AND SCOPE = ?
	`

	var record models.ConsentRecord
	err := tx.GetContext(ctx, &record, query, ownerID, consentType, scope)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get consent with transaction: %w", err)
	}

	return &record, nil
}

// CreateWithTx inserts a new consent record using a transaction
func (dao *ConsentDAO) CreateWithTx(ctx context.Context, tx *database.Transaction, record *models.ConsentRecord) error {
	query := `
		INSERT INTO CONSENT_RECORD (
			CONSENT_ID, OWNER_ID, CONSENT_TYPE, SCOPE, STATUS, CREATED_TIME, UPDATED_TIME
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		record.ConsentID,
		record.OwnerID,
		record.ConsentType,
		record.Scope,
		record.Status,
		record.CreatedTime,
		record.UpdatedTime,
	)

	if err != nil {
		return fmt.Errorf("failed to create consent: %w", err)
	}

	return nil
}

// UpdateStatusWithTx updates the status of an existing consent record using
// a transaction. Consent rows are never deleted; status changes are the only
// mutation.
func (dao *ConsentDAO) UpdateStatusWithTx(ctx context.Context, tx *database.Transaction, consentID string, status models.ConsentStatus, updatedTime int64) error {
	query := `
		UPDATE CONSENT_RECORD
		SET STATUS = ?, UPDATED_TIME = ?
		WHERE CONSENT_ID = ?
	`

	result, err := tx.ExecContext(ctx, query, status, updatedTime, consentID)
	if err != nil {
		return fmt.Errorf("failed to update consent status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("consent not found: %s", consentID)
	}

	return nil
}
