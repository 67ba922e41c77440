package dao

import (
	"context"
	"fmt"

	"github.com/abupet/reco-engine/internal/database"
	"github.com/abupet/reco-engine/internal/models"
)

// ImpressionDAO handles the append-only impression event ledger
type ImpressionDAO struct {
	db *database.DB
}

// NewImpressionDAO creates a new ImpressionDAO instance
func NewImpressionDAO(db *database.DB) *ImpressionDAO {
	return &ImpressionDAO{db: db}
}

// Create appends a new impression event. Events are never updated or
// deleted.
func (dao *ImpressionDAO) Create(ctx context.Context, event *models.ImpressionEvent) error {
	query := `
		INSERT INTO IMPRESSION_EVENT (
			EVENT_ID, OWNER_ID, PET_ID, ITEM_ID, EVENT_TYPE, CONTEXT, OCCURRED_TIME
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := dao.db.ExecContext(
		ctx,
		query,
		event.EventID,
		event.OwnerID,
		event.PetID,
		event.ItemID,
		event.EventType,
		event.Context,
		event.OccurredTime,
	)

	if err != nil {
		return fmt.Errorf("failed to create impression event: %w", err)
	}

	return nil
}

// CountImpressions counts impression events for an owner/pet pair since the
// given epoch-millisecond timestamp. Context and itemID narrow the count
// when non-empty.
func (dao *ImpressionDAO) CountImpressions(ctx context.Context, ownerID, petID string, context models.Context, itemID string, since int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM IMPRESSION_EVENT
		WHERE OWNER_ID = ? AND PET_ID = ? AND EVENT_TYPE = ? AND OCCURRED_TIME >= ?
	`
	args := []interface{}{ownerID, petID, models.EventTypeImpression, since}

	if context != "" {
		query += ` AND CONTEXT = ?`
		args = append(args, context)
	}

	if itemID != "" {
		query += ` AND ITEM_ID = ?`
		args = append(args, itemID)
	}

	var count int
	if err := dao.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count impressions: %w", err)
	}

	return count, nil
}
