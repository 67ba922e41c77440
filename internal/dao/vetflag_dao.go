package dao

import (
	"context"
	"fmt"

	"github.com/abupet/reco-engine/internal/database"
)

// VetFlagDAO handles read access to clinician vetoes
type VetFlagDAO struct {
	db *database.DB
}

// NewVetFlagDAO creates a new VetFlagDAO instance
func NewVetFlagDAO(db *database.DB) *VetFlagDAO {
	return &VetFlagDAO{db: db}
}

// HasActiveFlag reports whether a clinician has an active veto of the given
// item for the given pet
func (dao *VetFlagDAO) HasActiveFlag(ctx context.Context, petID, itemID string) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM VET_FLAG
		WHERE PET_ID = ? AND ITEM_ID = ? AND STATUS = 'active'
	`

	var count int
	if err := dao.db.GetContext(ctx, &count, query, petID, itemID); err != nil {
		return false, fmt.Errorf("failed to check vet flag: %w", err)
	}

	return count > 0, nil
}
