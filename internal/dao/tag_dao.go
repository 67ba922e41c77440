package dao

import (
	"context"
	"fmt"

	"github.com/abupet/reco-engine/internal/database"
	"github.com/abupet/reco-engine/internal/models"
)

// TagDAO handles read access to the pet tag rows computed by the external
// tagging collaborator
type TagDAO struct {
	db *database.DB
}

// NewTagDAO creates a new TagDAO instance
func NewTagDAO(db *database.DB) *TagDAO {
	return &TagDAO{db: db}
}

// GetTags retrieves all tags for a pet, newest first
func (dao *TagDAO) GetTags(ctx context.Context, petID string) ([]models.PetTag, error) {
	query := `
		SELECT PET_ID, TAG, COMPUTED_TIME
		FROM PET_TAG
		WHERE PET_ID = ?
		ORDER BY COMPUTED_TIME DESC, TAG
	`

	var tags []models.PetTag
	if err := dao.db.SelectContext(ctx, &tags, query, petID); err != nil {
		return nil, fmt.Errorf("failed to get tags for pet: %w", err)
	}

	return tags, nil
}
