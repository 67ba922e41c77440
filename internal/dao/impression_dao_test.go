package dao

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abupet/reco-engine/internal/models"
)

func TestCountImpressions_NarrowsByContextAndItem(t *testing.T) {
	db, mock := setupMockDB(t)
	dao := NewImpressionDAO(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("owner-1", "pet-1", models.EventTypeImpression, int64(1700000000000), models.ContextHomeFeed, "item-9").
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(3))

	count, err := dao.CountImpressions(context.Background(), "owner-1", "pet-1", models.ContextHomeFeed, "item-9", 1700000000000)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountImpressions_OwnerPetOnly(t *testing.T) {
	db, mock := setupMockDB(t)
	dao := NewImpressionDAO(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("owner-1", "pet-1", models.EventTypeImpression, int64(1700000000000)).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(0))

	count, err := dao.CountImpressions(context.Background(), "owner-1", "pet-1", "", "", 1700000000000)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateImpression(t *testing.T) {
	db, mock := setupMockDB(t)
	dao := NewImpressionDAO(db)

	itemID := "item-9"
	event := &models.ImpressionEvent{
		EventID:      "EVT-1",
		OwnerID:      "owner-1",
		PetID:        "pet-1",
		ItemID:       &itemID,
		EventType:    models.EventTypeImpression,
		Context:      models.ContextHomeFeed,
		OccurredTime: 1700000000000,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO IMPRESSION_EVENT")).
		WithArgs("EVT-1", "owner-1", "pet-1", "item-9", models.EventTypeImpression, models.ContextHomeFeed, int64(1700000000000)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := dao.Create(context.Background(), event)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
