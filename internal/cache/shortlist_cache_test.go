package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abupet/reco-engine/internal/models"
)

func setupCache(t *testing.T) *ShortlistCache {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	return NewShortlistCacheWithClient(client, logger)
}

func TestShortlistRoundTrip(t *testing.T) {
	cache := setupCache(t)
	ctx := context.Background()

	entries := []models.ShortlistEntry{
		{
			CandidateID:  "item-1",
			TenantID:     "brand-7",
			Category:     "nutrition",
			ServiceType:  models.ServiceTypeNutrition,
			MatchReasons: []string{"diet:renal"},
		},
		{
			CandidateID: "item-2",
			TenantID:    "brand-9",
			Category:    "wellness",
			ServiceType: models.ServiceTypePromo,
		},
	}

	require.NoError(t, cache.PutShortlist(ctx, "pet-1", entries, time.Hour))

	got, err := cache.GetShortlist(ctx, "pet-1")
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestGetShortlist_MissingKeyReturnsNil(t *testing.T) {
	cache := setupCache(t)

	got, err := cache.GetShortlist(context.Background(), "pet-unknown")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInvalidateShortlist(t *testing.T) {
	cache := setupCache(t)
	ctx := context.Background()

	entries := []models.ShortlistEntry{{CandidateID: "item-1", TenantID: "brand-7"}}
	require.NoError(t, cache.PutShortlist(ctx, "pet-1", entries, time.Hour))

	require.NoError(t, cache.InvalidateShortlist(ctx, "pet-1"))

	got, err := cache.GetShortlist(ctx, "pet-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetShortlist_CorruptPayload(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	cache := NewShortlistCacheWithClient(client, logger)

	require.NoError(t, mr.Set("shortlist:pet-1", "not-json"))

	_, err = cache.GetShortlist(context.Background(), "pet-1")
	assert.Error(t, err)
}
