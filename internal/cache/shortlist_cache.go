package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/abupet/reco-engine/internal/config"
	"github.com/abupet/reco-engine/internal/models"
)

const shortlistKeyPrefix = "shortlist:"

// ShortlistCache stores the AI-ranked per-pet shortlists computed
// out-of-band. The engine only reads and invalidates entries; the ranking
// pipeline owns the writes.
type ShortlistCache struct {
	client *redis.Client
	logger *logrus.Logger
}

// NewShortlistCache connects to redis and returns a shortlist cache
func NewShortlistCache(cfg *config.RedisConfig, logger *logrus.Logger) (*ShortlistCache, error) {
	dialTimeout := 5 * time.Second
	if cfg.DialTimeout > 0 {
		dialTimeout = cfg.DialTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.WithField("addr", cfg.Addr).Info("Connected to shortlist cache")

	return &ShortlistCache{
		client: client,
		logger: logger,
	}, nil
}

// NewShortlistCacheWithClient wraps an existing redis client. Used by tests.
func NewShortlistCacheWithClient(client *redis.Client, logger *logrus.Logger) *ShortlistCache {
	return &ShortlistCache{
		client: client,
		logger: logger,
	}
}

// GetShortlist returns the cached ranked shortlist for a pet, or nil when
// none is cached
func (c *ShortlistCache) GetShortlist(ctx context.Context, petID string) ([]models.ShortlistEntry, error) {
	payload, err := c.client.Get(ctx, shortlistKeyPrefix+petID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read shortlist: %w", err)
	}

	var entries []models.ShortlistEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, fmt.Errorf("invalid shortlist payload: %w", err)
	}

	return entries, nil
}

// InvalidateShortlist removes the cached shortlist for a pet
func (c *ShortlistCache) InvalidateShortlist(ctx context.Context, petID string) error {
	if err := c.client.Del(ctx, shortlistKeyPrefix+petID).Err(); err != nil {
		return fmt.Errorf("failed to invalidate shortlist: %w", err)
	}
	return nil
}

// PutShortlist stores a ranked shortlist for a pet with a TTL. Exposed for
// the out-of-band ranking pipeline and for seeding tests.
func (c *ShortlistCache) PutShortlist(ctx context.Context, petID string, entries []models.ShortlistEntry, ttl time.Duration) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal shortlist: %w", err)
	}

	if err := c.client.Set(ctx, shortlistKeyPrefix+petID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store shortlist: %w", err)
	}

	return nil
}

// Close closes the underlying redis client
func (c *ShortlistCache) Close() error {
	return c.client.Close()
}
