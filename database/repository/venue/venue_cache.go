package venueRepo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const capacityKeyPrefix = "venue:capacity:"

func capacityKey(venueID string) string {
	return fmt.Sprintf("%s%s", capacityKeyPrefix, venueID)
}

// CachedDirectory is a read-through Redis cache in front of another directory.
// Cache failures fall back to the underlying directory; misses are not cached.
type CachedDirectory struct {
	next   VenueDirectory
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedDirectory wraps next with a capacity cache held for ttl.
func NewCachedDirectory(next VenueDirectory, client *redis.Client, ttl time.Duration, logger *zap.Logger) (*CachedDirectory, error) {
	if next == nil || client == nil {
		return nil, fmt.Errorf("venue cache initialization error: directory or redis client is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedDirectory{next: next, client: client, ttl: ttl, logger: logger}, nil
}

func (c *CachedDirectory) GetCapacity(ctx context.Context, venueID string) (int, error) {
	key := capacityKey(venueID)

	val, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if capacity, convErr := strconv.Atoi(val); convErr == nil {
			return capacity, nil
		}
		c.logger.Warn("Discarding corrupt venue capacity cache entry", zap.String("venue_id", venueID), zap.String("value", val))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("Venue capacity cache read failed", zap.String("venue_id", venueID), zap.Error(err))
	}

	capacity, err := c.next.GetCapacity(ctx, venueID)
	if err != nil {
		return 0, err
	}
	if err := c.client.Set(ctx, key, capacity, c.ttl).Err(); err != nil {
		c.logger.Warn("Venue capacity cache write failed", zap.String("venue_id", venueID), zap.Error(err))
	}
	return capacity, nil
}

// Invalidate drops the cached capacity for a venue.
func (c *CachedDirectory) Invalidate(ctx context.Context, venueID string) error {
	return c.client.Del(ctx, capacityKey(venueID)).Err()
}
