package queries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"artisan-workers/internal/common/logger"
	"artisan-workers/internal/common/metrics"
	"artisan-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

// Cache keeps whole candidate lists in Redis. Redis failures degrade to a
// direct load and never fail the caller.
type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCache(rdb *redis.Client, ttl time.Duration, log logger.Logger) *Cache {
	return &Cache{rdb: rdb, ttl: ttl, logger: log}
}

// Key is the cache key for one backend and limit.
func Key(source string, limit int) string {
	return fmt.Sprintf("artisans:candidates:%s:%d", source, limit)
}

// Load returns the cached list for src, or loads and stores it. The bool is
// true on a cache hit.
func (c *Cache) Load(ctx context.Context, src Source, limit int) ([]models.Candidate, bool, error) {
	key := Key(src.Name(), limit)

	val, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		var cached []models.Candidate
		if jsonErr := json.Unmarshal([]byte(val), &cached); jsonErr == nil {
			metrics.CandidateCacheLookups.WithLabelValues("hit").Inc()
			return cached, true, nil
		}
		c.logger.Warn("discarding unreadable cache entry", map[string]interface{}{"key": key})
		metrics.CandidateCacheLookups.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		metrics.CandidateCacheLookups.WithLabelValues("miss").Inc()
	default:
		c.logger.Warn("candidate cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		metrics.CandidateCacheLookups.WithLabelValues("error").Inc()
	}

	candidates, err := src.Load(ctx, limit)
	if err != nil {
		return nil, false, err
	}

	data, err := json.Marshal(candidates)
	if err != nil {
		return candidates, false, nil
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("candidate cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	return candidates, false, nil
}
