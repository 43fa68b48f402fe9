// Package cache holds the Redis-backed booked-seats cache. Every operation
// is best effort: a cache failure degrades to a database read, never to a
// request failure.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const bookedSeatsKeyPrefix = "booked-seats:"

type BookedSeats struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewBookedSeats(client *redis.Client, ttl time.Duration, log *zap.Logger) *BookedSeats {
	return &BookedSeats{
		client: client,
		ttl:    ttl,
		log:    log.With(zap.String("component", "booked_seats_cache")),
	}
}

func (c *BookedSeats) Get(ctx context.Context, screeningID string) ([]string, bool) {
	raw, err := c.client.Get(ctx, bookedSeatsKeyPrefix+screeningID).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.Warn("Cache get failed", zap.Error(err), zap.String("screening_id", screeningID))
		return nil, false
	}

	var seats []string
	if err := json.Unmarshal([]byte(raw), &seats); err != nil {
		c.log.Warn("Cache entry corrupt, dropping", zap.Error(err), zap.String("screening_id", screeningID))
		_ = c.client.Del(ctx, bookedSeatsKeyPrefix+screeningID).Err()
		return nil, false
	}

	return seats, true
}

func (c *BookedSeats) Set(ctx context.Context, screeningID string, seats []string) {
	raw, err := json.Marshal(seats)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, bookedSeatsKeyPrefix+screeningID, raw, c.ttl).Err(); err != nil {
		c.log.Warn("Cache set failed", zap.Error(err), zap.String("screening_id", screeningID))
	}
}

func (c *BookedSeats) Invalidate(ctx context.Context, screeningID string) {
	if err := c.client.Del(ctx, bookedSeatsKeyPrefix+screeningID).Err(); err != nil {
		c.log.Warn("Cache invalidate failed", zap.Error(err), zap.String("screening_id", screeningID))
	}
}

// Noop is used when caching is disabled and in tests.
type Noop struct{}

func (Noop) Get(ctx context.Context, screeningID string) ([]string, bool) { return nil, false }
func (Noop) Set(ctx context.Context, screeningID string, seats []string)  {}
func (Noop) Invalidate(ctx context.Context, screeningID string)           {}
