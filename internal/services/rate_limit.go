package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

// CheckoutLimiter caps how many provider sessions one player can open per window.
type CheckoutLimiter interface {
	Allow(ctx context.Context, externalID string) error
}

// RedisCheckoutLimiter is a fixed-window counter under checkout:ratelimit:<id>.
// The window starts at the first attempt and is not extended by later ones.
type RedisCheckoutLimiter struct {
	redis  *redis.Client
	max    int
	window time.Duration
}

func NewRedisCheckoutLimiter(client *redis.Client, max int, window time.Duration) *RedisCheckoutLimiter {
	return &RedisCheckoutLimiter{redis: client, max: max, window: window}
}

// Allow counts the attempt. A Redis failure lets the attempt through.
func (l *RedisCheckoutLimiter) Allow(ctx context.Context, externalID string) error {
	key := fmt.Sprintf("checkout:ratelimit:%s", externalID)
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		log.WithError(err).Warn("[CHECKOUT] Rate limit update failed")
		return nil
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.window).Err(); err != nil {
			log.WithError(err).Warn("[CHECKOUT] Rate limit window not set")
		}
	}

	if count > int64(l.max) {
		return fmt.Errorf("%w: %d checkouts in %s", ErrRateLimited, count-1, l.window)
	}
	return nil
}
