package ratelimit

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"taskpush/internal/domain/subscription"

	"github.com/redis/go-redis/v9"
)

var _ subscription.SubscriberRateLimiter = (*RedisSubscriberLimiter)(nil)

// RedisSubscriberLimiter caps registrar writes per subscriber using Redis sorted sets.
// It uses a sliding window: each write is a member scored by its timestamp.
type RedisSubscriberLimiter struct {
	client     redis.UniversalClient
	maxPerHour int
	window     time.Duration
}

// NewRedisSubscriberLimiter creates a new Redis-based per-subscriber rate limiter.
func NewRedisSubscriberLimiter(redisAddr, password string, db int, maxPerHour int) *RedisSubscriberLimiter {
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: password,
		DB:       db,
	})
	return newLimiter(client, maxPerHour)
}

func newLimiter(client redis.UniversalClient, maxPerHour int) *RedisSubscriberLimiter {
	return &RedisSubscriberLimiter{
		client:     client,
		maxPerHour: maxPerHour,
		window:     time.Hour,
	}
}

func key(subscriber string) string {
	return "taskpush:ratelimit:" + subscriber
}

// Allow reports whether the subscriber may perform another registrar write.
func (r *RedisSubscriberLimiter) Allow(ctx context.Context, subscriber string) (bool, error) {
	if r.maxPerHour <= 0 {
		return true, nil
	}

	k := key(subscriber)
	now := time.Now()
	windowStart := now.Add(-r.window)

	pipe := r.client.Pipeline()

	// Drop entries outside the sliding window
	pipe.ZRemRangeByScore(ctx, k, "-inf", fmt.Sprintf("%d", windowStart.UnixNano()))
	countCmd := pipe.ZCard(ctx, k)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("checking subscriber rate limit: %w", err)
	}

	if countCmd.Val() >= int64(r.maxPerHour) {
		return false, nil
	}

	// Unique member so concurrent writes in the same nanosecond both count
	randBytes := make([]byte, 4)
	_, _ = rand.Read(randBytes)
	member := redis.Z{
		Score:  float64(now.UnixNano()),
		Member: fmt.Sprintf("%d:%s", now.UnixNano(), hex.EncodeToString(randBytes)),
	}

	pipe2 := r.client.Pipeline()
	pipe2.ZAdd(ctx, k, member)
	pipe2.Expire(ctx, k, r.window+time.Minute)

	if _, err := pipe2.Exec(ctx); err != nil {
		return false, fmt.Errorf("recording rate limit entry: %w", err)
	}

	return true, nil
}

// Close closes the Redis connection.
func (r *RedisSubscriberLimiter) Close() error {
	return r.client.Close()
}
