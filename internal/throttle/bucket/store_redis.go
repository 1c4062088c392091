package bucket

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "throttle:"

// Redis implements Store with a fixed-window counter shared across
// instances. The window is coarser than the in-memory sliding window but
// the count is consistent cluster-wide.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Allow increments the counter for the current fixed window and reports
// whether the request fits the limit. INCR and EXPIRE run in one
// pipeline so a crashed increment cannot leave an immortal key.
func (s *Redis) Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := time.Now()
	windowStart := now.Truncate(window)
	resetAt := windowStart.Add(window)
	redisKey := fmt.Sprintf("%s%s:%d", redisKeyPrefix, key, windowStart.Unix())

	pipe := s.client.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("throttle increment: %w", err)
	}

	count := int(incr.Val())
	if count > limit {
		return &Result{
			Allowed:   false,
			Remaining: 0,
			Limit:     limit,
			ResetAt:   resetAt,
		}, nil
	}
	return &Result{
		Allowed:   true,
		Remaining: limit - count,
		Limit:     limit,
		ResetAt:   resetAt,
	}, nil
}
