package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prperemyshlev/chat-auth/pkg/database"
	"github.com/redis/go-redis/v9"
)

// allowScript trims the window, counts it and records the request in one
// step. Scores travel as strings so microsecond timestamps keep every digit.
//
// KEYS[1] window key
// ARGV[1] now, ARGV[2] window start, ARGV[3] limit, ARGV[4] member, ARGV[5] ttl ms
//
// Returns {1, count before this request} or {0, count, oldest score}.
var allowScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[2])
local count = redis.call('ZCARD', KEYS[1])
if count >= tonumber(ARGV[3]) then
	local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
	return {0, count, oldest[2] or ARGV[1]}
end
redis.call('ZADD', KEYS[1], ARGV[1], ARGV[4])
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return {1, count}
`)

// RateLimiter is a sliding window log limiter backed by Redis sorted sets.
// Scores are request times in microseconds.
type RateLimiter struct {
	redis *database.Redis
	now   func() time.Time
}

// RateLimitDecision describes the limiter state after a request was counted
type RateLimitDecision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(redis *database.Redis) *RateLimiter {
	return &RateLimiter{redis: redis, now: time.Now}
}

// Allow records a request for key and reports whether it fits in the window
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (*RateLimitDecision, error) {
	now := r.now()
	nowMicro := now.UnixMicro()

	res, err := allowScript.Run(ctx, r.redis.Client, []string{"ratelimit:" + key},
		strconv.FormatInt(nowMicro, 10),
		strconv.FormatInt(now.Add(-window).UnixMicro(), 10),
		limit,
		fmt.Sprintf("%d-%s", nowMicro, uuid.NewString()),
		(window + time.Minute).Milliseconds(),
	).Slice()
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate rate limit: %w", err)
	}
	if len(res) < 2 {
		return nil, fmt.Errorf("unexpected rate limit reply: %v", res)
	}

	allowed, _ := res[0].(int64)
	count, _ := res[1].(int64)

	if allowed == 1 {
		return &RateLimitDecision{
			Allowed:   true,
			Remaining: limit - int(count) - 1,
		}, nil
	}

	decision := &RateLimitDecision{RetryAfter: window}
	if len(res) > 2 {
		if raw, ok := res[2].(string); ok {
			if score, err := strconv.ParseFloat(raw, 64); err == nil {
				decision.RetryAfter = window - now.Sub(time.UnixMicro(int64(score)))
			}
		}
	}
	return decision, nil
}
