package redis_client

import (
	"context"
	"fmt"
	"strconv"
	"time"

	redis "github.com/go-redis/redis/v8"

	"github.com/surazdott/api-response/http/ratelimit"
)

// RateLimitStore counts requests in fixed windows shared by every instance
// talking to the same Redis.
type RateLimitStore struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

func NewRateLimitStore(client redis.Cmdable, prefix string) *RateLimitStore {
	return &RateLimitStore{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

func (s *RateLimitStore) windowKey(key string, window time.Duration, now time.Time) (string, time.Time) {
	idx := now.UnixNano() / int64(window)
	end := time.Unix(0, (idx+1)*int64(window))
	return s.prefix + key + ":" + strconv.FormatInt(idx, 10), end
}

func (s *RateLimitStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (ratelimit.Decision, error) {
	if limit <= 0 || window <= 0 {
		return ratelimit.Decision{Allowed: true, Limit: limit}, nil
	}

	now := s.now()
	redisKey, end := s.windowKey(key, window, now)

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.PExpireAt(ctx, redisKey, end)
		return nil
	})
	if err != nil {
		return ratelimit.Decision{}, fmt.Errorf("rate limit incr %s: %w", redisKey, err)
	}

	count := int(incr.Val())
	d := ratelimit.Decision{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: limit - count,
	}
	if !d.Allowed {
		d.RetryAfter = end.Sub(now)
	}
	return d, nil
}

var _ ratelimit.LimitStore = (*RateLimitStore)(nil)
