package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindow trims the window, records the hit only when it fits and
// returns the hit count plus the oldest score still in the window.
var slidingWindow = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
local count = redis.call('ZCARD', KEYS[1])
local admitted = 0
if count < tonumber(ARGV[3]) then
  redis.call('ZADD', KEYS[1], ARGV[2], ARGV[4])
  count = count + 1
  admitted = 1
end
redis.call('PEXPIRE', KEYS[1], ARGV[5])
local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
local first = tonumber(ARGV[2])
if oldest[2] then first = tonumber(oldest[2]) end
return {admitted, count, first}
`)

// Limiter implements a sliding window rate limiter backed by Redis sorted sets.
type Limiter struct {
	Client *redis.Client
	Prefix string
	Now    func() time.Time
}

// Allow registers an event for the given key and returns whether it is within the limit.
// Rejected attempts are not recorded, so a blocked client regains access once
// its oldest admitted hit leaves the window.
func (l Limiter) Allow(ctx context.Context, key string, window time.Duration, max int) (allowed bool, remaining int, reset time.Time, err error) {
	now := time.Now()
	if l.Now != nil {
		now = l.Now()
	}
	if l.Client == nil || max <= 0 || window <= 0 {
		return true, max, now.Add(window), nil
	}

	score := now.UnixMicro()
	cutoff := now.Add(-window).UnixMicro()
	member := fmt.Sprintf("%d:%s", score, uuid.NewString())

	res, err := slidingWindow.Run(ctx, l.Client, []string{l.Prefix + key},
		cutoff, score, max, member, window.Milliseconds()).Int64Slice()
	if err != nil {
		return false, 0, now.Add(window), err
	}
	if len(res) != 3 {
		return false, 0, now.Add(window), fmt.Errorf("ratelimit: unexpected script reply %v", res)
	}

	remaining = max - int(res[1])
	if remaining < 0 {
		remaining = 0
	}
	reset = time.UnixMicro(res[2]).Add(window)
	return res[0] == 1, remaining, reset, nil
}
