package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const tokenBucketLua = `
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])

if rate <= 0 or burst <= 0 then
  return {1, 0, burst}
end

local data = redis.call("HMGET", key, "tokens", "ts")
local tokens = tonumber(data[1])
local ts = tonumber(data[2])
if tokens == nil then
  tokens = burst
end
if ts == nil then
  ts = now
end

local delta = math.max(0, now - ts)
local refill = (delta * rate) / 1000.0
tokens = math.min(burst, tokens + refill)

local allowed = tokens >= requested
local wait_ms = 0
if allowed then
  tokens = tokens - requested
else
  wait_ms = math.ceil((requested - tokens) * 1000.0 / rate)
end

redis.call("HMSET", key, "tokens", tokens, "ts", now)
redis.call("PEXPIRE", key, math.ceil((burst / rate) * 1000.0 * 2))

return {allowed and 1 or 0, wait_ms, tokens}
`

// RateLimiter 基于 Redis 的令牌桶限流器。
//
// 每个调用方（如客户端 IP）使用独立的桶，桶状态存在 Redis 中，
// 多个 API 实例共享同一份限流配额。
type RateLimiter struct {
	rdb       *redis.Client
	keyPrefix string
	rate      float64 // 每秒补充的 token 数
	burst     float64 // 桶容量
	script    *redis.Script
}

// NewRedisRateLimiter 创建一个新的限流器。
//
// 参数:
//   - rdb: Redis 客户端
//   - keyPrefix: 限流 key 前缀
//   - rate: 补充速率（token/s）
//   - burst: 桶容量
func NewRedisRateLimiter(rdb *redis.Client, keyPrefix string, rate float64, burst float64) *RateLimiter {
	if keyPrefix == "" {
		keyPrefix = "taskhub:ratelimit:"
	}
	return &RateLimiter{
		rdb:       rdb,
		keyPrefix: keyPrefix,
		rate:      rate,
		burst:     burst,
		script:    redis.NewScript(tokenBucketLua),
	}
}

// Allow 尝试为给定调用方取走一个 token（非阻塞）。
//
// 参数:
//   - ctx: 上下文
//   - id: 调用方标识（如客户端 IP）
//
// 返回值:
//   - bool: 是否放行
//   - error: Redis 操作失败时返回错误
func (r *RateLimiter) Allow(ctx context.Context, id string) (bool, error) {
	if r == nil || r.rate <= 0 || r.burst <= 0 {
		return true, nil
	}

	now := time.Now().UnixMilli()
	res, err := r.script.Run(ctx, r.rdb, []string{r.keyPrefix + id}, r.rate, r.burst, now, 1).Result()
	if err != nil {
		return false, fmt.Errorf("ratelimit eval: %w", err)
	}

	values, ok := res.([]interface{})
	if !ok || len(values) < 2 {
		return false, fmt.Errorf("ratelimit invalid result")
	}

	return toInt64(values[0]) == 1, nil
}

func toInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if t == "" {
			return 0
		}
		if parsed, err := strconv.ParseInt(t, 10, 64); err == nil {
			return parsed
		}
	}
	return 0
}
