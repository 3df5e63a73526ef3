package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// fixedWindowScript увеличивает счётчик и ставит TTL окна при первом запросе.
// Возвращает {count, pttl}.
var fixedWindowScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisConfig - настройки подключения к Redis.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisStore - fixed window counter в Redis.
type RedisStore struct {
	client redis.Scripter
	prefix string
}

// NewRedisClient создаёт клиента с таймаутами для горячего пути.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

// NewRedisStore создаёт store поверх клиента.
func NewRedisStore(client redis.Scripter, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "userdir:ratelimit:"
	}
	return &RedisStore{client: client, prefix: keyPrefix}
}

// Allow расходует один запрос ключа.
func (s *RedisStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	values, err := fixedWindowScript.Run(ctx, s.client, []string{s.prefix + key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit store: %w", err)
	}
	if len(values) != 2 {
		return Decision{}, fmt.Errorf("rate limit store: unexpected reply %v", values)
	}

	count, ttl := int(values[0]), time.Duration(values[1])*time.Millisecond
	if count > limit {
		return Decision{RetryAfter: ttl}, nil
	}
	return Decision{Allowed: true, Remaining: limit - count, RetryAfter: ttl}, nil
}
