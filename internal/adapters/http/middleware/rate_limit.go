// Package middleware - Rate Limiting middleware.
//
// Fixed window counter по ключу (по умолчанию IP клиента).
// Счётчики хранятся в ratelimit.MemoryStore (один экземпляр) или
// ratelimit.RedisStore (несколько экземпляров за балансировщиком).
package middleware

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Haleralex/userdir/internal/adapters/http/common"
	"github.com/Haleralex/userdir/internal/infrastructure/ratelimit"
	"github.com/Haleralex/userdir/internal/pkg/metrics"
)

// RateLimitStore хранит счётчики окна.
type RateLimitStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (ratelimit.Decision, error)
}

// RateLimitConfig - конфигурация для rate limiting.
type RateLimitConfig struct {
	// Name - имя лимитера в метриках и ключах store
	Name string
	// Requests per window
	Limit int
	// Time window
	Window time.Duration
	// KeyFunc - функция для определения ключа лимитирования
	// По умолчанию - IP адрес
	KeyFunc func(*gin.Context) string
	// Store - хранилище счётчиков. nil - MemoryStore
	Store RateLimitStore
	// Logger - для ошибок store
	Logger *slog.Logger
	// OnLimitReached - callback при достижении лимита
	OnLimitReached func(*gin.Context)
}

// DefaultRateLimitConfig - конфигурация по умолчанию.
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		Name:   "global",
		Limit:  100,         // 100 запросов
		Window: time.Minute, // в минуту
		KeyFunc: func(c *gin.Context) string { // по IP
			return c.ClientIP()
		},
	}
}

// RateLimit middleware для ограничения количества запросов.
//
// - При достижении лимита возвращается конверт-отказ с HTTP 200,
//   как и остальные отказы справочника
// - Ошибка store не блокирует запрос (fail open), только логируется
//
// Headers:
// - X-RateLimit-Limit: Максимум запросов
// - X-RateLimit-Remaining: Оставшееся количество
// - X-RateLimit-Reset: Время сброса (Unix timestamp)
// - Retry-After: Секунд до сброса (только при отказе)
func RateLimit(config *RateLimitConfig) gin.HandlerFunc {
	if config == nil {
		config = DefaultRateLimitConfig()
	}
	cfg := *config
	config = &cfg

	if config.Name == "" {
		config.Name = "global"
	}
	if config.KeyFunc == nil {
		config.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	if config.Store == nil {
		config.Store = ratelimit.NewMemoryStore(config.Window * 2)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return func(c *gin.Context) {
		key := config.Name + ":" + config.KeyFunc(c)

		decision, err := config.Store.Allow(c.Request.Context(), key, config.Limit, config.Window)
		if err != nil {
			config.Logger.WarnContext(c.Request.Context(), "rate limit store failed, allowing request",
				"limiter", config.Name,
				"error", err,
			)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(decision.RetryAfter).Unix(), 10))

		if !decision.Allowed {
			retrySeconds := int(decision.RetryAfter.Seconds())
			if retrySeconds < 1 {
				retrySeconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(retrySeconds))

			metrics.RecordRateLimitRejection(config.Name)

			if config.OnLimitReached != nil {
				config.OnLimitReached(c)
			}

			common.AbortRateLimited(c)
			return
		}

		c.Next()
	}
}

// ============================================
// Endpoint-specific rate limiters
// ============================================

// LoginRateLimit - строгий лимит на вход: подбор паролей по IP.
func LoginRateLimit(limit int, window time.Duration, store RateLimitStore, log *slog.Logger) gin.HandlerFunc {
	return RateLimit(&RateLimitConfig{
		Name:   "login",
		Limit:  limit,
		Window: window,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
		Store:  store,
		Logger: log,
	})
}
