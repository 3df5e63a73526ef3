// Package ratelimit хранит счётчики fixed-window rate limiter.
//
// Реализации:
//   - MemoryStore - в памяти процесса (один экземпляр сервиса)
//   - RedisStore  - в Redis (несколько экземпляров за балансировщиком)
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Decision - результат проверки лимита.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration // до сброса окна
}

// MemoryStore - fixed window counter в памяти.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

// bucket - счётчик одного ключа.
type bucket struct {
	tokens    int
	lastReset time.Time
	window    time.Duration
}

// NewMemoryStore создаёт store и запускает очистку устаревших ключей.
// Очистка останавливается вызовом Close.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		buckets: make(map[string]*bucket),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go s.cleanup(cleanupInterval)
	}
	return s
}

// Allow расходует один запрос ключа.
func (s *MemoryStore) Allow(_ context.Context, key string, limit int, window time.Duration) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	b, exists := s.buckets[key]

	if !exists || now.Sub(b.lastReset) >= window {
		s.buckets[key] = &bucket{tokens: limit - 1, lastReset: now, window: window}
		return Decision{Allowed: limit > 0, Remaining: max(limit-1, 0), RetryAfter: window}, nil
	}

	retryAfter := window - now.Sub(b.lastReset)
	if b.tokens <= 0 {
		return Decision{RetryAfter: retryAfter}, nil
	}

	b.tokens--
	return Decision{Allowed: true, Remaining: b.tokens, RetryAfter: retryAfter}, nil
}

// Close останавливает очистку.
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	return nil
}

func (s *MemoryStore) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.evict()
		}
	}
}

// evict удаляет ключи, окно которых давно закончилось.
func (s *MemoryStore) evict() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, b := range s.buckets {
		if now.Sub(b.lastReset) > b.window*2 {
			delete(s.buckets, key)
		}
	}
}
