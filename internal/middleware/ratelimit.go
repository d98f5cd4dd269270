package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/DhawalShankar/vartalang-sub001/internal/cache"
	"github.com/DhawalShankar/vartalang-sub001/internal/logger"

	"golang.org/x/time/rate"
)

// LimiterStore decides whether an event for a key is permitted. Injected
// rather than process-local so the coordination logic stays testable and
// multi-node deployments can share a store.
type LimiterStore interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryLimiterStore maintains per-key token-bucket limiters with periodic
// cleanup. Suitable for tests and single-node deployments.
type MemoryLimiterStore struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	clients map[string]*clientEntry
	stopCh  chan struct{}
}

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMemoryLimiterStore creates a store allowing limitPerMinute events per
// minute with the given burst capacity.
func NewMemoryLimiterStore(limitPerMinute, burst int, cleanupInterval time.Duration) *MemoryLimiterStore {
	if limitPerMinute <= 0 {
		limitPerMinute = 60
	}
	s := &MemoryLimiterStore{
		limit:   rate.Every(time.Minute / time.Duration(limitPerMinute)),
		burst:   burst,
		clients: map[string]*clientEntry{},
		stopCh:  make(chan struct{}),
	}
	go s.cleanupLoop(cleanupInterval)
	return s
}

func (s *MemoryLimiterStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-10 * time.Minute)
			s.mu.Lock()
			for k, v := range s.clients {
				if v.lastSeen.Before(cutoff) {
					delete(s.clients, k)
				}
			}
			s.mu.Unlock()
		case <-s.stopCh:
			return
		}
	}
}

// Stop stops internal goroutines (useful for tests).
func (s *MemoryLimiterStore) Stop() {
	close(s.stopCh)
}

// Allow checks whether an event for the given key is permitted.
func (s *MemoryLimiterStore) Allow(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	entry, ok := s.clients[key]
	if !ok {
		entry = &clientEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.clients[key] = entry
	}
	entry.lastSeen = time.Now()
	s.mu.Unlock()
	return entry.limiter.Allow(), nil
}

// RedisLimiterStore counts events in a fixed one-minute window per key.
// Shared across nodes; survives process restarts.
type RedisLimiterStore struct {
	cache *cache.RedisCache
	limit int64
}

// NewRedisLimiterStore creates a redis-backed store allowing limitPerMinute
// events per minute per key.
func NewRedisLimiterStore(c *cache.RedisCache, limitPerMinute int) *RedisLimiterStore {
	if limitPerMinute <= 0 {
		limitPerMinute = 60
	}
	return &RedisLimiterStore{cache: c, limit: int64(limitPerMinute)}
}

// Allow checks whether an event for the given key is permitted.
func (s *RedisLimiterStore) Allow(ctx context.Context, key string) (bool, error) {
	n, err := s.cache.CountInWindow(ctx, "ratelimit:"+key, time.Minute)
	if err != nil {
		return false, err
	}
	return n <= s.limit, nil
}

// RateLimit applies the store to each request, keyed by the authenticated
// user when present, otherwise by remote IP. A store failure lets the
// request through: the limiter protects against abuse, it is not a
// correctness gate.
func RateLimit(store LimiterStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)

			allowed, err := store.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("rate limiter store unavailable", "err", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				http.Error(w, `{"error": "rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	if id, ok := UserID(r.Context()); ok {
		return "user:" + strconv.FormatUint(id, 10)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}
