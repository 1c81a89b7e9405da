package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitStore answers whether a caller may perform one more action
// in the named bucket. Implementations must be safe for concurrent
// use and must count through their own atomic primitives.
type RateLimitStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryStore is an in-process token-bucket store keyed by caller.
// Each key gets limit tokens refilled over the window.
type MemoryStore struct {
	mu       sync.Mutex
	visitors map[string]*visitor
}

// NewMemoryStore creates a MemoryStore and starts its background
// cleanup of stale visitors.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{visitors: make(map[string]*visitor)}
	go s.cleanup()
	return s
}

func (s *MemoryStore) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, exists := s.visitors[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)}
		s.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow(), nil
}

func (s *MemoryStore) cleanup() {
	for {
		time.Sleep(10 * time.Minute)
		s.mu.Lock()
		for key, v := range s.visitors {
			if time.Since(v.lastSeen) > 10*time.Minute {
				delete(s.visitors, key)
			}
		}
		s.mu.Unlock()
	}
}

// RedisStore is a fixed-window counter store backed by Redis INCR,
// for deployments where multiple instances must share limits.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a RedisStore for the given client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := s.client.Incr(ctx, "ratelimit:"+key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		// First hit opens the window.
		if err := s.client.Expire(ctx, "ratelimit:"+key, window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(limit), nil
}

// RateLimit returns middleware limiting requests per caller IP within
// the named action bucket. Exceeding the limit yields 429, distinct
// from any authentication outcome. Store errors fail open so a
// limiter outage never blocks logins.
func RateLimit(store RateLimitStore, bucket string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			allowed, err := store.Allow(r.Context(), bucket+":"+ip, limit, window)
			if err != nil {
				slog.Warn("rate limit store unavailable, allowing request", "bucket", bucket, "error", err)
				allowed = true
			}

			if !allowed {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{"error": "too many requests"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
