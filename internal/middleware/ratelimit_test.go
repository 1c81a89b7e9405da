package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMemoryStoreLimits(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := store.Allow(ctx, "login:1.2.3.4", 3, time.Minute)
		if err != nil {
			t.Fatalf("Allow() unexpected error: %v", err)
		}
		if !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	allowed, err := store.Allow(ctx, "login:1.2.3.4", 3, time.Minute)
	if err != nil {
		t.Fatalf("Allow() unexpected error: %v", err)
	}
	if allowed {
		t.Error("request over the limit should be rejected")
	}
}

func TestMemoryStoreKeysIndependent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if allowed, _ := store.Allow(ctx, "login:1.2.3.4", 2, time.Minute); !allowed {
			t.Fatalf("request %d for first key should be allowed", i+1)
		}
	}
	if allowed, _ := store.Allow(ctx, "login:1.2.3.4", 2, time.Minute); allowed {
		t.Error("exhausted key should be rejected")
	}

	// A different IP and a different bucket keep their own budgets.
	if allowed, _ := store.Allow(ctx, "login:5.6.7.8", 2, time.Minute); !allowed {
		t.Error("different IP should not share the exhausted budget")
	}
	if allowed, _ := store.Allow(ctx, "register:1.2.3.4", 2, time.Minute); !allowed {
		t.Error("different bucket should not share the exhausted budget")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	handler := RateLimit(NewMemoryStore(), "login", 2, time.Minute)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	do := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := do("10.0.0.1:5000"); code != http.StatusOK {
		t.Errorf("first request status = %d, want 200", code)
	}
	if code := do("10.0.0.1:5001"); code != http.StatusOK {
		t.Errorf("second request status = %d, want 200", code)
	}
	if code := do("10.0.0.1:5002"); code != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", code)
	}

	// Another caller is unaffected.
	if code := do("10.0.0.2:5000"); code != http.StatusOK {
		t.Errorf("other caller status = %d, want 200", code)
	}
}

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (bool, error) {
	return false, errors.New("store down")
}

func TestRateLimitFailsOpen(t *testing.T) {
	handler := RateLimit(failingStore{}, "login", 1, time.Minute)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.1:5000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status with failing store = %d, want 200", rec.Code)
	}
}
