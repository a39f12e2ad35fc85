package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/haalarikone/haku-api/internal/config"
	"github.com/haalarikone/haku-api/internal/observability"
)

// LimitStore is the shared counter backing the per-client sliding window.
type LimitStore interface {
	Allow(ctx context.Context, bucket string, limit int, window time.Duration) (bool, error)
}

type RateLimiter struct {
	store  LimitStore
	cfg    config.RateLimitConfig
	logger *zap.Logger
}

func NewRateLimiter(store LimitStore, cfg config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{store: store, cfg: cfg, logger: logger}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		allowed, err := rl.store.Allow(r.Context(), ip, rl.cfg.Limit, rl.cfg.Window)
		if err != nil {
			// A broken counter must not take the search down with it.
			rl.logger.Warn("rate limit check failed, allowing request",
				zap.String("client_ip", ip),
				zap.Error(err),
			)
			next.ServeHTTP(w, r)
			return
		}

		if !allowed {
			observability.RateLimitedTotal.Inc()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"success":false,"error":"Too many requests. Please slow down."}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP resolves the caller identity behind a reverse proxy. The first
// X-Forwarded-For entry is the original client; later entries are proxies.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, found := strings.Cut(xff, ","); found {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(xff)
	}
	if rip := r.Header.Get("X-Real-IP"); rip != "" {
		return strings.TrimSpace(rip)
	}
	if r.RemoteAddr != "" {
		host := r.RemoteAddr
		if i := strings.LastIndex(host, ":"); i > 0 {
			host = host[:i]
		}
		return host
	}
	return "anonymous"
}
