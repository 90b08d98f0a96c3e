package server

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"educalc/internal/config"
	"educalc/internal/handlers"
)

// rateLimiter is a fixed-window in-memory request counter keyed by client
// IP. It is a stand-in until limits move to a shared store.
type rateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	counts map[string]*windowCount
}

type windowCount struct {
	start time.Time
	n     int
}

func newRateLimiter(max int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		window: window,
		max:    max,
		counts: map[string]*windowCount{},
	}
}

// allow counts a request for id and reports whether it is within the
// window's budget, along with the remaining allowance.
func (rl *rateLimiter) allow(id string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	wc, ok := rl.counts[id]
	if !ok || now.Sub(wc.start) >= rl.window {
		wc = &windowCount{start: now}
		rl.counts[id] = wc
	}
	wc.n++
	remaining := rl.max - wc.n
	if remaining < 0 {
		remaining = 0
	}
	return wc.n <= rl.max, remaining
}

// RateLimitMiddleware enforces a per-IP fixed-window request limit and
// writes x-ratelimit-* headers. Disabled by default via configuration.
func RateLimitMiddleware(cfg config.RateLimitConfig) func(http.Handler) http.Handler {
	limiter := newRateLimiter(cfg.MaxRequests, time.Duration(cfg.WindowSeconds)*time.Second)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}

			ok, remaining := limiter.allow(host)
			w.Header().Set("x-ratelimit-limit-requests", strconv.Itoa(cfg.MaxRequests))
			w.Header().Set("x-ratelimit-remaining-requests", strconv.Itoa(remaining))
			if !ok {
				handlers.WriteError(w, http.StatusTooManyRequests, "Too many requests", "request rate limit exceeded, retry later", "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
