package server

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// Per-IP rate limit: 100 requests per 15 minutes.
const (
	rateLimitWindowSeconds = 15 * 60
	rateLimitRequests      = 100
)

// RateLimiter enforces a per-client token bucket keyed by remote IP.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

// NewRateLimiter creates a limiter allowing requests per window seconds
// for each client.
func NewRateLimiter(requests, windowSeconds int) *RateLimiter {
	burst := requests
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		clients: make(map[string]*rate.Limiter),
		limit:   rate.Limit(float64(requests) / float64(windowSeconds)),
		burst:   burst,
	}
}

// Allow reports whether a request from the given client may proceed.
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	limiter, ok := rl.clients[client]
	if !ok {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
		rl.clients[client] = limiter
	}
	rl.mu.Unlock()
	return limiter.Allow()
}

// clientIP strips the port so all connections from one address share a
// bucket. middleware.RealIP has already resolved forwarded headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Middleware rejects over-limit requests with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientIP(r)) {
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests, try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}
