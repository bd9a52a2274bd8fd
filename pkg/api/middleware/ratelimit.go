package middleware

import (
	"encoding/json"
	"fmt"
	"math"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"stockval/logger"
)

// RateLimiter enforces a per-client request budget. Each client address gets
// its own token bucket refilled at requestsPerMinute; idle clients are
// dropped after a while so the map does not grow forever.
type RateLimiter struct {
	requestsPerMinute int

	mu      sync.Mutex
	clients map[string]*clientLimiter
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const clientIdleTimeout = 10 * time.Minute

func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		clients:           make(map[string]*clientLimiter),
	}
}

// Middleware wraps a handler with the rate check. Over-budget requests get
// a 429 with the seconds until the next token.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := rl.limiterFor(clientAddress(r))

		reservation := limiter.Reserve()
		delay := reservation.Delay()
		if delay > 0 {
			reservation.Cancel()
			resetSeconds := int(math.Ceil(delay.Seconds()))

			logger.WithFields(logger.Fields{
				"client": clientAddress(r),
				"path":   r.URL.Path,
			}).Warn("rate limit exceeded")

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%d", resetSeconds))
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":            "Rate limit exceeded",
				"reset_in_seconds": resetSeconds,
				"path":             r.URL.Path,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) limiterFor(client string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for addr, c := range rl.clients {
		if now.Sub(c.lastSeen) > clientIdleTimeout {
			delete(rl.clients, addr)
		}
	}

	c, ok := rl.clients[client]
	if !ok {
		c = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(float64(rl.requestsPerMinute)/60.0), rl.requestsPerMinute),
		}
		rl.clients[client] = c
	}
	c.lastSeen = now
	return c.limiter
}

func clientAddress(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
