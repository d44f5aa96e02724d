package server

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// rateLimiter is a per-client token bucket. Chat turns fan out to the
// inference service, so the API surface is throttled by client IP.
type rateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucket
	perMin  int
	done    chan struct{}
}

type tokenBucket struct {
	tokens     int
	lastRefill time.Time
}

func newRateLimiter(perMin int) *rateLimiter {
	rl := &rateLimiter{
		buckets: make(map[string]*tokenBucket),
		perMin:  perMin,
		done:    make(chan struct{}),
	}
	go rl.evictStale()
	return rl
}

// middleware rejects requests over the per-minute budget with 429.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, retry later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *rateLimiter) allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[client]
	if !ok {
		rl.buckets[client] = &tokenBucket{tokens: rl.perMin - 1, lastRefill: now}
		return true
	}

	refill := int(now.Sub(b.lastRefill).Minutes() * float64(rl.perMin))
	if refill > 0 {
		b.tokens += refill
		if b.tokens > rl.perMin {
			b.tokens = rl.perMin
		}
		b.lastRefill = now
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}
	return false
}

// evictStale drops buckets idle for more than ten minutes.
func (rl *rateLimiter) evictStale() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := time.Now()
			for client, b := range rl.buckets {
				if now.Sub(b.lastRefill) > 10*time.Minute {
					delete(rl.buckets, client)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) stop() {
	close(rl.done)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
