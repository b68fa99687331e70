package gateway

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// clientLimiter applies a per-client token bucket, keyed by remote IP.
// A zero rate disables limiting entirely.
type clientLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// maxTrackedClients caps the limiter map; beyond it the map resets, which
// briefly refills strangers' buckets rather than growing without bound.
const maxTrackedClients = 10000

func newClientLimiter(perSecond float64, burst int) *clientLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &clientLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// allow reports whether the client may proceed.
func (cl *clientLimiter) allow(remoteAddr string) bool {
	if cl.limit == 0 {
		return true
	}

	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}

	cl.mu.Lock()
	if len(cl.limiters) > maxTrackedClients {
		cl.limiters = make(map[string]*rate.Limiter)
	}
	limiter, ok := cl.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(cl.limit, cl.burst)
		cl.limiters[host] = limiter
	}
	cl.mu.Unlock()

	return limiter.Allow()
}

// middleware wraps a handler with the per-client limit.
func (cl *clientLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !cl.allow(r.RemoteAddr) {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
