package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	maxTrackedClients = 10000
	sweepInterval     = 5 * time.Minute
	clientIdleTTL     = 15 * time.Minute
)

type rateClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a per-client token bucket, keyed by IP so one
// aggressive caller cannot lock everyone else out of the login endpoint.
// A background sweep drops idle clients.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*rateClient
	rps     rate.Limit
	burst   int
	done    chan struct{}
}

// NewRateLimiter starts a limiter allowing requestsPerSecond sustained with
// the given burst per client.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*rateClient),
		rps:     rate.Limit(requestsPerSecond),
		burst:   burst,
		done:    make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// Stop ends the background sweep goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.done)
}

// Middleware rejects over-limit requests with 429.
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(clientIP(r)) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"Rate limit exceeded"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	c, ok := rl.clients[ip]
	if !ok {
		c = &rateClient{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = time.Now()
	rl.mu.Unlock()

	return c.limiter.Allow()
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

// sweep drops clients idle past the TTL. If the table is still over the cap
// afterwards, the least recently seen entries go too.
func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-clientIdleTTL)
	for ip, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}

	for len(rl.clients) > maxTrackedClients {
		var oldestIP string
		var oldest time.Time
		for ip, c := range rl.clients {
			if oldestIP == "" || c.lastSeen.Before(oldest) {
				oldestIP = ip
				oldest = c.lastSeen
			}
		}
		delete(rl.clients, oldestIP)
	}
}

// clientIP strips the port from RemoteAddr so reconnecting clients keep
// their bucket.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
