package http

import (
	"context"
	"sync"
	"time"

	"finsage/internal/cache"
)

const (
	// requestsPerMinute is the write budget per client IP.
	requestsPerMinute = 60

	maxTrackedClients = 10000
	staleClientAfter  = 10 * time.Minute
	clientSweepEvery  = 5 * time.Minute
)

// rateLimiter is a fixed-window limiter keyed by client IP. Idle clients
// expire out of the window cache.
type rateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	clients *cache.LRU[*clientWindow]
	janitor *cache.Janitor
}

type clientWindow struct {
	start time.Time
	count int
}

func newRateLimiter(limit int, window time.Duration, now func() time.Time) *rateLimiter {
	rl := &rateLimiter{
		limit:   limit,
		window:  window,
		now:     now,
		clients: cache.NewLRU[*clientWindow](maxTrackedClients, staleClientAfter).WithClock(now),
		janitor: cache.NewJanitor(),
	}
	rl.janitor.Register(rl.clients)
	return rl
}

// start sweeps idle clients in the background until stop is called.
func (rl *rateLimiter) start(ctx context.Context) {
	rl.janitor.Start(ctx, clientSweepEvery)
}

func (rl *rateLimiter) stop() {
	rl.janitor.Stop()
}

// sweep drops idle clients now.
func (rl *rateLimiter) sweep() int {
	return rl.janitor.Sweep()
}

// ActiveClients returns the number of tracked client IPs.
func (rl *rateLimiter) ActiveClients() int {
	return rl.clients.Len()
}

// allow counts a request from clientIP and reports whether it fits the current window.
func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.clients.Get(clientIP)
	if !ok || now.Sub(w.start) >= rl.window {
		w = &clientWindow{start: now}
	}
	w.count++
	rl.clients.Set(clientIP, w)
	return w.count <= rl.limit
}
