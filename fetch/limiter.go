package fetch

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostLimiter spaces requests to the same host at least a minimum interval
// apart. Different hosts do not wait on each other.
type HostLimiter struct {
	interval time.Duration

	mu    sync.Mutex
	hosts map[string]*rate.Limiter
}

// NewHostLimiter creates a limiter. An interval of zero or less disables
// waiting.
func NewHostLimiter(interval time.Duration) *HostLimiter {
	return &HostLimiter{
		interval: interval,
		hosts:    make(map[string]*rate.Limiter),
	}
}

// Wait blocks until a request to rawURL's host may proceed or ctx is done.
func (h *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	if h.interval <= 0 {
		return ctx.Err()
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil // the request itself will fail on the bad URL
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil
	}

	h.mu.Lock()
	lim, ok := h.hosts[host]
	if !ok {
		lim = rate.NewLimiter(rate.Every(h.interval), 1)
		h.hosts[host] = lim
	}
	h.mu.Unlock()

	return lim.Wait(ctx)
}

// Hosts returns the number of hosts seen so far.
func (h *HostLimiter) Hosts() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.hosts)
}
