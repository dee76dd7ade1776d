package walletrpc

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// ErrThrottled is returned when a wallet request could not get a token before
// its context ended.
var ErrThrottled = errors.New("wallet request throttled")

// RateLimiter spaces out requests to each wallet endpoint with its own token
// bucket, so a slow bridge does not starve a local wallet.
type RateLimiter struct {
	mu      sync.RWMutex
	buckets map[string]*rate.Limiter
	perSec  rate.Limit
	burst   int
}

// NewRateLimiter creates a limiter allowing perSec requests per second to each
// wallet endpoint, with bursts of up to burst. A positive rate with a burst
// below one is raised to one; such a bucket would never admit a request.
func NewRateLimiter(perSec float64, burst int) *RateLimiter {
	if perSec > 0 && burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		buckets: make(map[string]*rate.Limiter),
		perSec:  rate.Limit(perSec),
		burst:   burst,
	}
}

// DefaultRateLimiter allows 5 requests per second with a burst of 10.
func DefaultRateLimiter() *RateLimiter {
	return NewRateLimiter(5, 10)
}

// Burst returns the bucket size used for every endpoint.
func (r *RateLimiter) Burst() int {
	return r.burst
}

// Allow reports whether a request to the wallet at endpoint may go out now.
func (r *RateLimiter) Allow(endpoint string) bool {
	return r.bucket(endpoint).Allow()
}

// Wait blocks until a request to the wallet at endpoint may go out.
func (r *RateLimiter) Wait(ctx context.Context, endpoint string) error {
	if err := r.bucket(endpoint).Wait(ctx); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrThrottled, endpoint, err)
	}
	return nil
}

func (r *RateLimiter) bucket(endpoint string) *rate.Limiter {
	r.mu.RLock()
	b, ok := r.buckets[endpoint]
	r.mu.RUnlock()
	if ok {
		return b
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok = r.buckets[endpoint]; ok {
		return b
	}
	b = rate.NewLimiter(r.perSec, r.burst)
	r.buckets[endpoint] = b
	return b
}
