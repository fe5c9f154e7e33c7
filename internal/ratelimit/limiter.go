// internal/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Waiter blocks until the next request may proceed.
type Waiter interface {
	// Wait blocks until a request can proceed. If the context is cancelled
	// before the limiter allows, an error is returned.
	Wait(ctx context.Context) error
}

// Politeness paces a single-site crawl. It combines a token bucket with a
// randomized human-like delay so requests neither burst nor tick at a
// machine-regular interval. Concurrency stays at 1 by policy; this only
// shapes the spacing between sequential requests.
type Politeness struct {
	limiter  *rate.Limiter
	minDelay time.Duration
	maxDelay time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPoliteness creates a limiter with the given sustained rate and the
// [minDelay, maxDelay] jitter window applied on top of it.
func NewPoliteness(requestsPerSecond float64, burst int, minDelay, maxDelay time.Duration) *Politeness {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 0.5
	}
	if burst <= 0 {
		burst = 1
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}

	return &Politeness{
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		minDelay: minDelay,
		maxDelay: maxDelay,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Wait blocks for the token bucket plus a randomized delay.
func (p *Politeness) Wait(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	delay := p.jitter()
	if delay <= 0 {
		return nil
	}

	log.Debug().Dur("delay", delay).Msg("Politeness delay")

	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Politeness) jitter() time.Duration {
	if p.maxDelay <= 0 {
		return 0
	}
	span := p.maxDelay - p.minDelay
	if span <= 0 {
		return p.minDelay
	}

	p.mu.Lock()
	d := p.minDelay + time.Duration(p.rng.Int63n(int64(span)))
	p.mu.Unlock()
	return d
}
