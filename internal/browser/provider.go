package browser

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Provider hands out sessions under one of the two lifecycle policies. The
// release func must be called on every exit path; after release the session
// must not be touched again.
type Provider interface {
	Acquire(ctx context.Context) (*Session, func(), error)
	Close()
}

// FreshProvider launches a new browser for every acquire and tears it down
// on release. Maximum isolation at the cost of per-entity startup latency.
type FreshProvider struct {
	mgr *Manager
}

// NewFreshProvider creates a per-entity fresh-browser provider.
func NewFreshProvider(mgr *Manager) *FreshProvider {
	return &FreshProvider{mgr: mgr}
}

// Acquire launches a session; release closes it.
func (p *FreshProvider) Acquire(ctx context.Context) (*Session, func(), error) {
	s, err := p.mgr.Launch(ctx)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}

// Close is a no-op: fresh sessions are closed at release.
func (p *FreshProvider) Close() {}

// PooledProvider reuses one session across acquires, restarting it after it
// has served retireAfter pages. Retirement bounds the memory growth a
// long-lived renderer accumulates.
type PooledProvider struct {
	mgr         *Manager
	retireAfter int

	mu      sync.Mutex
	current *Session
	closed  bool
}

// NewPooledProvider creates a reusing provider with page-count retirement.
func NewPooledProvider(mgr *Manager, retireAfter int) *PooledProvider {
	if retireAfter <= 0 {
		retireAfter = 25
	}
	return &PooledProvider{mgr: mgr, retireAfter: retireAfter}
}

// Acquire returns the shared session, replacing it first if it is dead or
// due for retirement. The release func is a no-op for a healthy shared
// session; teardown happens in Close or at replacement.
func (p *PooledProvider) Acquire(ctx context.Context) (*Session, func(), error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, nil, ErrSessionDead
	}

	if p.current != nil {
		if p.current.PagesServed() >= p.retireAfter {
			log.Debug().
				Int("pages_served", p.current.PagesServed()).
				Int("retire_after", p.retireAfter).
				Msg("Retiring browser session")
			p.current.Close()
			p.current = nil
		} else if !p.current.IsAlive() {
			log.Warn().Msg("Pooled browser session died, replacing")
			p.current.Close()
			p.current = nil
		}
	}

	if p.current == nil {
		s, err := p.mgr.Launch(ctx)
		if err != nil {
			return nil, nil, err
		}
		p.current = s
	}

	return p.current, func() {}, nil
}

// Close tears down the shared session.
func (p *PooledProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true

	if p.current != nil {
		p.current.Close()
		p.current = nil
	}
}
