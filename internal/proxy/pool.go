package proxy

import (
	"sync"
	"time"
)

// failureCooldown is how long a proxy sits out after a failed launch.
const failureCooldown = 5 * time.Minute

// Pool manages a list of proxies with rotation and failure tracking. Each
// browser launch takes the next healthy proxy, so a long crawl spreads its
// sessions across exits.
type Pool struct {
	proxies []string
	index   int
	mu      sync.Mutex
	failed  map[string]time.Time
}

// NewPool creates a rotating pool. An empty list yields a pool that always
// returns "".
func NewPool(proxies []string) *Pool {
	return &Pool{
		proxies: proxies,
		failed:  make(map[string]time.Time),
	}
}

// Next returns the next healthy proxy from the pool.
func (p *Pool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	start := p.index
	for {
		candidate := p.proxies[p.index]
		p.index = (p.index + 1) % len(p.proxies)

		if failTime, ok := p.failed[candidate]; ok {
			if time.Since(failTime) < failureCooldown {
				if p.index == start {
					// Every proxy is cooling down; hand one out anyway
					// rather than stalling the crawl.
					return candidate
				}
				continue
			}
			delete(p.failed, candidate)
		}

		return candidate
	}
}

// MarkFailed puts a proxy on cooldown.
func (p *Pool) MarkFailed(proxy string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed[proxy] = time.Now()
}

// MarkHealthy clears the failure status of a proxy.
func (p *Pool) MarkHealthy(proxy string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.failed, proxy)
}

// Size returns the number of configured proxies.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.proxies)
}
