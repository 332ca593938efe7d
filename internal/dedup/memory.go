package dedup

import (
	"context"
	"sync"
	"time"
)

const defaultSweepInterval = time.Hour

// MemoryCache is the in-process Cache implementation: a TTL map swept
// periodically. Suited to tests and single-node runs.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]time.Time // key -> expiry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache builds a cache whose entries expire after ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]time.Time),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryCache) Seen(_ context.Context, source, fingerprint string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiry, ok := c.entries[source+"|"+fingerprint]
	if !ok {
		return false, nil
	}
	if c.now().After(expiry) {
		delete(c.entries, source+"|"+fingerprint)
		return false, nil
	}
	return true, nil
}

func (c *MemoryCache) MarkSeen(_ context.Context, source, fingerprint string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[source+"|"+fingerprint] = c.now().Add(c.ttl)
	return nil
}

// StartSweeper removes expired entries on an interval until ctx ends.
func (c *MemoryCache) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

func (c *MemoryCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for key, expiry := range c.entries {
		if now.After(expiry) {
			delete(c.entries, key)
		}
	}
}

// Len reports live entries, counting expired-but-unswept ones out.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	now := c.now()
	for _, expiry := range c.entries {
		if !now.After(expiry) {
			n++
		}
	}
	return n
}
