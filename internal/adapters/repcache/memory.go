// Package repcache caches URL reputation verdicts between analyses so
// repeated URLs do not re-hit the external providers.
package repcache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/YashviSoni04/email-phishing-analyzer/internal/core"
)

type memoryEntry struct {
	verdict   core.URLVerdict
	expiresAt time.Time
}

// MemoryCache is an in-process TTL cache of URL verdicts.
type MemoryCache struct {
	entries map[string]memoryEntry
	ttl     time.Duration
	mu      sync.RWMutex
	logger  *zap.Logger
	stopCh  chan struct{}
}

// NewMemoryCache creates an in-memory verdict cache with a background sweep.
func NewMemoryCache(ttl time.Duration, logger *zap.Logger) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
	go c.sweep()
	return c
}

// Get returns a cached verdict that has not expired.
func (c *MemoryCache) Get(_ context.Context, rawURL string) (*core.URLVerdict, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[rawURL]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	verdict := entry.verdict
	return &verdict, true
}

// Set stores a verdict with the configured TTL.
func (c *MemoryCache) Set(_ context.Context, rawURL string, verdict *core.URLVerdict) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[rawURL] = memoryEntry{verdict: *verdict, expiresAt: time.Now().Add(c.ttl)}
}

func (c *MemoryCache) sweep() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			removed := 0
			for key, entry := range c.entries {
				if now.After(entry.expiresAt) {
					delete(c.entries, key)
					removed++
				}
			}
			c.mu.Unlock()
			if removed > 0 {
				c.logger.Debug("Swept expired URL verdicts", zap.Int("removed", removed))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background sweep.
func (c *MemoryCache) Stop() {
	close(c.stopCh)
}
