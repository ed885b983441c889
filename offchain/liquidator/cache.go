package liquidator

import (
	"sync"
	"time"
)

// CooldownCache remembers accounts the bot recently submitted against so a
// pending liquidation is not resubmitted before it lands.
type CooldownCache struct {
	entries  map[string]time.Time
	cooldown time.Duration
	mu       sync.RWMutex
}

// NewCooldownCache creates a cache whose entries expire after cooldown
func NewCooldownCache(cooldown time.Duration) *CooldownCache {
	return &CooldownCache{
		entries:  make(map[string]time.Time),
		cooldown: cooldown,
	}
}

// Active reports whether account was marked less than one cooldown before now
func (c *CooldownCache) Active(account string, now time.Time) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	marked, exists := c.entries[account]
	return exists && now.Sub(marked) < c.cooldown
}

// Mark records a submission against account at now
func (c *CooldownCache) Mark(account string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[account] = now
}

// Forget drops account from the cache
func (c *CooldownCache) Forget(account string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, account)
}

// Prune removes expired entries and returns how many were dropped
func (c *CooldownCache) Prune(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	dropped := 0
	for account, marked := range c.entries {
		if now.Sub(marked) >= c.cooldown {
			delete(c.entries, account)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of cached accounts, expired or not
func (c *CooldownCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
