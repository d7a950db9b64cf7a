package analytics

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"
)

// RenderCache memoizes rendered chart markup by key.
type RenderCache interface {
	GetOrRender(key string, render func() (string, error)) (string, error)
}

// ChartCache is an in-memory TTL cache for chart markup. Views re-derive every
// panel on each state change, so unchanged panels hit the cache.
type ChartCache struct {
	ttl     time.Duration
	mu      sync.Mutex
	entries map[string]renderedChart
	now     func() time.Time
}

type renderedChart struct {
	markup  string
	expires time.Time
}

// NewChartCache builds a cache whose entries live for ttl. A non-positive ttl
// disables caching.
func NewChartCache(ttl time.Duration) *ChartCache {
	return &ChartCache{
		ttl:     ttl,
		entries: make(map[string]renderedChart),
		now:     time.Now,
	}
}

// GetOrRender returns the cached markup or renders and stores it.
func (c *ChartCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if c == nil || c.ttl <= 0 {
		return render()
	}
	now := c.now()
	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok && now.After(entry.expires) {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()
	if ok {
		return entry.markup, nil
	}

	markup, err := render()
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.entries[key] = renderedChart{markup: markup, expires: now.Add(c.ttl)}
	c.mu.Unlock()
	return markup, nil
}

// Purge drops expired entries and returns how many remain.
func (c *ChartCache) Purge() int {
	if c == nil {
		return 0
	}
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if now.After(entry.expires) {
			delete(c.entries, key)
		}
	}
	return len(c.entries)
}

// renderKey derives a cache key from the chart kind and its input data. It
// returns "" when the data cannot be hashed (NaN values, for instance).
func renderKey(kind string, parts ...any) string {
	b, err := json.Marshal(parts)
	if err != nil {
		return ""
	}
	sum := sha1.Sum(b)
	return kind + ":" + hex.EncodeToString(sum[:])
}
