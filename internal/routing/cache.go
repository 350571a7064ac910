package routing

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"swap-router.backend/internal/domain/entities"
	"swap-router.backend/pkg/metrics"
)

// DefaultCacheTTL is the expiry applied when Set is called without a TTL.
const DefaultCacheTTL = 30 * time.Second

// CacheStats are monotone counters. Clear does not reset them.
type CacheStats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Sets      uint64 `json:"sets"`
	Evictions uint64 `json:"evictions"`
}

type cacheEntry struct {
	value     any
	expiresAt time.Time
}

// Cache is an in-process TTL map shared by the routing engine. Reads of
// live entries never suspend; expired entries are evicted lazily on access
// or eagerly via EvictExpired.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	stats   CacheStats
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates a cache with the default TTL.
func NewCache() *Cache {
	return NewCacheWithTTL(DefaultCacheTTL)
}

// NewCacheWithTTL creates a cache with a custom default TTL.
func NewCacheWithTTL(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the live value for key, or nil when absent or expired.
// An expired entry is evicted exactly once.
func (c *Cache) Get(key string) any {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		metrics.CacheMisses.Inc()
		return nil
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		c.stats.Evictions++
		c.stats.Misses++
		metrics.CacheEvictions.Inc()
		metrics.CacheMisses.Inc()
		return nil
	}
	c.stats.Hits++
	metrics.CacheHits.Inc()
	return e.value
}

// Has reports whether a live entry exists without counting a hit or miss.
func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return ok && !c.now().After(e.expiresAt)
}

// Set stores value under key. A zero ttl uses the cache default.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, expiresAt: c.now().Add(ttl)}
	c.stats.Sets++
	metrics.CacheSets.Inc()
}

// Delete removes a key without touching the eviction counter.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops all entries. Statistics survive.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// EvictExpired removes every expired entry and returns how many were dropped.
func (c *Cache) EvictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	evicted := 0
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
			c.stats.Evictions++
			metrics.CacheEvictions.Inc()
			evicted++
		}
	}
	return evicted
}

// Len returns the number of stored entries, live or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the monotone counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// GetPath returns a cached FoundPath, or nil.
func (c *Cache) GetPath(key string) *entities.FoundPath {
	if v, ok := c.Get(key).(*entities.FoundPath); ok {
		return v
	}
	return nil
}

// GetRoute returns a cached MultiStepRoute, or nil.
func (c *Cache) GetRoute(key string) *entities.MultiStepRoute {
	if v, ok := c.Get(key).(*entities.MultiStepRoute); ok {
		return v
	}
	return nil
}

// RouteKey builds the cache key for a direct route lookup.
func RouteKey(sell, buy entities.AssetID) string {
	return "route:" + string(sell) + ":" + string(buy)
}

// QuoteKey builds the cache key for an aggregated quote.
func QuoteKey(sell, buy entities.AssetID, amountBaseUnit string) string {
	return "quote:" + string(sell) + ":" + string(buy) + ":" + amountBaseUnit
}

// PathKey builds the cache key for a constrained path search. Provider
// lists are sorted so logically equal constraint sets share a key.
func PathKey(sell, buy entities.AssetID, c entities.PathConstraints) string {
	var b strings.Builder
	b.WriteString("path:")
	b.WriteString(string(sell))
	b.WriteString(":")
	b.WriteString(string(buy))
	b.WriteString(":h")
	b.WriteString(strconv.Itoa(c.MaxHops))
	b.WriteString(":x")
	b.WriteString(strconv.Itoa(c.MaxCrossChainHops))
	if len(c.AllowedProviders) > 0 {
		b.WriteString(":a")
		b.WriteString(joinSortedProviders(c.AllowedProviders))
	}
	if len(c.ExcludedProviders) > 0 {
		b.WriteString(":e")
		b.WriteString(joinSortedProviders(c.ExcludedProviders))
	}
	return b.String()
}

func joinSortedProviders(ps []entities.Provider) string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = string(p)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}
