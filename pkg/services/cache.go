package services

import (
	"sort"
	"strings"
	"sync"
	"time"

	"cms-site/pkg/models"
)

type cacheEntry struct {
	url     string
	view    *models.PageView
	expires time.Time
}

// PageCache holds assembled pages for a short TTL. Personalized variants of
// the same URL are cached separately, and the total number of entries is
// capped at max.
type PageCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	max     int
	entries map[string]cacheEntry
	hits    int
	misses  int
	evicted int
	now     func() time.Time
}

type CacheStats struct {
	Entries int      `json:"entries"`
	Hits    int      `json:"hits"`
	Misses  int      `json:"misses"`
	Evicted int      `json:"evicted"`
	URLs    []string `json:"urls"`
}

// NewPageCache returns a cache holding at most maxEntries pages; a
// non-positive ttl or maxEntries disables it.
func NewPageCache(ttl time.Duration, maxEntries int) *PageCache {
	if maxEntries <= 0 {
		ttl = 0
	}
	return &PageCache{
		ttl:     ttl,
		max:     maxEntries,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func cacheKey(locale, url string, aliases []string) string {
	sorted := append([]string(nil), aliases...)
	sort.Strings(sorted)
	return locale + "|" + url + "|" + strings.Join(sorted, ",")
}

func (c *PageCache) Get(locale, url string, aliases []string) (*models.PageView, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(locale, url, aliases)
	e, ok := c.entries[key]
	if !ok || c.now().After(e.expires) {
		delete(c.entries, key)
		c.misses++
		return nil, false
	}
	c.hits++
	return e.view, true
}

func (c *PageCache) Put(locale, url string, aliases []string, view *models.PageView) {
	if c == nil || c.ttl <= 0 || view == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(locale, url, aliases)
	now := c.now()
	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.max {
		c.makeRoom(now)
	}
	c.entries[key] = cacheEntry{
		url:     url,
		view:    view,
		expires: now.Add(c.ttl),
	}
}

// makeRoom drops expired entries, then the one closest to expiry if the
// cache is still full. Callers hold mu.
func (c *PageCache) makeRoom(now time.Time) {
	for key, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, key)
			c.evicted++
		}
	}
	for len(c.entries) >= c.max {
		var oldest string
		var at time.Time
		for key, e := range c.entries {
			if oldest == "" || e.expires.Before(at) {
				oldest, at = key, e.expires
			}
		}
		delete(c.entries, oldest)
		c.evicted++
	}
}

// Invalidate drops every cached page for url in any locale or variant.
func (c *PageCache) Invalidate(url string) int {
	if c == nil {
		return 0
	}
	url = NormalizePath(url)
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for key, e := range c.entries {
		if e.url == url {
			delete(c.entries, key)
			n++
		}
	}
	return n
}

func (c *PageCache) InvalidateAll() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[string]cacheEntry)
	return n
}

func (c *PageCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := map[string]bool{}
	urls := []string{}
	for _, e := range c.entries {
		if !seen[e.url] {
			seen[e.url] = true
			urls = append(urls, e.url)
		}
	}
	sort.Strings(urls)
	return CacheStats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses, Evicted: c.evicted, URLs: urls}
}
