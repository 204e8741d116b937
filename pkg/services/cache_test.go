package services

import (
	"fmt"
	"testing"
	"time"

	"cms-site/pkg/models"

	"github.com/stretchr/testify/assert"
)

func TestPageCacheVariantsAreSeparate(t *testing.T) {
	c := NewPageCache(time.Minute, 100)
	plain := &models.PageView{Locale: "en"}
	personalized := &models.PageView{Locale: "en", VariantAliases: []string{"cs_personalize_a_1"}}

	c.Put("en", "/about", nil, plain)
	c.Put("en", "/about", []string{"cs_personalize_b_2", "cs_personalize_a_1"}, personalized)

	got, ok := c.Get("en", "/about", nil)
	assert.True(t, ok)
	assert.Same(t, plain, got)

	got, ok = c.Get("en", "/about", []string{"cs_personalize_a_1", "cs_personalize_b_2"})
	assert.True(t, ok, "alias order does not matter")
	assert.Same(t, personalized, got)

	_, ok = c.Get("th", "/about", nil)
	assert.False(t, ok)
}

func TestPageCacheExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewPageCache(time.Minute, 100)
	c.now = func() time.Time { return now }

	c.Put("en", "/", nil, &models.PageView{})
	_, ok := c.Get("en", "/", nil)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("en", "/", nil)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestPageCacheInvalidate(t *testing.T) {
	c := NewPageCache(time.Minute, 100)
	c.Put("en", "/about", nil, &models.PageView{})
	c.Put("th", "/about", []string{"x"}, &models.PageView{})
	c.Put("en", "/", nil, &models.PageView{})

	assert.Equal(t, 2, c.Invalidate("/about/"))
	assert.Equal(t, []string{"/"}, c.Stats().URLs)

	assert.Equal(t, 1, c.InvalidateAll())
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestPageCacheDisabled(t *testing.T) {
	c := NewPageCache(0, 100)
	c.Put("en", "/", nil, &models.PageView{})
	_, ok := c.Get("en", "/", nil)
	assert.False(t, ok)

	c = NewPageCache(time.Minute, 0)
	c.Put("en", "/", nil, &models.PageView{})
	_, ok = c.Get("en", "/", nil)
	assert.False(t, ok)

	var nilCache *PageCache
	_, ok = nilCache.Get("en", "/", nil)
	assert.False(t, ok)
	nilCache.Put("en", "/", nil, &models.PageView{})
}

func TestPageCacheStats(t *testing.T) {
	c := NewPageCache(time.Minute, 100)
	c.Put("en", "/b", nil, &models.PageView{})
	c.Put("en", "/a", nil, &models.PageView{})
	c.Get("en", "/a", nil)
	c.Get("en", "/zzz", nil)

	stats := c.Stats()
	assert.Equal(t, CacheStats{Entries: 2, Hits: 1, Misses: 1, URLs: []string{"/a", "/b"}}, stats)
}

func TestPageCacheBoundedByVariants(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewPageCache(time.Minute, 10)
	c.now = func() time.Time { return now }

	for i := 0; i < 1000; i++ {
		now = now.Add(time.Millisecond)
		c.Put("en", "/", []string{fmt.Sprintf("cs_personalize_x_%d", i)}, &models.PageView{})
	}
	stats := c.Stats()
	assert.Equal(t, 10, stats.Entries)
	assert.Equal(t, 990, stats.Evicted)

	// the newest variants survive
	_, ok := c.Get("en", "/", []string{"cs_personalize_x_999"})
	assert.True(t, ok)
	_, ok = c.Get("en", "/", []string{"cs_personalize_x_0"})
	assert.False(t, ok)
}

func TestPageCacheSweepsExpiredWhenFull(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewPageCache(time.Minute, 3)
	c.now = func() time.Time { return now }

	c.Put("en", "/a", nil, &models.PageView{})
	c.Put("en", "/b", nil, &models.PageView{})
	c.Put("en", "/c", nil, &models.PageView{})

	now = now.Add(2 * time.Minute)
	c.Put("en", "/d", nil, &models.PageView{})

	stats := c.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, []string{"/d"}, stats.URLs)
}

func TestPageCacheOverwriteDoesNotEvict(t *testing.T) {
	c := NewPageCache(time.Minute, 1)
	first := &models.PageView{}
	second := &models.PageView{}

	c.Put("en", "/a", nil, first)
	c.Put("en", "/a", nil, second)

	got, ok := c.Get("en", "/a", nil)
	assert.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, 0, c.Stats().Evicted)
}
