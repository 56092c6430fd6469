package glyph

import (
	"github.com/gogpu/sketch/grid"
	"github.com/gogpu/sketch/internal/cache"
)

// DefaultCacheCapacity holds every variant of the default plan for all
// ten digits with room to spare.
const DefaultCacheCapacity = 1024

type cacheKey struct {
	label   rune
	variant Variant
}

// CachedRenderer memoizes another Renderer. Errors are not cached.
// Callers receive their own copy of each bitmap.
type CachedRenderer struct {
	next  Renderer
	cache *cache.Cache[cacheKey, *grid.Bitmap]
}

// NewCachedRenderer wraps r with an LRU cache of at most capacity
// bitmaps. A capacity of zero or less uses DefaultCacheCapacity.
func NewCachedRenderer(r Renderer, capacity int) *CachedRenderer {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &CachedRenderer{
		next:  r,
		cache: cache.New[cacheKey, *grid.Bitmap](capacity),
	}
}

// Render implements Renderer.
func (c *CachedRenderer) Render(label rune, v Variant) (*grid.Bitmap, error) {
	key := cacheKey{label: label, variant: v}
	if b, ok := c.cache.Get(key); ok {
		return b.Clone(), nil
	}
	b, err := c.next.Render(label, v)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, b.Clone())
	return b, nil
}

// CacheStats reports the state of a CachedRenderer.
type CacheStats struct {
	Len       int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// HitRate returns Hits / (Hits + Misses), or 0 before any lookup.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Stats returns hit and miss counts of the cache.
func (c *CachedRenderer) Stats() CacheStats {
	s := c.cache.Stats()
	return CacheStats{
		Len:       s.Len,
		Capacity:  s.Capacity,
		Hits:      s.Hits,
		Misses:    s.Misses,
		Evictions: s.Evictions,
	}
}
