package dataset

import (
	"path"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/gyeh/atexplorer/internal/normalize"
)

// Cache memoizes parsed uploads by content hash. A Cache belongs to one
// session and is dropped with it; entries are never evicted. Bundles handed
// out are shared and must be treated as read-only.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*Bundle
	group   singleflight.Group
	hits    int
	misses  int

	parse func(name string, data []byte) (*Bundle, error)
}

// NewCache creates an empty cache. Archives may expand to at most limit
// bytes; zero disables the cap.
func NewCache(limit int64) *Cache {
	return &Cache{
		entries: make(map[string]*Bundle),
		parse: func(name string, data []byte) (*Bundle, error) {
			return LoadLimit(name, data, limit)
		},
	}
}

type cacheResult struct {
	bundle *Bundle
	hit    bool
}

// Load returns the cached bundle for identical content, parsing it on the
// first request. cached reports whether the bundle came out of the cache;
// callers that joined an in-flight parse get cached == false. Failed loads
// are not cached.
func (c *Cache) Load(name string, data []byte) (b *Bundle, cached bool, err error) {
	key := cacheKey(name, data)

	if b, ok := c.lookup(key); ok {
		return b, true, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if b, ok := c.lookup(key); ok {
			return cacheResult{bundle: b, hit: true}, nil
		}

		b, err := c.parse(name, data)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = b
		c.misses++
		c.mu.Unlock()
		return cacheResult{bundle: b}, nil
	})
	if err != nil {
		return nil, false, err
	}
	res := v.(cacheResult)
	return res.bundle, res.hit, nil
}

func (c *Cache) lookup(key string) (*Bundle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return b, ok
}

// Len returns the number of cached bundles.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns hit and miss counts.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// cacheKey is the content hash plus the lower-cased base name, since the
// name of a flat CSV decides which table it becomes.
func cacheKey(name string, data []byte) string {
	base := path.Base(strings.ToLower(strings.ReplaceAll(name, "\\", "/")))
	return normalize.ContentHash(data) + "|" + base
}
