package repo

import (
	"sync"
	"time"

	"github.com/golang/groupcache/lru"

	"github.com/mzki/erasave/save"
)

// metadataCache holds metadata of save files keyed by save name.
// An entry is valid while the file keeps the same size and
// modification time. nil *metadataCache is a disabled cache.
type metadataCache struct {
	mu    sync.Mutex
	cache *lru.Cache // under mutex because cache is not safe for concurrently.
}

type cacheEntry struct {
	size    int64
	modTime time.Time
	md      save.Metadata
}

func newMetadataCache(size int) *metadataCache {
	if size <= 0 {
		return nil
	}
	return &metadataCache{cache: lru.New(size)}
}

func (c *metadataCache) Get(name string, size int64, modTime time.Time) (save.Metadata, bool) {
	if c == nil {
		return save.Metadata{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.cache.Get(name)
	if !ok {
		return save.Metadata{}, false
	}
	e := v.(cacheEntry)
	if e.size != size || !e.modTime.Equal(modTime) {
		c.cache.Remove(name)
		return save.Metadata{}, false
	}
	return e.md, true
}

func (c *metadataCache) Add(name string, size int64, modTime time.Time, md save.Metadata) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(name, cacheEntry{size: size, modTime: modTime, md: md})
}

func (c *metadataCache) Remove(name string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Remove(name)
}

func (c *metadataCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}
