package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/deepak9783/Eatsy/internal/store"
)

type memoryStash struct {
	store *gocache.Cache
	ttl   time.Duration
}

// NewMemoryStash creates a session-scoped stash for the cart store.
// ttl: how long an entry survives without being rewritten
// cleanupInterval: how often to scan for expired entries
func NewMemoryStash(ttl, cleanupInterval time.Duration) store.Stash {
	return &memoryStash{
		store: gocache.New(ttl, cleanupInterval),
		ttl:   ttl,
	}
}

func (c *memoryStash) Get(key string) ([]byte, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	data, ok := v.([]byte)
	return data, ok
}

func (c *memoryStash) Set(key string, value []byte) {
	c.store.Set(key, value, c.ttl)
}

func (c *memoryStash) Delete(key string) {
	c.store.Delete(key)
}
