package diskcache

import (
	"github.com/coldstore/diskcache/internal/opqueue"
)

// Enumerate waits for the index to reach a fully known state, then calls f
// once per resident entry (skipping entries expired under TTL-cache mode,
// without evicting them). f may return true to stop iteration early. The
// callback runs without the cache's mutex held.
func (c *Cache) Enumerate(f func(key string, entry Entry) (stop bool)) {
	c.lockAndWaitForKnownState()
	ttlCache := c.ttlCache
	ageLimit := c.ageLimit
	now := c.now()

	type kv struct {
		key string
		e   Entry
	}
	snapshot := make([]kv, 0, c.idx.len())
	for k, e := range c.idx.entries {
		snapshot = append(snapshot, kv{k, e})
	}
	c.unlock()

	for _, item := range snapshot {
		if ttlCache && ageLimit > 0 && now.Sub(item.e.Date) >= ageLimit {
			continue
		}
		if f(item.key, item.e) {
			return
		}
	}
}

// EnumerateAsync runs Enumerate on the operation queue.
func (c *Cache) EnumerateAsync(f func(key string, entry Entry) (stop bool), completion func()) {
	c.queue.Schedule(func() {
		c.Enumerate(f)
		if completion != nil {
			completion()
		}
	}, opqueue.Normal)
}
