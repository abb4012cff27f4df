package diskcache

import (
	"os"

	"github.com/coldstore/diskcache/internal/opqueue"
	"github.com/coldstore/diskcache/metrics"
)

// Remove deletes the file for key via the trash manager. No-op (returns
// false) if the file is already absent.
func (c *Cache) Remove(key string) bool {
	path := c.encodedPath(key)

	c.lockForWriting()
	if _, err := os.Stat(path); err != nil {
		c.unlock()
		return false
	}
	willRemove := c.callbacks.WillRemove
	c.unlock()
	if willRemove != nil {
		willRemove(key)
	}

	ok, err := c.trash.MoveToTrash(path)
	if err != nil {
		c.logError("diskcache: move to trash failed", "key", key, "error", err)
		return false
	}
	if !ok {
		// Lost a race: someone else removed it between the Stat above and
		// the rename. Metadata is left in place until the next bootstrap
		// scan.
		return false
	}
	c.trash.Empty()

	c.mu.Lock()
	c.idx.remove(key)
	byteCount := c.idx.byteCount
	c.mu.Unlock()

	c.removes.Add(1)
	c.metrics.Remove()
	c.metrics.Size(c.Len(), byteCount)
	c.metrics.TrashPending(c.trash.Pending())

	c.lock()
	didRemove := c.callbacks.DidRemove
	c.unlock()
	if didRemove != nil {
		didRemove(key)
	}

	return true
}

// RemoveAsync runs Remove on the operation queue.
func (c *Cache) RemoveAsync(key string, completion func(removed bool)) {
	c.queue.Schedule(func() {
		removed := c.Remove(key)
		if completion != nil {
			completion(removed)
		}
	}, opqueue.Normal)
}

// RemoveAll empties the entire cache at directory granularity: the backing
// directory is renamed into the trash and recreated empty, and the index
// is cleared.
func (c *Cache) RemoveAll() error {
	c.lockForWriting()
	removedCount := c.idx.len()
	willRemoveAll := c.callbacks.WillRemoveAll
	c.unlock()
	if willRemoveAll != nil {
		willRemoveAll()
	}

	ok, err := c.trash.MoveToTrash(c.cacheURL)
	if err != nil {
		c.logError("diskcache: move cache directory to trash failed", "dir", c.cacheURL, "error", err)
	}
	if ok {
		c.trash.Empty()
	}

	if err := os.MkdirAll(c.cacheURL, 0o755); err != nil {
		c.logError("diskcache: recreate cache directory failed", "dir", c.cacheURL, "error", err)
		return c.fsError("remove_all", err)
	}

	c.mu.Lock()
	c.idx.clear()
	c.mu.Unlock()

	for i := 0; i < removedCount; i++ {
		c.metrics.Evict(metrics.EvictRemoveAll)
	}
	c.metrics.Size(0, 0)
	c.metrics.TrashPending(c.trash.Pending())

	c.lock()
	didRemoveAll := c.callbacks.DidRemoveAll
	c.unlock()
	if didRemoveAll != nil {
		didRemoveAll()
	}

	return nil
}

// RemoveAllAsync runs RemoveAll on the operation queue.
func (c *Cache) RemoveAllAsync(completion func(err error)) {
	c.queue.Schedule(func() {
		err := c.RemoveAll()
		if completion != nil {
			completion(err)
		}
	}, opqueue.Normal)
}
