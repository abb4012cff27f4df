package diskcache

import (
	"context"
	"errors"
	"os"

	"github.com/coldstore/diskcache/internal/opqueue"
)

// Get returns the payload stored for key, or nil if absent or expired.
func (c *Cache) Get(key string) ([]byte, error) {
	return c.getContext(context.Background(), key)
}

// GetContext is Get with a context that bounds only the wait on a read of
// the same key already in flight from another caller; it does not cancel a
// read this call starts itself, nor any filesystem syscall.
func (c *Cache) GetContext(ctx context.Context, key string) ([]byte, error) {
	return c.getContext(ctx, key)
}

// GetAsync runs Get on the operation queue and reports the result to
// completion, which runs off the caller's goroutine.
func (c *Cache) GetAsync(key string, completion func(payload []byte, err error)) {
	c.queue.Schedule(func() {
		payload, err := c.Get(key)
		if completion != nil {
			completion(payload, err)
		}
	}, opqueue.Normal)
}

func (c *Cache) getContext(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	_, present := c.idx.get(key)
	stateKnown := c.diskStateKnown
	if !present && stateKnown {
		c.mu.Unlock()
		c.misses.Add(1)
		c.metrics.Miss()
		return nil, nil
	}
	ttlCache := c.ttlCache
	c.mu.Unlock()

	path := c.encodedPath(key)

	if ttlCache {
		c.lockAndWaitForKnownState()
		entry, present := c.idx.get(key)
		ageLimit := c.ageLimit
		now := c.now()
		c.mu.Unlock()
		if !present {
			c.misses.Add(1)
			c.metrics.Miss()
			return nil, nil
		}
		if ageLimit > 0 && now.Sub(entry.Date) >= ageLimit {
			// Expired: invisible to readers, but not eagerly evicted.
			c.misses.Add(1)
			c.metrics.Miss()
			return nil, nil
		}
	}

	raw, err := c.sf.Do(ctx, key, func() ([]byte, error) {
		return os.ReadFile(path)
	})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.misses.Add(1)
			c.metrics.Miss()
			return nil, nil
		}
		c.logError("diskcache: read failed", "key", key, "error", err)
		c.misses.Add(1)
		c.metrics.Miss()
		return nil, c.fsError("read", err)
	}

	payload, derr := c.deserializer(key, raw)
	if derr != nil {
		// Deserialization fault: the offending file is deleted, but the
		// metadata entry is intentionally left in place until the next
		// bootstrap scan reconciles it.
		c.lockForWriting()
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			c.logError("diskcache: remove corrupt file failed", "key", key, "error", rmErr)
		}
		c.unlock()
		return nil, derr
	}

	if !ttlCache {
		c.touchAsync(key, path)
	}

	c.hits.Add(1)
	c.metrics.Hit()
	return payload, nil
}

// touchAsync refreshes a file's modification time to now and, on success,
// the corresponding metadata entry's date, off the caller's goroutine.
func (c *Cache) touchAsync(key, path string) {
	c.queue.Schedule(func() {
		now := c.now()
		if err := os.Chtimes(path, now, now); err != nil {
			return
		}
		c.mu.Lock()
		if e, ok := c.idx.get(key); ok {
			c.idx.entries[key] = Entry{Date: now, Size: e.Size}
		}
		c.mu.Unlock()
	}, opqueue.Low)
}

// Contains reports whether a file for key exists, honoring the metadata
// fast path.
func (c *Cache) Contains(key string) bool {
	c.mu.Lock()
	_, present := c.idx.get(key)
	stateKnown := c.diskStateKnown
	c.mu.Unlock()
	if !present && stateKnown {
		return false
	}

	_, err := os.Stat(c.encodedPath(key))
	return err == nil
}

// ContainsAsync runs Contains on the operation queue.
func (c *Cache) ContainsAsync(key string, completion func(bool)) {
	c.queue.Schedule(func() {
		ok := c.Contains(key)
		if completion != nil {
			completion(ok)
		}
	}, opqueue.Normal)
}

// FileURL returns the path backing key if it currently exists, refreshing
// its modification time unless the cache is in TTL-cache mode.
func (c *Cache) FileURL(key string) (string, bool) {
	c.mu.Lock()
	_, present := c.idx.get(key)
	stateKnown := c.diskStateKnown
	ttlCache := c.ttlCache
	c.mu.Unlock()
	if !present && stateKnown {
		return "", false
	}

	path := c.encodedPath(key)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	if !ttlCache {
		c.touchAsync(key, path)
	}
	return path, true
}

// FileURLAsync runs FileURL on the operation queue.
func (c *Cache) FileURLAsync(key string, completion func(url string, ok bool)) {
	c.queue.Schedule(func() {
		url, ok := c.FileURL(key)
		if completion != nil {
			completion(url, ok)
		}
	}, opqueue.Normal)
}
