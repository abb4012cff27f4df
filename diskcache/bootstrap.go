package diskcache

import (
	"os"
	"strings"
)

// startBootstrap runs the two-phase disk bootstrap on its own goroutine,
// separate from c.queue: trim_*_async and other queued operations wait on
// diskWritable/diskStateKnown, so bootstrap must never be queued behind
// them or it would deadlock against its own prerequisites.
func (c *Cache) startBootstrap() {
	go func() {
		c.bootstrapCreateDirectory()
		c.bootstrapScanDirectory()
	}()
}

// bootstrapCreateDirectory is bootstrap phase 1: create the cache
// directory (with intermediates) if absent, set diskWritable, and
// broadcast — even on failure, so waiters never deadlock.
func (c *Cache) bootstrapCreateDirectory() {
	err := os.MkdirAll(c.cacheURL, 0o755)
	if err != nil {
		c.logError("diskcache: create cache directory failed", "dir", c.cacheURL, "error", err)
	}

	c.mu.Lock()
	c.diskWritable = true
	c.diskWritableCond.Broadcast()
	c.mu.Unlock()
}

// bootstrapScanDirectory is bootstrap phase 2: enumerate the cache
// directory (skipping hidden entries), populate the metadata index one
// file at a time under the mutex, then set diskStateKnown and broadcast.
// A failed directory read is treated as an empty cache rather than a fatal
// error, but diskStateKnown still latches so waiters are never stuck.
func (c *Cache) bootstrapScanDirectory() {
	entries, err := os.ReadDir(c.cacheURL)
	if err != nil {
		c.logError("diskcache: scan cache directory failed", "dir", c.cacheURL, "error", err)
		entries = nil
	}

	for _, de := range entries {
		name := de.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		if info.IsDir() {
			continue
		}
		key := c.keyDecoder(name)

		c.mu.Lock()
		c.idx.insertOrReplace(key, info.ModTime(), info.Size())
		c.mu.Unlock()
	}

	c.mu.Lock()
	byteLimit := c.byteLimit
	byteCount := c.idx.byteCount
	c.diskStateKnown = true
	c.diskStateKnownCond.Broadcast()
	c.mu.Unlock()

	if byteLimit > 0 && byteCount > byteLimit {
		c.TrimToSizeByDateAsync(byteLimit, nil)
	}
}
