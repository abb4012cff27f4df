package diskcache

import (
	"context"
	"os"

	"github.com/coldstore/diskcache/internal/opqueue"
)

// Set stores value under key. Returns the path the payload was written to,
// or "" if the write was refused (oversized payload) or failed.
func (c *Cache) Set(key string, value []byte) (string, error) {
	return c.setContext(context.Background(), key, value)
}

// SetContext is Set with a context argument. The context is not consulted:
// the write always runs to completion.
func (c *Cache) SetContext(ctx context.Context, key string, value []byte) (string, error) {
	return c.setContext(ctx, key, value)
}

// SetAsync runs Set on the operation queue and reports the result to
// completion.
func (c *Cache) SetAsync(key string, value []byte, completion func(url string, err error)) {
	c.queue.Schedule(func() {
		url, err := c.Set(key, value)
		if completion != nil {
			completion(url, err)
		}
	}, opqueue.Normal)
}

func (c *Cache) setContext(_ context.Context, key string, value []byte) (string, error) {
	raw, err := c.serializer(key, value)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	byteLimit := c.byteLimit
	c.mu.Unlock()
	if byteLimit > 0 && int64(len(raw)) > byteLimit {
		// Payload alone exceeds the byte limit: skip the write silently
		// rather than returning an error.
		return "", nil
	}

	c.lockForWriting()
	willAdd := c.callbacks.WillAdd
	c.unlock()
	if willAdd != nil {
		willAdd(key)
	}

	path := c.encodedPath(key)
	entry, err := c.writeThroughTemp(path, raw)
	if err != nil {
		c.logError("diskcache: write failed", "key", key, "error", err)
		return "", c.fsError("write", err)
	}

	c.mu.Lock()
	c.idx.insertOrReplace(key, entry.Date, entry.Size)
	byteCount := c.idx.byteCount
	byteLimit = c.byteLimit
	c.mu.Unlock()

	c.puts.Add(1)
	c.metrics.Put()
	c.metrics.Size(c.Len(), byteCount)

	if byteLimit > 0 && byteCount > byteLimit {
		c.TrimToSizeByDateAsync(byteLimit, nil)
	}

	c.lock()
	didAdd := c.callbacks.DidAdd
	c.unlock()
	if didAdd != nil {
		didAdd(key)
	}

	return path, nil
}

// writeThroughTemp writes raw to a temp file in the cache directory, sets
// writingProtection bits, and renames it into place atomically, returning
// the resulting file's observed modification time and size.
func (c *Cache) writeThroughTemp(path string, raw []byte) (Entry, error) {
	dir := c.cacheURL
	tmp, err := os.CreateTemp(dir, ".diskcache-tmp-*")
	if err != nil {
		return Entry{}, err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return Entry{}, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return Entry{}, err
	}
	mode := os.FileMode(0o644) | (c.writingProtection & os.ModePerm)
	if err := os.Chmod(tmpPath, mode); err != nil {
		os.Remove(tmpPath)
		return Entry{}, err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return Entry{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Date: info.ModTime(), Size: info.Size()}, nil
}

// Len returns the number of resident entries in the index. It does not
// wait for the bootstrap scan; before the scan completes it counts only the
// entries indexed so far.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.idx.len()
}
