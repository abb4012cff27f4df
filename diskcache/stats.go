package diskcache

// Stats is a point-in-time snapshot of cache-level counters.
type Stats struct {
	Entries      int
	ByteCount    int64
	TrashPending int

	// Hits, Misses, Puts, and Removes are cumulative, process-lifetime
	// counters, tracked independently of the pluggable Metrics sink so a
	// caller can always inspect Cache activity without wiring a
	// metrics.Metrics implementation.
	Hits    int64
	Misses  int64
	Puts    int64
	Removes int64
}

// Stats returns a snapshot of the cache's current resident entry count,
// byte count, pending-trash count, and cumulative hit/miss/put/remove
// counters. It waits for the bootstrap scan to complete first.
func (c *Cache) Stats() Stats {
	c.lockAndWaitForKnownState()
	entries := c.idx.len()
	byteCount := c.idx.byteCount
	c.mu.Unlock()
	return Stats{
		Entries:      entries,
		ByteCount:    byteCount,
		TrashPending: c.trash.Pending(),
		Hits:         c.hits.Load(),
		Misses:       c.misses.Load(),
		Puts:         c.puts.Load(),
		Removes:      c.removes.Load(),
	}
}

// DiskURL returns the path key would be stored at, regardless of whether a
// file currently exists there. Unlike FileURL, this never touches the
// filesystem or refreshes a modification time — it is pure path
// computation for tooling and tests that want to inspect the directory
// out-of-band.
func (c *Cache) DiskURL(key string) string {
	return c.encodedPath(key)
}
