package diskcache

import (
	"time"

	"github.com/coldstore/diskcache/internal/opqueue"
	"github.com/coldstore/diskcache/metrics"
)

// TrimToSize evicts the largest entries first until the resident byte
// count is at most n. n <= 0 is equivalent to RemoveAll.
func (c *Cache) TrimToSize(n int64) {
	if n <= 0 {
		c.RemoveAll()
		return
	}
	for {
		c.mu.Lock()
		if c.idx.byteCount <= n {
			c.mu.Unlock()
			return
		}
		keys := c.idx.keysSortedBySizeDesc()
		c.mu.Unlock()
		if len(keys) == 0 {
			return
		}

		removedAny := false
		for _, k := range keys {
			c.mu.Lock()
			bc := c.idx.byteCount
			c.mu.Unlock()
			if bc <= n {
				return
			}
			if c.Remove(k) {
				removedAny = true
				c.metrics.Evict(metrics.EvictSize)
			}
		}
		if !removedAny {
			return
		}
	}
}

// TrimToSizeAsync schedules TrimToSize on the operation queue. Concurrent
// submissions coalesce under the reserved identifier "trim_to_size",
// keeping the larger of the two targets.
func (c *Cache) TrimToSizeAsync(n int64, completion func()) {
	c.queue.ScheduleCoalesced(func(data any) {
		c.TrimToSize(data.(int64))
	}, opqueue.Normal, "trim_to_size", n, mergeLargerInt64, completion)
}

// TrimToDate removes every entry whose date is before d, stopping at the
// first entry whose date is on or after d (entries are visited
// oldest-first). A zero d (the distant past) is equivalent to RemoveAll.
func (c *Cache) TrimToDate(d time.Time) {
	c.trimToDate(d, metrics.EvictDate)
}

func (c *Cache) trimToDate(d time.Time, reason metrics.EvictReason) {
	if d.IsZero() {
		c.RemoveAll()
		return
	}

	c.mu.Lock()
	keys := c.idx.keysSortedByDateAsc()
	c.mu.Unlock()

	for _, k := range keys {
		c.mu.Lock()
		e, ok := c.idx.get(k)
		c.mu.Unlock()
		if !ok {
			continue
		}
		if !e.Date.Before(d) {
			break
		}
		if c.Remove(k) {
			c.metrics.Evict(reason)
		}
	}
}

// TrimToDateAsync schedules TrimToDate on the operation queue. Concurrent
// submissions coalesce under the reserved identifier "trim_to_date",
// keeping the later of the two cutoff dates (the later cutoff evicts more).
func (c *Cache) TrimToDateAsync(d time.Time, completion func()) {
	c.queue.ScheduleCoalesced(func(data any) {
		c.TrimToDate(data.(time.Time))
	}, opqueue.Normal, "trim_to_date", d, mergeLaterTime, completion)
}

// TrimToSizeByDate evicts the oldest entries first until the resident byte
// count is at most n. n <= 0 is equivalent to RemoveAll.
func (c *Cache) TrimToSizeByDate(n int64) {
	if n <= 0 {
		c.RemoveAll()
		return
	}
	for {
		c.mu.Lock()
		if c.idx.byteCount <= n {
			c.mu.Unlock()
			return
		}
		keys := c.idx.keysSortedByDateAsc()
		c.mu.Unlock()
		if len(keys) == 0 {
			return
		}

		removedAny := false
		for _, k := range keys {
			c.mu.Lock()
			bc := c.idx.byteCount
			c.mu.Unlock()
			if bc <= n {
				return
			}
			if c.Remove(k) {
				removedAny = true
				c.metrics.Evict(metrics.EvictSizeByDate)
			}
		}
		if !removedAny {
			return
		}
	}
}

// TrimToSizeByDateAsync schedules TrimToSizeByDate on the operation queue.
// Concurrent submissions coalesce under the reserved identifier
// "trim_to_size_by_date", keeping the larger of the two targets.
func (c *Cache) TrimToSizeByDateAsync(n int64, completion func()) {
	c.queue.ScheduleCoalesced(func(data any) {
		c.TrimToSizeByDate(data.(int64))
	}, opqueue.Normal, "trim_to_size_by_date", n, mergeLargerInt64, completion)
}

// SetAgeLimit reconfigures the age limit and (re-)arms the recursive
// age-limit sweep. A non-positive age disables TTL sweeping entirely.
func (c *Cache) SetAgeLimit(age time.Duration) {
	c.mu.Lock()
	c.ageLimit = age
	c.ageLimitGeneration++
	generation := c.ageLimitGeneration
	c.mu.Unlock()

	if age > 0 {
		c.armRecursiveAgeLimitTrim(generation)
	}
}

// SetByteLimit reconfigures the byte limit. A non-positive limit disables
// size enforcement; a positive limit schedules an immediate high-priority
// trim down to the new limit, oldest entries first.
func (c *Cache) SetByteLimit(limit int64) {
	c.mu.Lock()
	c.byteLimit = limit
	c.mu.Unlock()

	if limit > 0 {
		c.queue.ScheduleCoalesced(func(data any) {
			c.TrimToSizeByDate(data.(int64))
		}, opqueue.High, "trim_to_size_by_date", limit, mergeLargerInt64, nil)
	}
}

// SetTTLCache reconfigures TTL-cache mode.
func (c *Cache) SetTTLCache(enabled bool) {
	c.mu.Lock()
	c.ttlCache = enabled
	c.mu.Unlock()
}

// armRecursiveAgeLimitTrim is the self-re-arming TTL sweep: it trims
// everything older than now-AgeLimit, then re-arms itself after AgeLimit
// elapses. While TTL-cache mode is on, a pass deletes nothing, so expired
// entries stay on disk (hidden from readers) until some other trim or
// remove takes them. Runs as a single long-lived goroutine per Cache, restartable via
// the generation counter whenever AgeLimit is reconfigured, so reconfiguring
// it repeatedly never stacks up multiple concurrent sweeps.
func (c *Cache) armRecursiveAgeLimitTrim(generation uint64) {
	go func() {
		for {
			c.mu.Lock()
			current := c.ageLimitGeneration == generation
			ageLimit := c.ageLimit
			ttlCache := c.ttlCache
			c.mu.Unlock()
			if !current || ageLimit <= 0 {
				return
			}

			if !ttlCache {
				c.trimToDate(c.now().Add(-ageLimit), metrics.EvictTTL)
			}

			timer := time.NewTimer(ageLimit)
			<-timer.C

			c.mu.Lock()
			current = c.ageLimitGeneration == generation
			c.mu.Unlock()
			if !current {
				return
			}
		}
	}()
}

func mergeLargerInt64(existing, incoming any) any {
	a, b := existing.(int64), incoming.(int64)
	if b > a {
		return b
	}
	return a
}

func mergeLaterTime(existing, incoming any) any {
	a, b := existing.(time.Time), incoming.(time.Time)
	if b.After(a) {
		return b
	}
	return a
}
