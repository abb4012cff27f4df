// Package diskcache provides a persistent, on-disk object cache: a keyed
// store that durably associates opaque binary payloads with string keys,
// bounded by a configurable total byte budget and optional per-entry age
// limit, safe for concurrent use by many producers and consumers.
//
// Design
//
//   - Concurrency: a single cache instance is a single directory guarded by
//     one mutex, with two one-shot condition-variable latches
//     (diskWritable, diskStateKnown) that let synchronous callers block
//     transparently until the asynchronous bootstrap reaches the phase
//     their operation requires, rather than returning a not-ready error.
//
//   - Storage: an in-memory metadata index (key -> {date, size}) mirrors
//     the backing directory; writes go through a temp file plus atomic
//     rename, and deletes go through a trash manager that
//     turns a slow directory-tree delete into a fast rename followed by an
//     off-path cleanup.
//
//   - Eviction: four trim policies are provided — trim by size
//     (largest-first), trim by size ordered by date (oldest-first), trim
//     by a date cutoff, and a self-re-arming recursive sweep against the
//     configured age limit. Every trim has a synchronous and an
//     asynchronous variant; asynchronous trims coalesce with same-kind
//     trims already queued.
//
//   - TTL-cache mode: when enabled, reads and enumeration treat entries
//     older than the age limit as absent without eagerly deleting them.
//
//   - Codecs: the key encoder/decoder and payload serializer/deserializer
//     are injected function values (see package codec for the defaults);
//     the core never interprets payload bytes.
//
//   - Operation pipeline: every asynchronous method schedules its
//     synchronous counterpart on an injected priority queue (see package
//     internal/opqueue for the default implementation), so a caller can
//     substitute their own scheduler.
//
// Basic usage
//
//	c := diskcache.New(diskcache.DefaultOptions("images", "com.example"))
//	c.Set("a", []byte{0x01, 0x02, 0x03})
//	if v, err := c.Get("a"); err == nil && v != nil {
//	    _ = v // use value
//	}
//	c.Remove("a")
//
// With a byte limit
//
//	limit := int64(10 << 20) // 10 MiB
//	c := diskcache.New(diskcache.Options{
//	    Name:      "thumbnails",
//	    Prefix:    "com.example",
//	    ByteLimit: &limit,
//	})
//
// With TTL-cache mode
//
//	age := time.Hour
//	c := diskcache.New(diskcache.Options{
//	    Name:     "sessions",
//	    AgeLimit: &age,
//	    TTLCache: true,
//	})
//
// Exporting metrics (example Prometheus adapter)
//
//	m := prom.New(nil, "diskcache", "images", nil) // implements metrics.Metrics
//	c := diskcache.New(diskcache.Options{
//	    Name:    "images",
//	    Metrics: m,
//	})
//
// Thread-safety
//
// All methods on Cache are safe for concurrent use. Callbacks and codecs
// always run with the mutex released.
//
// See package codec for the pluggable key/payload codec contracts.
package diskcache
