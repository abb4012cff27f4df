package diskcache

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/coldstore/diskcache/diskcache/codec"
	"github.com/coldstore/diskcache/internal/opqueue"
	"github.com/coldstore/diskcache/internal/singleflight"
	"github.com/coldstore/diskcache/internal/trash"
	"github.com/coldstore/diskcache/internal/util"
)

// Cache is a persistent, on-disk object cache: a keyed store durably
// associating opaque binary payloads with string keys, bounded by a
// configurable total byte budget and optional per-entry age limit, safe
// for concurrent use by many producers and consumers.
//
// Construction returns immediately; the backing directory is created and
// the on-disk index is scanned asynchronously (see lockForWriting and
// lockAndWaitForKnownState). Callers never observe a half-initialized
// cache — synchronous methods transparently block until the relevant
// bootstrap phase completes. Len is the exception: it reports the index as
// scanned so far.
type Cache struct {
	name     string
	prefix   string
	cacheURL string

	keyEncoder   codec.KeyEncoder
	keyDecoder   codec.KeyDecoder
	serializer   codec.Serializer
	deserializer codec.Deserializer

	queue OperationQueue
	trash TrashMover

	metrics Metrics
	clock   Clock
	logger  *slog.Logger

	writingProtection os.FileMode

	mu                 sync.Mutex
	diskWritableCond   *sync.Cond
	diskWritable       bool
	diskStateKnownCond *sync.Cond
	diskStateKnown     bool

	idx index

	byteLimit int64
	ageLimit  time.Duration
	ttlCache  bool

	callbacks LifecycleCallbacks

	// ageLimitGeneration invalidates in-flight recursive TTL re-arm timers
	// whenever AgeLimit is reconfigured, so repeated reconfiguration never
	// leaves more than one sweep running.
	ageLimitGeneration uint64

	// sf deduplicates concurrent disk reads for the same key.
	sf singleflight.Group[string, []byte]

	// Cache-line-padded lifetime counters, touched from every Get/Set/Remove
	// call on potentially many goroutines at once; padding keeps them from
	// false-sharing a line with each other or with mu.
	hits    util.PaddedAtomicInt64
	misses  util.PaddedAtomicInt64
	puts    util.PaddedAtomicInt64
	removes util.PaddedAtomicInt64

	closed bool
}

// New constructs a Cache per opt and kicks off asynchronous bootstrap.
// opt.Name is required; New panics if it is empty, since a default-constructed
// instance without a name is a programmer error.
func New(opt Options) *Cache {
	if opt.Name == "" {
		panic("diskcache: Options.Name is required")
	}
	opt.applyDefaults()

	root := opt.Root
	if root == "" {
		root = os.TempDir()
	}
	dirName := opt.Name
	if opt.Prefix != "" {
		dirName = opt.Prefix + "." + opt.Name
	}

	c := &Cache{
		name:              opt.Name,
		prefix:            opt.Prefix,
		cacheURL:          filepath.Join(root, dirName),
		keyEncoder:        opt.KeyEncoder,
		keyDecoder:        opt.KeyDecoder,
		serializer:        opt.Serializer,
		deserializer:      opt.Deserializer,
		metrics:           opt.Metrics,
		clock:             opt.Clock,
		logger:            opt.Logger,
		writingProtection: opt.WritingProtection,
		idx:               newIndex(),
		byteLimit:         *opt.ByteLimit,
		ageLimit:          *opt.AgeLimit,
		ttlCache:          opt.TTLCache,
		callbacks:         opt.Callbacks,
	}
	c.diskWritableCond = sync.NewCond(&c.mu)
	c.diskStateKnownCond = sync.NewCond(&c.mu)

	if opt.Queue != nil {
		c.queue = opt.Queue
	} else {
		c.queue = opqueue.New(0)
	}
	if opt.Trash != nil {
		c.trash = opt.Trash
	} else {
		c.trash = trash.New(os.TempDir(), c.logger)
	}

	c.startBootstrap()
	if c.ageLimit > 0 {
		c.armRecursiveAgeLimitTrim(c.ageLimitGeneration)
	}
	return c
}

// CacheURL returns the immutable absolute path to the cache's backing
// directory.
func (c *Cache) CacheURL() string { return c.cacheURL }

// lock acquires the mutex with no waiting beyond the mutex itself.
func (c *Cache) lock() { c.mu.Lock() }

// unlock releases the mutex acquired by lock, lockForWriting, or
// lockAndWaitForKnownState.
func (c *Cache) unlock() { c.mu.Unlock() }

// lockForWriting acquires the mutex, then waits for diskWritable if the
// cache directory has not yet been created (or its creation has not yet
// been attempted). Any code that will touch files or mutate metadata must
// go through this, not lock.
func (c *Cache) lockForWriting() {
	c.mu.Lock()
	for !c.diskWritable {
		c.diskWritableCond.Wait()
	}
}

// lockAndWaitForKnownState acquires the mutex, then waits for
// diskStateKnown: the directory scan has fully populated metadata and
// byteCount. Used whenever correctness requires the complete index
// (enumeration, TTL-gated reads).
func (c *Cache) lockAndWaitForKnownState() {
	c.mu.Lock()
	for !c.diskStateKnown {
		c.diskStateKnownCond.Wait()
	}
}

func (c *Cache) encodedPath(key string) string {
	return filepath.Join(c.cacheURL, c.keyEncoder(key))
}

func (c *Cache) now() time.Time { return c.clock.Now() }

func (c *Cache) logError(msg string, args ...any) {
	c.logger.Error(msg, args...)
}

func (c *Cache) fsError(op string, err error) error {
	return fmt.Errorf("diskcache: %s: %w", op, err)
}
