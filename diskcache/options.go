package diskcache

import (
	"log/slog"
	"os"
	"time"

	"github.com/coldstore/diskcache/diskcache/codec"
	"github.com/coldstore/diskcache/internal/opqueue"
	"github.com/coldstore/diskcache/metrics"
)

const (
	// DefaultByteLimit is 50 MiB, matching the documented default budget.
	DefaultByteLimit int64 = 50 * 1024 * 1024
	// DefaultAgeLimit is 30 days.
	DefaultAgeLimit = 30 * 24 * time.Hour
)

// Clock provides the current time; useful for deterministic tests of
// TTL/age-limit behavior without sleeping in wall-clock time.
type Clock interface{ Now() time.Time }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// LifecycleCallbacks are the six optional hooks a Cache can invoke around a
// mutation. Every callback runs with the cache's mutex released; a nil
// field is simply not invoked.
type LifecycleCallbacks struct {
	WillAdd       func(key string)
	DidAdd        func(key string)
	WillRemove    func(key string)
	DidRemove     func(key string)
	WillRemoveAll func()
	DidRemoveAll  func()
}

// Options configures a Cache. Zero values are safe; DefaultOptions()
// documents the sane defaults New applies when a field is left unset:
//   - nil ByteLimit        => DefaultByteLimit (50 MiB); a pointer to 0 means unlimited
//   - nil AgeLimit         => DefaultAgeLimit (30 days); a pointer to 0 means no TTL
//   - nil KeyEncoder/Decoder, Serializer/Deserializer => codec.Default*
//   - nil Queue            => an internal bounded priority queue
//   - nil Metrics          => metrics.NoopMetrics
//   - nil Clock            => wall-clock time.Now
//   - nil Logger           => slog.Default()
type Options struct {
	// Name and Prefix identify the instance; the backing directory is
	// <Root>/<Prefix>.<Name>, or <Root>/<Name> when Prefix is empty. Name
	// is required; constructing without one
	// is a programmer error (New panics).
	Name   string
	Prefix string
	// Root is the parent directory the cache directory is created under.
	// Defaults to os.TempDir() if empty.
	Root string

	// ByteLimit bounds total resident bytes; 0 means unlimited. Nil (the
	// zero value) requests the documented default of 50 MiB — pass a
	// pointer to 0 explicitly for "unlimited".
	ByteLimit *int64
	// AgeLimit bounds per-entry age; 0 means no TTL. Nil (the zero value)
	// requests the documented default of 30 days — pass a pointer to 0
	// explicitly for "no TTL".
	AgeLimit *time.Duration
	// TTLCache switches on TTL-cache mode: reads honor AgeLimit (expired
	// entries are invisible, not deleted) and writes do not refresh the
	// modification date on read.
	TTLCache bool

	// WritingProtection is forwarded, masked against the filesystem's
	// permission bits, to every file write. Zero means "no extra
	// protection bits requested" (mode 0644 is always applied).
	WritingProtection os.FileMode

	KeyEncoder   codec.KeyEncoder
	KeyDecoder   codec.KeyDecoder
	Serializer   codec.Serializer
	Deserializer codec.Deserializer

	Callbacks LifecycleCallbacks

	// Queue is the injected priority operation queue asynchronous methods
	// schedule work on. Defaults to an internal opqueue.Queue.
	Queue OperationQueue
	// Trash is the injected trash manager; inject the same one into several
	// caches to share it. Defaults to a new manager rooted at os.TempDir()
	// that belongs to this Cache alone.
	Trash TrashMover

	Metrics Metrics
	Clock   Clock
	Logger  *slog.Logger
}

// Metrics is the subset of metrics.Metrics a Cache reports through; kept as
// a local alias so callers of this package don't need to also import
// github.com/coldstore/diskcache/metrics just to write `var _ diskcache.Metrics`.
type Metrics = metrics.Metrics

// OperationQueue is the contract required from an injected priority
// operation queue: fire-and-forget scheduling plus identifier-based
// coalescing of not-yet-running submissions. internal/opqueue.Queue is the
// default implementation.
type OperationQueue interface {
	Schedule(op func(), priority opqueue.Priority)
	ScheduleCoalesced(op opqueue.Operation, priority opqueue.Priority, identifier string, data any, merge opqueue.MergeFunc, completion func())
}

// TrashMover is the contract required from an injected trash manager.
// internal/trash.Manager is the default implementation.
type TrashMover interface {
	MoveToTrash(path string) (bool, error)
	Empty()
	Pending() int
}

// DefaultOptions returns an Options with Name/Prefix set and every other
// field left at its documented default.
func DefaultOptions(name, prefix string) Options {
	return Options{Name: name, Prefix: prefix}
}

func (o *Options) applyDefaults() {
	if o.KeyEncoder == nil {
		o.KeyEncoder = codec.DefaultKeyEncoder
	}
	if o.KeyDecoder == nil {
		o.KeyDecoder = codec.DefaultKeyDecoder
	}
	if o.Serializer == nil {
		o.Serializer = codec.DefaultSerializer
	}
	if o.Deserializer == nil {
		o.Deserializer = codec.DefaultDeserializer
	}
	if o.Metrics == nil {
		o.Metrics = metrics.NoopMetrics{}
	}
	if o.Clock == nil {
		o.Clock = systemClock{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.ByteLimit == nil {
		v := DefaultByteLimit
		o.ByteLimit = &v
	}
	if o.AgeLimit == nil {
		v := DefaultAgeLimit
		o.AgeLimit = &v
	}
}
