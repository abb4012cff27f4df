package diskcache

import "sync"

var (
	sharedOnce     sync.Once
	sharedInstance *Cache
)

// Shared returns the process-wide default Cache instance, lazily
// initialized on first use with DefaultOptions.
func Shared() *Cache {
	sharedOnce.Do(func() {
		sharedInstance = New(DefaultOptions("Shared", "diskcache"))
	})
	return sharedInstance
}
