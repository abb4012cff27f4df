package diskcache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// TestConcurrentAccess exercises Set/Get/Remove/Trim/Enumerate from many
// goroutines at once. Run with -race to catch data races in the index and
// bootstrap handshake.
func TestConcurrentAccess(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping concurrency stress test in short mode")
	}
	limit := int64(4096)
	c := newTestCache(t, func(o *Options) { o.ByteLimit = &limit })

	const workers = 16
	const iterations = 50

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				key := fmt.Sprintf("w%d-k%d", worker, i%7)
				switch i % 5 {
				case 0, 1:
					c.Set(key, make([]byte, 16))
				case 2:
					c.Get(key)
				case 3:
					c.Remove(key)
				case 4:
					c.Contains(key)
				}
			}
		}(w)
	}

	// Concurrently churn trims and enumeration while the workers run.
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			c.TrimToSize(2048)
			time.Sleep(time.Millisecond)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			c.Enumerate(func(string, Entry) bool { return false })
			time.Sleep(time.Millisecond)
		}
	}()

	wg.Wait()

	// The cache must still be in a coherent, usable state.
	if _, err := c.Set("final", []byte("v")); err != nil {
		t.Fatalf("cache unusable after concurrent stress: %v", err)
	}
	got, err := c.Get("final")
	if err != nil || string(got) != "v" {
		t.Fatalf("final read failed: got=%v err=%v", got, err)
	}
}

// TestConcurrentSetSameKey confirms that concurrent writes to one key leave
// exactly one entry and a byte count reflecting a single copy of the key.
func TestConcurrentSetSameKey(t *testing.T) {
	c := newTestCache(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c.Set("shared", []byte(fmt.Sprintf("value-%02d", n)))
		}(i)
	}
	wg.Wait()

	if c.Stats().Entries != 1 {
		t.Fatalf("expected exactly 1 entry, got %d", c.Stats().Entries)
	}
	if c.Stats().ByteCount != int64(len("value-00")) {
		t.Fatalf("unexpected byte count %d", c.Stats().ByteCount)
	}
}
