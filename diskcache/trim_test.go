package diskcache

import (
	"fmt"
	"testing"
	"time"

	"github.com/coldstore/diskcache/internal/opqueue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrimToSize(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, nil)

	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("k%d", i), make([]byte, 10))
	}
	c.TrimToSize(25)

	assert.LessOrEqual(t, c.Stats().ByteCount, int64(25))
}

func TestTrimToSizeByDate(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, nil)

	for i := 0; i < 100; i++ {
		c.Set(fmt.Sprintf("k%03d", i), make([]byte, 1024))
		time.Sleep(time.Millisecond) // ensure distinct modification times
	}

	c.TrimToSizeByDate(50 * 1024)

	assert.LessOrEqual(t, c.Stats().ByteCount, int64(50*1024))
	assert.False(t, c.Contains("k000"), "expected oldest entry to have been trimmed")
	assert.True(t, c.Contains("k099"), "expected newest entry to survive")
}

func TestTrimToDate(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, nil)

	c.Set("old", []byte("v"))
	time.Sleep(50 * time.Millisecond)
	cutoff := time.Now()
	time.Sleep(50 * time.Millisecond)
	c.Set("new", []byte("v"))

	c.TrimToDate(cutoff)

	assert.False(t, c.Contains("old"))
	assert.True(t, c.Contains("new"))

	c.Enumerate(func(_ string, e Entry) bool {
		assert.False(t, e.Date.Before(cutoff), "found entry dated %v before cutoff %v", e.Date, cutoff)
		return false
	})
}

func TestTrimToSizeZeroRemovesAll(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, nil)
	c.Set("a", []byte("v"))
	c.TrimToSize(0)

	assert.Zero(t, c.Stats().Entries)
}

func TestRemoveAll(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, nil)
	for i := 0; i < 10; i++ {
		c.Set(fmt.Sprintf("k%d", i), []byte("v"))
	}

	require.NoError(t, c.RemoveAll())

	stats := c.Stats()
	assert.Zero(t, stats.Entries)
	assert.Zero(t, stats.ByteCount)

	got, _ := c.Get("k0")
	assert.Nil(t, got)

	// Cache directory must still exist and be writable.
	_, err := c.Set("fresh", []byte("v"))
	require.NoError(t, err)
}

func TestTrimToSizeAsyncCoalesces(t *testing.T) {
	t.Parallel()
	q := opqueue.New(1)
	c := newTestCache(t, func(o *Options) { o.Queue = q })
	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("k%d", i), make([]byte, 10))
	}

	// Hold the queue's only worker so both submissions are queued together.
	block := make(chan struct{})
	started := make(chan struct{})
	q.Schedule(func() {
		close(started)
		<-block
	}, opqueue.High)
	<-started

	done := make(chan struct{}, 2)
	c.TrimToSizeAsync(100, func() { done <- struct{}{} })
	c.TrimToSizeAsync(200, func() { done <- struct{}{} })
	assert.Equal(t, 1, q.Len(), "expected the two trim submissions to coalesce")
	close(block)

	<-done
	<-done

	// With "larger wins", 200 is the effective target; 50 bytes of data
	// easily fits, so nothing should have been evicted.
	assert.EqualValues(t, 50, c.Stats().ByteCount)
}

func TestRecursiveAgeLimitTrimEvicts(t *testing.T) {
	t.Parallel()
	age := 20 * time.Millisecond
	c := newTestCache(t, func(o *Options) { o.AgeLimit = &age })

	c.Set("k", []byte("v"))
	waitUntil(t, func() bool { return !c.Contains("k") })
}
