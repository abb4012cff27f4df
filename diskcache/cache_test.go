package diskcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, configure func(*Options)) *Cache {
	t.Helper()
	opt := DefaultOptions("test", "diskcache")
	opt.Root = t.TempDir()
	if configure != nil {
		configure(&opt)
	}
	return New(opt)
}

func TestSetGetRoundTrip(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, nil)

	_, err := c.Set("a", []byte{0x01, 0x02, 0x03})
	require.NoError(t, err)

	got, err := c.Get("a")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, got)
	assert.GreaterOrEqual(t, c.Stats().ByteCount, int64(3))
}

func TestGetAbsentReturnsNil(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, nil)

	got, err := c.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestContains(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, nil)

	assert.False(t, c.Contains("k"))
	c.Set("k", []byte("v"))
	assert.True(t, c.Contains("k"))
}

func TestRemove(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, nil)

	c.Set("k", []byte("v"))
	assert.True(t, c.Remove("k"))

	got, err := c.Get("k")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, c.Contains("k"))

	// Double-remove returns false, no metadata change.
	assert.False(t, c.Remove("k"))
}

func TestSetRefusesOversizedPayload(t *testing.T) {
	t.Parallel()
	limit := int64(4)
	c := newTestCache(t, func(o *Options) { o.ByteLimit = &limit })

	url, err := c.Set("big", []byte("way too large"))
	require.NoError(t, err)
	assert.Empty(t, url)
	assert.False(t, c.Contains("big"))
	assert.Zero(t, c.Stats().ByteCount)
}

func TestByteCountInvariant(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, nil)

	c.Set("a", []byte("12345"))
	c.Set("b", []byte("6789"))
	c.Set("a", []byte("xyz")) // replace, shrinks size

	assert.Equal(t, int64(len("xyz")+len("6789")), c.Stats().ByteCount)
}

func TestStatsCountersAccumulate(t *testing.T) {
	t.Parallel()
	c := newTestCache(t, nil)

	c.Set("a", []byte("v"))
	c.Get("a")      // hit
	c.Get("absent") // miss
	c.Remove("a")

	stats := c.Stats()
	assert.EqualValues(t, 1, stats.Puts)
	assert.EqualValues(t, 1, stats.Hits)
	assert.EqualValues(t, 1, stats.Misses)
	assert.EqualValues(t, 1, stats.Removes)
}

func TestTTLCacheHidesExpiredWithoutDeleting(t *testing.T) {
	t.Parallel()
	age := 30 * time.Millisecond
	c := newTestCache(t, func(o *Options) {
		o.AgeLimit = &age
		o.TTLCache = true
	})

	c.Set("k", []byte("v"))
	time.Sleep(80 * time.Millisecond)

	got, err := c.Get("k")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.True(t, c.Contains("k"), "expected file to still exist on disk after expiry")

	seen := false
	c.Enumerate(func(key string, _ Entry) bool {
		if key == "k" {
			seen = true
		}
		return false
	})
	assert.False(t, seen, "expected enumerate to skip the expired entry")
}
