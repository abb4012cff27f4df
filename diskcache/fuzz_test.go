package diskcache

import (
	"bytes"
	"testing"
)

func FuzzSetGetRoundTrip(f *testing.F) {
	f.Add("plain", []byte("hello"))
	f.Add("with spaces and /slashes\\", []byte{})
	f.Add("unicode-日本語", []byte{0x00, 0xff, 0x10})
	f.Add("", []byte("value for empty key"))

	f.Fuzz(func(t *testing.T, key string, value []byte) {
		c := newTestCache(t, nil)

		if _, err := c.Set(key, value); err != nil {
			t.Fatalf("Set error: %v", err)
		}
		got, err := c.Get(key)
		if err != nil {
			t.Fatalf("Get error: %v", err)
		}
		if !bytes.Equal(got, value) {
			t.Fatalf("round trip mismatch: got %v, want %v", got, value)
		}
		if !c.Remove(key) {
			t.Fatalf("expected Remove to report success after Set")
		}
		if c.Contains(key) {
			t.Fatalf("expected key absent after Remove")
		}
	})
}
