package diskcache

import (
	"fmt"
	"testing"
)

func BenchmarkSet(b *testing.B) {
	opt := DefaultOptions("bench", "diskcache")
	opt.Root = b.TempDir()
	c := New(opt)
	payload := make([]byte, 1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(fmt.Sprintf("k%d", i%1000), payload)
	}
}

func BenchmarkGetHit(b *testing.B) {
	opt := DefaultOptions("bench", "diskcache")
	opt.Root = b.TempDir()
	c := New(opt)
	payload := make([]byte, 1024)
	for i := 0; i < 1000; i++ {
		c.Set(fmt.Sprintf("k%d", i), payload)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(fmt.Sprintf("k%d", i%1000))
	}
}

func BenchmarkGetMiss(b *testing.B) {
	opt := DefaultOptions("bench", "diskcache")
	opt.Root = b.TempDir()
	c := New(opt)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("absent")
	}
}

func BenchmarkSetParallel(b *testing.B) {
	opt := DefaultOptions("bench", "diskcache")
	opt.Root = b.TempDir()
	c := New(opt)
	payload := make([]byte, 1024)

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			c.Set(fmt.Sprintf("k%d", i%1000), payload)
			i++
		}
	})
}
