// Command diskcache-bench runs a synthetic Get/Set workload against a
// disk-backed cache (trims run only when the byte limit is exceeded) and
// exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coldstore/diskcache/diskcache"
	pmet "github.com/coldstore/diskcache/metrics/prom"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// ---- Flags ----
	var (
		root      = flag.String("root", "", "cache root directory (empty = OS temp dir)")
		byteLimit = flag.Int64("byte_limit", 256<<20, "byte budget; 0 = unlimited")
		ageLimit  = flag.Duration("age_limit", 0, "max entry age; 0 = no TTL sweep")
		ttlCache  = flag.Bool("ttl_cache", false, "hide expired entries without evicting them")

		workers  = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")
		readPct  = flag.Int("reads", 80, "read percentage [0..100]")

		keys       = flag.Int("keys", 200_000, "keyspace size")
		valueBytes = flag.Int("value_bytes", 1024, "size of each stored value")
		zipfS      = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV      = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed       = flag.Int64("seed", time.Now().UnixNano(), "random seed")
		preload    = flag.Int("preload", 0, "preload entries (0 = keys/10)")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr")
	)
	flag.Parse()

	if *pprofAddr != "" {
		go func() {
			log.Printf("pprof: serving at %s", *pprofAddr)
			log.Println(http.ListenAndServe(*pprofAddr, nil))
		}()
	}

	metrics := pmet.New(nil, "diskcache", "bench", nil)
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Printf("metrics: serving at %s", *metricsAddr)
		log.Println(http.ListenAndServe(*metricsAddr, nil))
	}()

	opt := diskcache.DefaultOptions("bench", "diskcache")
	if *root != "" {
		opt.Root = *root
	}
	opt.ByteLimit = byteLimit
	opt.AgeLimit = ageLimit
	opt.TTLCache = *ttlCache
	opt.Metrics = metrics
	c := diskcache.New(opt)

	value := make([]byte, *valueBytes)
	for i := range value {
		value[i] = byte(i)
	}

	pl := *preload
	if pl == 0 {
		pl = *keys / 10
	}
	for i := 0; i < pl; i++ {
		c.Set("k:"+strconv.Itoa(i), value)
	}

	readPctVal := *readPct
	keysMax := uint64(*keys - 1)
	seedBase := *seed
	zipfSVal := *zipfS
	zipfVVal := *zipfV
	workersN := *workers
	if workersN <= 0 {
		workersN = 1
	}

	var reads, writes, hits, misses, total uint64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(workersN)
	for w := 0; w < workersN; w++ {
		go func(id int) {
			defer wg.Done()

			localR := rand.New(rand.NewSource(seedBase + int64(id)*9973))
			localZipf := rand.NewZipf(localR, zipfSVal, zipfVVal, keysMax)

			keyByZipf := func() string {
				return "k:" + strconv.FormatUint(localZipf.Uint64(), 10)
			}

			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				atomic.AddUint64(&total, 1)
				if int(localR.Int31n(100)) < readPctVal {
					atomic.AddUint64(&reads, 1)
					got, err := c.Get(keyByZipf())
					if err != nil {
						log.Printf("get error: %v", err)
						continue
					}
					if got != nil {
						atomic.AddUint64(&hits, 1)
					} else {
						atomic.AddUint64(&misses, 1)
					}
				} else {
					atomic.AddUint64(&writes, 1)
					if _, err := c.Set(keyByZipf(), value); err != nil {
						log.Printf("set error: %v", err)
					}
				}
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	ops := atomic.LoadUint64(&total)
	readsN := atomic.LoadUint64(&reads)
	writesN := atomic.LoadUint64(&writes)
	hitsN := atomic.LoadUint64(&hits)
	missesN := atomic.LoadUint64(&misses)

	hitRate := 0.0
	if readsN > 0 {
		hitRate = float64(hitsN) / float64(readsN) * 100
	}

	stats := c.Stats()
	fmt.Printf("root=%s byte_limit=%d age_limit=%v workers=%d keys=%d dur=%v seed=%d\n",
		c.CacheURL(), *byteLimit, *ageLimit, workersN, *keys, elapsed, seedBase)
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  writes=%d\n",
		ops, float64(ops)/elapsed.Seconds(), readsN, writesN)
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%\n", hitsN, missesN, hitRate)
	fmt.Printf("entries=%d  byte_count=%d  trash_pending=%d\n",
		stats.Entries, stats.ByteCount, stats.TrashPending)
}
