// Package prom adapts diskcache's metrics.Metrics interface to Prometheus.
package prom

import (
	"github.com/coldstore/diskcache/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Adapter implements metrics.Metrics and exports Prometheus counters/gauges.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	puts      prometheus.Counter
	removes   prometheus.Counter
	evicts    *prometheus.CounterVec
	byteCount prometheus.Gauge
	entries   prometheus.Gauge
	trash     prometheus.Gauge
}

// New constructs a Prometheus metrics adapter.
//   - reg:         registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:     Prometheus namespace and subsystem
//   - constLabels: static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "hits_total",
			Help:        "Cache reads that found a live entry",
			ConstLabels: constLabels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "misses_total",
			Help:        "Cache reads that found no live entry",
			ConstLabels: constLabels,
		}),
		puts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "puts_total",
			Help:        "Successful writes",
			ConstLabels: constLabels,
		}),
		removes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "removes_total",
			Help:        "Successful removes, including those made by trims",
			ConstLabels: constLabels,
		}),
		evicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "evictions_total",
				Help:        "Entries evicted by trim reason",
				ConstLabels: constLabels,
			},
			[]string{"reason"},
		),
		byteCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "byte_count",
			Help:        "Sum of file sizes in bytes of resident entries",
			ConstLabels: constLabels,
		}),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "entry_count",
			Help:        "Number of resident entries",
			ConstLabels: constLabels,
		}),
		trash: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "trash_pending",
			Help:        "Items staged in trash awaiting deletion",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.hits, a.misses, a.puts, a.removes, a.evicts, a.byteCount, a.entries, a.trash)
	return a
}

func (a *Adapter) Hit()    { a.hits.Inc() }
func (a *Adapter) Miss()   { a.misses.Inc() }
func (a *Adapter) Put()    { a.puts.Inc() }
func (a *Adapter) Remove() { a.removes.Inc() }

func (a *Adapter) Evict(r metrics.EvictReason) {
	a.evicts.WithLabelValues(reason(r)).Inc()
}

func (a *Adapter) Size(entries int, bytes int64) {
	a.entries.Set(float64(entries))
	a.byteCount.Set(float64(bytes))
}

func (a *Adapter) TrashPending(n int) {
	a.trash.Set(float64(n))
}

func reason(r metrics.EvictReason) string {
	switch r {
	case metrics.EvictSize:
		return "size"
	case metrics.EvictDate:
		return "date"
	case metrics.EvictSizeByDate:
		return "size_by_date"
	case metrics.EvictTTL:
		return "ttl"
	case metrics.EvictRemoveAll:
		return "remove_all"
	default:
		return "unknown"
	}
}

// Compile-time check: ensure Adapter implements metrics.Metrics.
var _ metrics.Metrics = (*Adapter)(nil)
