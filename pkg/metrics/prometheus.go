package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetches     *prometheus.CounterVec
	dropped     *prometheus.CounterVec
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	lastPrice   *prometheus.GaugeVec
	score       *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
}

// New registers the recorder on the default Prometheus registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers on reg. Tests pass a fresh registry.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		fetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "halcon_fetches_total",
				Help: "Market data fetches by source, symbol and outcome",
			},
			[]string{"source", "symbol", "outcome"},
		),
		dropped: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "halcon_dropped_instruments_total",
				Help: "Instruments left out of a screen, by reason",
			},
			[]string{"reason"},
		),
		cacheHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "halcon_cache_hits_total",
				Help: "Memo cache hits by function",
			},
			[]string{"fn"},
		),
		cacheMisses: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "halcon_cache_misses_total",
				Help: "Memo cache misses by function",
			},
			[]string{"fn"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "halcon_last_price",
				Help: "Last observed close for a symbol",
			},
			[]string{"symbol"},
		),
		score: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "halcon_composite_score",
				Help: "Latest composite score for a symbol",
			},
			[]string{"symbol"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "halcon_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordFetch(source, symbol, outcome string) {
	r.fetches.WithLabelValues(source, symbol, outcome).Inc()
}

func (r *Recorder) RecordDropped(reason string) {
	r.dropped.WithLabelValues(reason).Inc()
}

func (r *Recorder) RecordCacheHit(fn string) {
	r.cacheHits.WithLabelValues(fn).Inc()
}

func (r *Recorder) RecordCacheMiss(fn string) {
	r.cacheMisses.WithLabelValues(fn).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

func (r *Recorder) RecordScore(symbol string, score float64) {
	r.score.WithLabelValues(symbol).Set(score)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// CacheObserver adapts the recorder to the memo cache hook.
type CacheObserver struct{ R *Recorder }

func (o CacheObserver) CacheHit(fn string)  { o.R.RecordCacheHit(fn) }
func (o CacheObserver) CacheMiss(fn string) { o.R.RecordCacheMiss(fn) }
