package cache

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the store's prometheus collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	discarded     *prometheus.CounterVec
	invalidations *prometheus.CounterVec
	lookups       *prometheus.CounterVec
	mutations     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "go_sole",
			Subsystem: "cache",
			Name:      "fetches_total",
			Help:      "Fetches that wrote a cache entry, by tag and result.",
		}, []string{"tag", "result"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "go_sole",
			Subsystem: "cache",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of fetches that wrote a cache entry.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tag"}),
		discarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "go_sole",
			Subsystem: "cache",
			Name:      "discarded_total",
			Help:      "Fetch results dropped because a newer fetch superseded them or the entry was evicted.",
		}, []string{"tag"}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "go_sole",
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Invalidation requests by tag.",
		}, []string{"tag"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "go_sole",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Queries by tag and whether fresh data was already cached.",
		}, []string{"tag", "result"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "go_sole",
			Subsystem: "cache",
			Name:      "mutations_total",
			Help:      "Mutations by result.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(m.fetches, m.fetchDuration, m.discarded, m.invalidations, m.lookups, m.mutations)
	}
	return m
}

func (m *Metrics) fetched(tag string, err error, took time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.fetches.WithLabelValues(tag, result).Inc()
	m.fetchDuration.WithLabelValues(tag).Observe(took.Seconds())
}

func (m *Metrics) discard(tag string) {
	if m == nil {
		return
	}
	m.discarded.WithLabelValues(tag).Inc()
}

func (m *Metrics) invalidated(tag string) {
	if m == nil {
		return
	}
	m.invalidations.WithLabelValues(tag).Inc()
}

func (m *Metrics) lookup(tag string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.lookups.WithLabelValues(tag, result).Inc()
}

func (m *Metrics) mutation(result string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(result).Inc()
}
