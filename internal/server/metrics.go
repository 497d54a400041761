package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics exposed on /metrics.
type Metrics struct {
	SearchesTotal    *prometheus.CounterVec
	SearchDuration   prometheus.Histogram
	StationsReturned prometheus.Counter
	RecordsDropped   prometheus.Counter
}

// NewMetrics creates and registers the Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		SearchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "appstation_searches_total",
				Help: "Total number of station searches by outcome",
			},
			[]string{"outcome"},
		),
		SearchDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "appstation_search_duration_seconds",
				Help:    "Station search duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		StationsReturned: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "appstation_stations_returned_total",
				Help: "Total number of stations returned to clients",
			},
		),
		RecordsDropped: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "appstation_records_dropped_total",
				Help: "Total number of raw records dropped while building catalogs",
			},
		),
	}
}

// RecordSearch records one search with its outcome and duration.
func (m *Metrics) RecordSearch(outcome string, seconds float64) {
	m.SearchesTotal.WithLabelValues(outcome).Inc()
	m.SearchDuration.Observe(seconds)
}
