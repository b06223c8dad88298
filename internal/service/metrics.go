package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the routing service's prometheus collectors. A nil registerer
// creates them unregistered, which is what tests use.
type Metrics struct {
	queries        *prometheus.CounterVec
	queryDuration  *prometheus.HistogramVec
	reloads        *prometheus.CounterVec
	reloadDuration prometheus.Histogram
	snapshotNodes  prometheus.Gauge
	snapshotEdges  prometheus.Gauge
	tableEntries   prometheus.Gauge
	version        prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		// result is found, absent or error; kind is node or group
		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_route_queries_total",
			Help: "Traverse queries by destination kind and result",
		}, []string{"kind", "result"}),

		queryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "campus_route_query_duration_seconds",
			Help:    "Traverse query latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 14), // 10us to ~80ms
		}, []string{"kind", "provider"}),

		reloads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_snapshot_reloads_total",
			Help: "Snapshot reload attempts by result",
		}, []string{"result"}),

		reloadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "campus_snapshot_reload_duration_seconds",
			Help:    "Time to load, build and publish a snapshot",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 16), // 1ms to ~30s
		}),

		snapshotNodes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "campus_snapshot_nodes",
			Help: "Nodes in the published snapshot",
		}),
		snapshotEdges: factory.NewGauge(prometheus.GaugeOpts{
			Name: "campus_snapshot_edges",
			Help: "Undirected edges in the published snapshot",
		}),
		tableEntries: factory.NewGauge(prometheus.GaugeOpts{
			Name: "campus_route_table_entries",
			Help: "Populated route table entries, 0 when routing live",
		}),
		version: factory.NewGauge(prometheus.GaugeOpts{
			Name: "campus_snapshot_version",
			Help: "Version of the published snapshot",
		}),
	}
}
