// Package metrics exposes the coordinator and shard services' operational
// counters as Prometheus collectors, following the reference cluster's
// convention of a small struct holding registered collectors passed to
// handlers rather than reached through package globals.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Coordinator bundles the counters and histograms a coordinator process
// exposes over /metrics.
type Coordinator struct {
	registry         *prometheus.Registry
	CrossCutsTotal   prometheus.Counter
	NodesVisited     prometheus.Counter
	RunDuration      *prometheus.HistogramVec
	ShardProxyErrors *prometheus.CounterVec
}

// NewCoordinator builds a Coordinator metrics bundle registered against a
// fresh registry, so multiple Coordinator instances in the same test
// binary never collide on collector names.
func NewCoordinator() *Coordinator {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Coordinator{
		registry: reg,
		CrossCutsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "dbfs_cross_cuts_total",
			Help: "Total cross-cuts accumulated across every DBFS run.",
		}),
		NodesVisited: factory.NewCounter(prometheus.CounterOpts{
			Name: "dbfs_nodes_visited_total",
			Help: "Total real nodes visited across every DBFS run.",
		}),
		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name: "dbfs_run_duration_seconds",
			Help: "DBFS run duration, labeled by whether time was spent inside or outside shard calls.",
		}, []string{"phase"}),
		ShardProxyErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shard_proxy_errors_total",
			Help: "Proxy call failures, labeled by shard id.",
		}, []string{"shard"}),
	}
}

// Handler returns the HTTP handler to mount at /metrics.
func (c *Coordinator) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Shard bundles the counters a shard service process exposes over
// /metrics.
type Shard struct {
	registry         *prometheus.Registry
	BFSRequestsTotal *prometheus.CounterVec
}

// NewShard builds a Shard metrics bundle registered against a fresh
// registry.
func NewShard() *Shard {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Shard{
		registry: reg,
		BFSRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shard_bfs_requests_total",
			Help: "BFS requests served, labeled by shard id.",
		}, []string{"shard"}),
	}
}

// Handler returns the HTTP handler to mount at /metrics.
func (s *Shard) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
