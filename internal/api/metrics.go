// metrics.go - Prometheus metrics exposed on /metrics
package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/campus-floormap/backend/internal/models"
)

// Metrics collects the service counters and gauges.
type Metrics struct {
	RefreshesStarted    prometheus.Counter
	RefreshesFailed     prometheus.Counter
	SnapshotAllocations prometheus.Gauge
	AllocationQueries   prometheus.Counter
	CSVExports          prometheus.Counter
	WSClients           prometheus.Gauge
}

// NewMetrics registers the service metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RefreshesStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "floormap_refreshes_started_total",
			Help: "Number of snapshot refreshes started.",
		}),
		RefreshesFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "floormap_refreshes_failed_total",
			Help: "Number of snapshot refreshes that ended in error.",
		}),
		SnapshotAllocations: factory.NewGauge(prometheus.GaugeOpts{
			Name: "floormap_snapshot_allocations",
			Help: "Allocation rows in the currently served snapshot.",
		}),
		AllocationQueries: factory.NewCounter(prometheus.CounterOpts{
			Name: "floormap_allocation_queries_total",
			Help: "Allocation query requests served.",
		}),
		CSVExports: factory.NewCounter(prometheus.CounterOpts{
			Name: "floormap_csv_exports_total",
			Help: "CSV exports served.",
		}),
		WSClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "floormap_websocket_clients",
			Help: "Connected WebSocket clients.",
		}),
	}
}

// Observe updates the snapshot gauges on a status change.
func (m *Metrics) Observe(status models.SnapshotStatus, allocations int) {
	if m == nil {
		return
	}
	switch status {
	case models.SnapshotStatusReady:
		m.SnapshotAllocations.Set(float64(allocations))
	case models.SnapshotStatusError:
		m.RefreshesFailed.Inc()
	}
}
