// Package metrics exposes the health window and pacer counters (§4.D, §4.F)
// as a prometheus.Collector, so an embedding process can register a single
// gmz metrics surface on its own /metrics mux.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/groovymister/gomister/internal/health"
)

// PacerStats is the subset of pacer.State the collector reads on each
// scrape. It is a small interface rather than a direct *pacer.State
// dependency so tests can supply a fake without standing up a real
// connection.
type PacerStats interface {
	DroppedFrames() uint64
	ConsecutiveTimeouts() int
	ConsecutiveDrops() int
}

// Collector implements prometheus.Collector over a health.State and a
// pacer's running counters. It holds no state of its own beyond the
// pointers it was constructed with; every Collect call re-reads them.
type Collector struct {
	window *health.State
	pacer  PacerStats

	avgSyncWait   *prometheus.Desc
	p95SyncWait   *prometheus.Desc
	vramReadyRate *prometheus.Desc
	sampleCount   *prometheus.Desc
	droppedFrames *prometheus.Desc
	consecTimeout *prometheus.Desc
	consecDrops   *prometheus.Desc
}

// New returns a Collector reading from window and pacer. Either may be nil;
// Collect skips the metrics backed by a nil source.
func New(window *health.State, pacer PacerStats) *Collector {
	const ns = "gmz"
	return &Collector{
		window: window,
		pacer:  pacer,
		avgSyncWait: prometheus.NewDesc(
			ns+"_sync_wait_avg_ms", "Mean wait_sync round-trip over the health window.", nil, nil),
		p95SyncWait: prometheus.NewDesc(
			ns+"_sync_wait_p95_ms", "95th percentile wait_sync round-trip over the health window.", nil, nil),
		vramReadyRate: prometheus.NewDesc(
			ns+"_vram_ready_rate", "Fraction of recent syncs where the FPGA reported VRAM ready.", nil, nil),
		sampleCount: prometheus.NewDesc(
			ns+"_health_samples", "Number of samples currently populating the health window.", nil, nil),
		droppedFrames: prometheus.NewDesc(
			ns+"_dropped_frames_total", "Frames credited as dropped by the pacer.", nil, nil),
		consecTimeout: prometheus.NewDesc(
			ns+"_consecutive_timeouts", "Current consecutive wait_sync timeout streak.", nil, nil),
		consecDrops: prometheus.NewDesc(
			ns+"_consecutive_drops", "Current consecutive VRAM-not-ready streak.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.avgSyncWait
	ch <- c.p95SyncWait
	ch <- c.vramReadyRate
	ch <- c.sampleCount
	ch <- c.droppedFrames
	ch <- c.consecTimeout
	ch <- c.consecDrops
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.window != nil {
		snap := c.window.Snapshot()
		ch <- prometheus.MustNewConstMetric(c.avgSyncWait, prometheus.GaugeValue, snap.AvgSyncWaitMs)
		ch <- prometheus.MustNewConstMetric(c.p95SyncWait, prometheus.GaugeValue, snap.P95SyncWaitMs)
		ch <- prometheus.MustNewConstMetric(c.vramReadyRate, prometheus.GaugeValue, snap.VramReadyRate)
		ch <- prometheus.MustNewConstMetric(c.sampleCount, prometheus.GaugeValue, float64(snap.SampleCount))
	}
	if c.pacer != nil {
		ch <- prometheus.MustNewConstMetric(c.droppedFrames, prometheus.CounterValue, float64(c.pacer.DroppedFrames()))
		ch <- prometheus.MustNewConstMetric(c.consecTimeout, prometheus.GaugeValue, float64(c.pacer.ConsecutiveTimeouts()))
		ch <- prometheus.MustNewConstMetric(c.consecDrops, prometheus.GaugeValue, float64(c.pacer.ConsecutiveDrops()))
	}
}
