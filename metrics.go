// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StatsSource is anything that can report arena statistics, such as a *FixedArena.
type StatsSource interface {
	Stats() Stats
}

// Collector exports the statistics of an arena as Prometheus metrics.
// Values are read at scrape time, the allocation path is never instrumented.
type Collector struct {
	src StatsSource

	used        *prometheus.Desc
	capacity    *prometheus.Desc
	peak        *prometheus.Desc
	allocations *prometheus.Desc
	failures    *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a collector for src. Every metric carries an "arena" label set to name.
func NewCollector(name string, src StatsSource) *Collector {
	labels := prometheus.Labels{"arena": name}
	return &Collector{
		src:         src,
		used:        prometheus.NewDesc("arena_used_bytes", "Bytes committed from the arena buffer, alignment padding included.", nil, labels),
		capacity:    prometheus.NewDesc("arena_capacity_bytes", "Bytes reserved for the arena buffer.", nil, labels),
		peak:        prometheus.NewDesc("arena_peak_bytes", "Highest number of bytes committed since the arena was created.", nil, labels),
		allocations: prometheus.NewDesc("arena_allocations_total", "Total number of successful non-empty allocations.", nil, labels),
		failures:    prometheus.NewDesc("arena_allocation_failures_total", "Total number of allocations rejected because the arena was exhausted.", nil, labels),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.used
	ch <- c.capacity
	ch <- c.peak
	ch <- c.allocations
	ch <- c.failures
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats()
	ch <- prometheus.MustNewConstMetric(c.used, prometheus.GaugeValue, float64(s.Used))
	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(s.Capacity))
	ch <- prometheus.MustNewConstMetric(c.peak, prometheus.GaugeValue, float64(s.Peak))
	ch <- prometheus.MustNewConstMetric(c.allocations, prometheus.CounterValue, float64(s.Allocations))
	ch <- prometheus.MustNewConstMetric(c.failures, prometheus.CounterValue, float64(s.Failures))
}
