package mempool

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// statsCollector exposes an allocator's counters as Prometheus metrics.
// Every scrape reads Stats() fresh and emits const metrics, so there is no
// background goroutine and no sampling skew between fields of one scrape.
type statsCollector struct {
	a *Allocator

	allocationsTotal   *prometheus.Desc
	deallocationsTotal *prometheus.Desc
	fallbacksTotal     *prometheus.Desc
	activeAllocations  *prometheus.Desc
	poolsInUse         *prometheus.Desc

	poolCapacity      *prometheus.Desc
	poolInUse         *prometheus.Desc
	poolAllocsTotal   *prometheus.Desc
	poolDeallocsTotal *prometheus.Desc
}

// NewCollector builds a prometheus.Collector over a. The allocator label
// carries name so several instances can share a registry. Registration is
// the caller's business.
func NewCollector(name string, a *Allocator) prometheus.Collector {
	labels := prometheus.Labels{"allocator": name}
	poolLabels := []string{"slot_size"}

	return &statsCollector{
		a: a,
		allocationsTotal: prometheus.NewDesc(
			"mempool_allocations_total",
			"Lifetime allocations served, pools and fallback combined.",
			nil, labels),
		deallocationsTotal: prometheus.NewDesc(
			"mempool_deallocations_total",
			"Lifetime deallocations accepted.",
			nil, labels),
		fallbacksTotal: prometheus.NewDesc(
			"mempool_fallback_allocations_total",
			"Allocations served outside the pools (oversize or exhausted class).",
			nil, labels),
		activeAllocations: prometheus.NewDesc(
			"mempool_active_allocations",
			"Allocations currently outstanding.",
			nil, labels),
		poolsInUse: prometheus.NewDesc(
			"mempool_pools",
			"Size-class pools materialized so far.",
			nil, labels),
		poolCapacity: prometheus.NewDesc(
			"mempool_pool_capacity_slots",
			"Total slots in the class pool.",
			poolLabels, labels),
		poolInUse: prometheus.NewDesc(
			"mempool_pool_in_use_slots",
			"Slots of the class pool currently handed out.",
			poolLabels, labels),
		poolAllocsTotal: prometheus.NewDesc(
			"mempool_pool_allocations_total",
			"Lifetime allocations from the class pool.",
			poolLabels, labels),
		poolDeallocsTotal: prometheus.NewDesc(
			"mempool_pool_deallocations_total",
			"Lifetime returns to the class pool.",
			poolLabels, labels),
	}
}

func (c *statsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.allocationsTotal
	ch <- c.deallocationsTotal
	ch <- c.fallbacksTotal
	ch <- c.activeAllocations
	ch <- c.poolsInUse
	ch <- c.poolCapacity
	ch <- c.poolInUse
	ch <- c.poolAllocsTotal
	ch <- c.poolDeallocsTotal
}

func (c *statsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.a.Stats()

	ch <- prometheus.MustNewConstMetric(c.allocationsTotal,
		prometheus.CounterValue, float64(s.TotalAllocations))
	ch <- prometheus.MustNewConstMetric(c.deallocationsTotal,
		prometheus.CounterValue, float64(s.TotalDeallocations))
	ch <- prometheus.MustNewConstMetric(c.fallbacksTotal,
		prometheus.CounterValue, float64(s.FallbackAllocations))
	ch <- prometheus.MustNewConstMetric(c.activeAllocations,
		prometheus.GaugeValue, float64(s.ActiveAllocations))
	ch <- prometheus.MustNewConstMetric(c.poolsInUse,
		prometheus.GaugeValue, float64(s.PoolsInUse))

	for _, p := range s.Pools {
		slot := strconv.Itoa(p.SlotSize)
		ch <- prometheus.MustNewConstMetric(c.poolCapacity,
			prometheus.GaugeValue, float64(p.Capacity), slot)
		ch <- prometheus.MustNewConstMetric(c.poolInUse,
			prometheus.GaugeValue, float64(p.InUse), slot)
		ch <- prometheus.MustNewConstMetric(c.poolAllocsTotal,
			prometheus.CounterValue, float64(p.Allocations), slot)
		ch <- prometheus.MustNewConstMetric(c.poolDeallocsTotal,
			prometheus.CounterValue, float64(p.Deallocations), slot)
	}
}
