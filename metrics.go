package dockyard

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a process-local, lock-free counter set exposed to Prometheus
// via Collector. cmd/beltmon fills PackagesDead and TrucksCompleted from
// shared memory; no role binary updates the other counters.
type Metrics struct {
	PackagesCreated  atomic.Uint64
	PackagesLoaded   atomic.Uint64
	PackagesDead     atomic.Uint64
	ExpressDeliveries atomic.Uint64
	TrucksCompleted  atomic.Uint64
	SessionLogins    atomic.Uint64
	SessionLogouts   atomic.Uint64
}

// Snapshot is a point-in-time copy of Metrics suitable for logging or
// JSON/terminal rendering without exposing the live atomics.
type Snapshot struct {
	PackagesCreated   uint64
	PackagesLoaded    uint64
	PackagesDead      uint64
	ExpressDeliveries uint64
	TrucksCompleted   uint64
	SessionLogins     uint64
	SessionLogouts    uint64
}

// Snapshot reads every counter once, non-atomically-consistent with each
// other but each individually atomic - adequate for dashboards, not for
// invariant checks.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		PackagesCreated:   m.PackagesCreated.Load(),
		PackagesLoaded:    m.PackagesLoaded.Load(),
		PackagesDead:      m.PackagesDead.Load(),
		ExpressDeliveries: m.ExpressDeliveries.Load(),
		TrucksCompleted:   m.TrucksCompleted.Load(),
		SessionLogins:     m.SessionLogins.Load(),
		SessionLogouts:    m.SessionLogouts.Load(),
	}
}

// Collector adapts Metrics to prometheus.Collector so belt-monitor can
// serve /metrics without duplicating counters in two places.
type Collector struct {
	m *Metrics

	packagesCreated  *prometheus.Desc
	packagesLoaded   *prometheus.Desc
	packagesDead     *prometheus.Desc
	expressDeliveries *prometheus.Desc
	trucksCompleted  *prometheus.Desc
	sessionLogins    *prometheus.Desc
	sessionLogouts   *prometheus.Desc
}

// NewCollector wraps m for registration with a prometheus.Registry.
func NewCollector(m *Metrics) *Collector {
	return &Collector{
		m:                 m,
		packagesCreated:   prometheus.NewDesc("dockyard_packages_created_total", "Packages pushed onto the belt.", nil, nil),
		packagesLoaded:    prometheus.NewDesc("dockyard_packages_loaded_total", "Packages loaded onto a truck.", nil, nil),
		packagesDead:      prometheus.NewDesc("dockyard_packages_dead_lettered_total", "Packages dead-lettered after exhausting retries.", nil, nil),
		expressDeliveries: prometheus.NewDesc("dockyard_express_deliveries_total", "VIP deliveries bypassing the belt.", nil, nil),
		trucksCompleted:   prometheus.NewDesc("dockyard_trucks_completed_total", "Trucks that completed a full departure cycle.", nil, nil),
		sessionLogins:     prometheus.NewDesc("dockyard_session_logins_total", "Successful terminal logins.", nil, nil),
		sessionLogouts:    prometheus.NewDesc("dockyard_session_logouts_total", "Terminal logouts.", nil, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.packagesCreated
	ch <- c.packagesLoaded
	ch <- c.packagesDead
	ch <- c.expressDeliveries
	ch <- c.trucksCompleted
	ch <- c.sessionLogins
	ch <- c.sessionLogouts
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.m.Snapshot()
	ch <- prometheus.MustNewConstMetric(c.packagesCreated, prometheus.CounterValue, float64(s.PackagesCreated))
	ch <- prometheus.MustNewConstMetric(c.packagesLoaded, prometheus.CounterValue, float64(s.PackagesLoaded))
	ch <- prometheus.MustNewConstMetric(c.packagesDead, prometheus.CounterValue, float64(s.PackagesDead))
	ch <- prometheus.MustNewConstMetric(c.expressDeliveries, prometheus.CounterValue, float64(s.ExpressDeliveries))
	ch <- prometheus.MustNewConstMetric(c.trucksCompleted, prometheus.CounterValue, float64(s.TrucksCompleted))
	ch <- prometheus.MustNewConstMetric(c.sessionLogins, prometheus.CounterValue, float64(s.SessionLogins))
	ch <- prometheus.MustNewConstMetric(c.sessionLogouts, prometheus.CounterValue, float64(s.SessionLogouts))
}

var _ prometheus.Collector = (*Collector)(nil)
