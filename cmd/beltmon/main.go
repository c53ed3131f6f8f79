// Command beltmon serves a Prometheus /metrics endpoint over the belt,
// dock, and session counters mirrored in shared memory, plus this
// process's own view of dockyard.Metrics (spec section 9: observability
// is explicitly out of scope for the simulation's core invariants, but the
// ambient logging/metrics stack still applies to every role process).
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	dockyard "github.com/ehrlich-b/dockyard"
	"github.com/ehrlich-b/dockyard/internal/belt"
	"github.com/ehrlich-b/dockyard/internal/config"
	"github.com/ehrlich-b/dockyard/internal/constants"
	"github.com/ehrlich-b/dockyard/internal/logging"
	"github.com/ehrlich-b/dockyard/internal/sysv"
	"github.com/ehrlich-b/dockyard/internal/uapi"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init("beltmon", &logging.Config{Level: cfg.Logging.Level, ToConsole: cfg.Logging.ToConsole, ToFile: cfg.Logging.ToFile, Role: "beltmon"})

	facade, err := sysv.New(sysv.Config{ShmKey: constants.SharedMemKey, SemKey: constants.SemaphoreKey, MsgKey: constants.MsgQueueKey})
	if err != nil {
		return err
	}
	state, err := facade.AttachShared()
	if err != nil {
		return err
	}
	if err := facade.AttachSemaphores(); err != nil {
		return err
	}

	b := belt.New(state, facade, nil)
	metrics := &dockyard.Metrics{}

	reg := prometheus.NewRegistry()
	reg.MustRegister(dockyard.NewCollector(metrics))
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "dockyard_belt_count",
		Help: "Packages currently resting on the belt.",
	}, func() float64 { return float64(b.Stats().Count) }))
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "dockyard_belt_workers",
		Help: "Live worker processes registered against the belt.",
	}, func() float64 { return float64(b.Stats().Workers) }))
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "dockyard_dock_occupied",
		Help: "1 if a truck currently occupies the single dock.",
	}, func() float64 {
		if state.DockTruck.IsPresent != 0 {
			return 1
		}
		return 0
	}))

	go pollIntoMetrics(state, metrics)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	addr := os.Getenv("DOCKYARD_BELTMON_ADDR")
	if addr == "" {
		addr = ":9109"
	}
	logging.Default().Info("belt monitor listening", "addr", addr)
	return http.ListenAndServe(addr, mux)
}

// pollIntoMetrics periodically mirrors shared-memory counters into the
// process-local Metrics atomics Collector reads, since SharedState itself
// isn't a prometheus.Collector-compatible type.
func pollIntoMetrics(state *uapi.SharedState, metrics *dockyard.Metrics) {
	for {
		metrics.PackagesDead.Store(state.DeadLetterCount)
		metrics.TrucksCompleted.Store(state.TrucksCompleted)
		time.Sleep(time.Second)
	}
}
