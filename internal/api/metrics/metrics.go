// Package metrics registers the service's Prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NodeProbes counts bucket probes by result (reachable/offline/skipped).
	NodeProbes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cosmeon_node_probes_total",
		Help: "Storage node bucket probes by result.",
	}, []string{"result"})

	// SimulationToggles counts failure-simulation transitions.
	SimulationToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cosmeon_simulation_toggles_total",
		Help: "Simulation state transitions by action and outcome.",
	}, []string{"action", "outcome"})

	// Reconstructions counts reconstruction attempts by terminal outcome.
	Reconstructions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cosmeon_reconstructions_total",
		Help: "File reconstruction attempts by outcome.",
	}, []string{"outcome"})

	// UnknownHealth counts statuses downgraded to Unknown because the
	// stored scheme configuration was absent or invalid.
	UnknownHealth = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cosmeon_unknown_health_total",
		Help: "File statuses reported Unknown due to incomplete scheme config.",
	})

	// Uploads counts finished uploads by outcome.
	Uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cosmeon_uploads_total",
		Help: "File uploads by outcome.",
	}, []string{"outcome"})

	// Deletes counts file deletions by outcome.
	Deletes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cosmeon_deletes_total",
		Help: "File deletions by outcome.",
	}, []string{"outcome"})

	// SnapshotBuildSeconds observes registry snapshot build latency.
	SnapshotBuildSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cosmeon_snapshot_build_seconds",
		Help:    "Latency of building a full node registry snapshot.",
		Buckets: prometheus.DefBuckets,
	})
)
