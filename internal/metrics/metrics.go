// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsCreated counts approval requests accepted by the store.
	RequestsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "approvals",
		Name:      "requests_created_total",
		Help:      "Number of approval requests created.",
	})

	// DecisionsRecorded counts human decisions by outcome.
	DecisionsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "approvals",
		Name:      "decisions_total",
		Help:      "Number of human decisions recorded.",
	}, []string{"decision"})

	// SweepFound counts overdue pending requests selected by sweep cycles.
	SweepFound = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "approvals",
		Subsystem: "sweep",
		Name:      "found_total",
		Help:      "Number of overdue pending requests found by sweeps.",
	})

	// SweepExpired counts requests actually transitioned to expired.
	SweepExpired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "approvals",
		Subsystem: "sweep",
		Name:      "expired_total",
		Help:      "Number of requests transitioned to expired by sweeps.",
	})

	// SweepSkipped counts found requests skipped because a concurrent
	// decision won the transition race.
	SweepSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "approvals",
		Subsystem: "sweep",
		Name:      "skipped_total",
		Help:      "Number of found requests no longer pending at update time.",
	})

	// NotifyFailures counts expiry notifications that failed delivery.
	NotifyFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "approvals",
		Subsystem: "sweep",
		Name:      "notify_failures_total",
		Help:      "Number of expiry notifications that failed delivery.",
	})

	// SweepDuration observes the wall time of a full sweep cycle.
	SweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "approvals",
		Subsystem: "sweep",
		Name:      "cycle_duration_seconds",
		Help:      "Duration of sweep cycles.",
		Buckets:   prometheus.DefBuckets,
	})
)
