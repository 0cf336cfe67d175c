package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ChainEventsTotal counts applied indexer record events by table.
var ChainEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "puzzlewager_chain_events_total",
	Help: "Record change events applied to the snapshot store, by table.",
}, []string{"table"})

// ProjectionsTotal counts game projections by result.
var ProjectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "puzzlewager_projections_total",
	Help: "Game projections computed from the chain snapshot.",
}, []string{"result"})

// GuessesTotal counts puzzle guess submissions by validity.
var GuessesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "puzzlewager_guesses_total",
	Help: "Puzzle guesses submitted, by dictionary validity.",
}, []string{"valid"})

// AttestationsTotal counts signed score attestations.
var AttestationsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "puzzlewager_attestations_total",
	Help: "Operator-signed score attestations issued.",
})

// SessionLockWaits observes time spent waiting on per-session locks.
var SessionLockWaits = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "puzzlewager_session_lock_wait_seconds",
	Help:    "Time spent acquiring per-session Redis locks.",
	Buckets: prometheus.DefBuckets,
})
