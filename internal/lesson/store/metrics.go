package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dropped writes are invisible to the learner; counting them is the only
// signal an operator gets.
var (
	autosaveFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lingothai_snapshot_autosave_failures_total",
		Help: "Snapshot writes dropped per backend.",
	}, []string{"backend"})

	restores = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lingothai_snapshot_restores_total",
		Help: "Successful snapshot restores per source backend.",
	}, []string{"source"})

	clearFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lingothai_snapshot_clear_failures_total",
		Help: "Snapshot clears that failed per backend.",
	}, []string{"backend"})
)
