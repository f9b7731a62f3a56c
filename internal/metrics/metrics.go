package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Ticks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "arena_ticks_total",
			Help: "Server loop ticks run",
		},
	)
	TickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "arena_tick_duration_seconds",
			Help:    "Time spent advancing all active sessions in one tick",
			Buckets: prometheus.DefBuckets,
		},
	)
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "arena_active_sessions",
			Help: "Sessions seen by the last tick",
		},
	)
	Actions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arena_actions_total",
			Help: "Player actions by type and outcome",
		},
		[]string{"type", "result"},
	)
	AIDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arena_ai_decisions_total",
			Help: "AI decisions by tier and outcome",
		},
		[]string{"tier", "outcome"},
	)
	Summaries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "arena_summaries_emitted_total",
			Help: "Game summaries handed to the reward pipeline",
		},
	)
	CorruptSessions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "arena_corrupt_sessions_total",
			Help: "Persisted sessions discarded because they could not be decoded",
		},
	)
)

func init() {
	prometheus.MustRegister(Ticks)
	prometheus.MustRegister(TickDuration)
	prometheus.MustRegister(ActiveSessions)
	prometheus.MustRegister(Actions)
	prometheus.MustRegister(AIDecisions)
	prometheus.MustRegister(Summaries)
	prometheus.MustRegister(CorruptSessions)
}
