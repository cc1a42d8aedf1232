// Package metrics exposes Prometheus instrumentation for the state actor,
// the task and node tables, the collaborator clients, and the sync/clean
// loops.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TasksByState tracks table size, refreshed by the actor after every
	// mutating message.
	TasksByState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "torc_tasks_total",
			Help: "Number of tasks in the task table by state",
		},
		[]string{"state"},
	)

	NodesByActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "torc_nodes_total",
			Help: "Number of nodes in the node table by active status",
		},
		[]string{"active"},
	)

	ActorMailboxDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "torc_actor_mailbox_depth",
			Help: "Number of messages currently queued for the state actor",
		},
	)

	ActorMessageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "torc_actor_message_duration_seconds",
			Help:    "Time the actor spends handling one message, by message type",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"message"},
	)

	CollaboratorCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "torc_collaborator_call_duration_seconds",
			Help:    "Time spent in a collaborator HTTP call, by collaborator and operation",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"collaborator", "operation"},
	)

	CollaboratorCallFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "torc_collaborator_call_failures_total",
			Help: "Collaborator calls that returned an error, by collaborator and operation",
		},
		[]string{"collaborator", "operation"},
	)

	SyncCycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "torc_sync_cycle_duration_seconds",
			Help:    "Time taken for one sync-loop tick",
			Buckets: prometheus.DefBuckets,
		},
	)

	CleanCycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "torc_clean_cycle_duration_seconds",
			Help:    "Time taken for one clean-loop tick",
			Buckets: prometheus.DefBuckets,
		},
	)

	TasksExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "torc_tasks_expired_total",
			Help: "Foreign tasks removed by the clean loop for exceeding the staleness timeout",
		},
	)

	TasksPromotedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "torc_tasks_promoted_total",
			Help: "Tasks moved from Restart back to Requested by the clean loop",
		},
	)

	NodesInactivatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "torc_nodes_inactivated_total",
			Help: "Nodes marked inactive by the clean loop for exceeding the liveness timeout",
		},
	)
)

func init() {
	prometheus.MustRegister(
		TasksByState,
		NodesByActive,
		ActorMailboxDepth,
		ActorMessageDuration,
		CollaboratorCallDuration,
		CollaboratorCallFailures,
		SyncCycleDuration,
		CleanCycleDuration,
		TasksExpiredTotal,
		TasksPromotedTotal,
		NodesInactivatedTotal,
	)
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer measures elapsed wall-clock time for a histogram observation.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration records the elapsed time on histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the elapsed time on a labeled histogram vec.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}
