/*
Package metrics provides Prometheus metrics collection and exposition for
torc-controller.

All metrics are registered at package init against the default Prometheus
registry and exposed via Handler(), which callers mount on their own
/metrics route.

# Metrics Catalog

Table gauges, refreshed by the state actor after every mutating message:

	torc_tasks_total{state}        - tasks in the task table by state
	torc_nodes_total{active}       - nodes in the node table by active status ("true"/"false")

Actor instrumentation:

	torc_actor_mailbox_depth                     - messages currently queued
	torc_actor_message_duration_seconds{message} - handling time per message kind

Collaborator instrumentation (routing, overlay, registry, ipmi, executor):

	torc_collaborator_call_duration_seconds{collaborator,operation}
	torc_collaborator_call_failures_total{collaborator,operation}

Sync and clean loop instrumentation:

	torc_sync_cycle_duration_seconds
	torc_clean_cycle_duration_seconds
	torc_tasks_expired_total      - foreign tasks removed for exceeding the staleness timeout
	torc_tasks_promoted_total     - tasks moved from Restart back to Requested
	torc_nodes_inactivated_total  - nodes marked inactive for exceeding the liveness timeout

# Timer Helper

	timer := metrics.NewTimer()
	// ... perform operation ...
	timer.ObserveDuration(metrics.SyncCycleDuration)

ObserveDurationVec is the equivalent for a HistogramVec, taking the label
values in the order the vec was declared with.

# Health Endpoints

RegisterComponent feeds a process-wide health view served by
HealthHandler (/health), ReadyHandler (/ready, gated on the "actor" and
"registry" components), and LivenessHandler (/live, always 200 while the
process is up).
*/
package metrics
