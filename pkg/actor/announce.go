package actor

import (
	"context"

	"github.com/torcsys/torc-controller/pkg/types"
)

// Announce handles a peer's periodic broadcast of a task it owns.
//
// If this controller already knows the task by ID, the announcement is
// treated as a heartbeat: only last_update is touched. This is an exact
// ID match, not a prefix match — a heartbeat must name the exact task it
// is refreshing, even though TaskNameByIDPrefix (used for short-id admin
// lookups elsewhere) is intentionally more lenient.
//
// Otherwise this is a new replica: install a host route to the task's
// current node, defensively remove any stale route left over from a
// prior incarnation of the same task name, and add the task to the
// table.
func (a *Actor) Announce(ctx context.Context, task types.Task) {
	if a.send(ctx, message{kind: kindHasTaskID, id: task.ID}).ok {
		a.UpdateTaskLastUpdate(ctx, task.Name)
		return
	}

	if a.routing != nil {
		if node, ok := a.Node(ctx, task.NodeName); ok {
			if err := a.routing.AddRoute(ctx, task.IP, node.ExternalIP); err != nil {
				a.logger.Error().Err(err).Str("task_name", task.Name).Msg("failed to add route for announced task")
			}
		}

		if staleIP := a.TaskIP(ctx, task.Name); staleIP != "" {
			if err := a.routing.DeleteRoute(ctx, staleIP); err != nil {
				a.logger.Error().Err(err).Str("task_name", task.Name).Msg("failed to delete stale route before replacing task")
			}
		}
	}

	a.send(ctx, message{kind: kindStartTask, task: task})
}
