package actor

import (
	"context"

	"github.com/torcsys/torc-controller/pkg/types"
)

// Ping blocks until the actor has processed every message queued ahead
// of it, without changing any state.
func (a *Actor) Ping(ctx context.Context) {
	a.send(ctx, message{kind: kindPing})
}

// Task returns the full record for the named task. ok is false when no
// such task exists.
func (a *Actor) Task(ctx context.Context, taskName string) (types.Task, bool) {
	r := a.send(ctx, message{kind: kindGetTask, taskName: taskName})
	return r.task, r.ok
}

// TaskState returns the state of the named task, or NotRunning if the
// task doesn't exist.
func (a *Actor) TaskState(ctx context.Context, taskName string) types.TaskState {
	return a.send(ctx, message{kind: kindGetTaskState, taskName: taskName}).taskState
}

// TaskIP returns the task's IP, or "" if the task doesn't exist or has
// no IP assigned yet.
func (a *Actor) TaskIP(ctx context.Context, taskName string) string {
	return a.send(ctx, message{kind: kindGetTaskIP, taskName: taskName}).name
}

// TaskNameByIDPrefix resolves a task's short ID to its name. ok is false
// when no task's ID has the given prefix.
func (a *Actor) TaskNameByIDPrefix(ctx context.Context, idPrefix string) (string, bool) {
	r := a.send(ctx, message{kind: kindGetTaskNameByID, idPrefix: idPrefix})
	return r.name, r.ok
}

// UpdateTaskState moves a task to a new state. Transitioning to Running
// also registers the task with the service registry.
func (a *Actor) UpdateTaskState(ctx context.Context, taskName string, state types.TaskState) {
	a.send(ctx, message{kind: kindUpdateTaskState, taskName: taskName, taskState: state})
}

// UpdateTaskNodeName records which node a task has been placed on.
func (a *Actor) UpdateTaskNodeName(ctx context.Context, taskName, nodeName string) {
	a.send(ctx, message{kind: kindUpdateTaskNodeName, taskName: taskName, nodeName: nodeName})
}

// UpdateTaskInfo fills in the runtime fields an executor learns once it
// has placed a task: its ID, its IP, and the slave it landed on.
func (a *Actor) UpdateTaskInfo(ctx context.Context, taskName, id, ip, slaveID string) {
	a.send(ctx, message{kind: kindUpdateTaskInfo, taskName: taskName, id: id, ip: ip, slaveID: slaveID})
}

// UpdateTaskLastUpdate bumps a task's liveness timestamp without
// otherwise changing it. This is what a heartbeat does.
func (a *Actor) UpdateTaskLastUpdate(ctx context.Context, taskName string) {
	a.send(ctx, message{kind: kindUpdateTaskLastUpdate, taskName: taskName})
}

// StartTask registers a new task, as Requested, under this controller's
// ownership. The caller fills in every placement field; StartTask sets
// Controller, State, and LastUpdate.
func (a *Actor) StartTask(ctx context.Context, task types.Task) {
	task.Controller = a.myName
	task.State = types.TaskRequested
	task.LastUpdate = a.clock()
	a.send(ctx, message{kind: kindStartTask, task: task})
}

// RestartTask moves a task to the Restart state and bumps its
// last_update, starting the restart-delay countdown the clean loop
// watches.
func (a *Actor) RestartTask(ctx context.Context, taskName string) {
	a.send(ctx, message{kind: kindRestartTask, taskName: taskName})
}

// IsRestartableTask reports whether a task is a system service owned by
// this controller and not a one-shot job.
func (a *Actor) IsRestartableTask(ctx context.Context, taskName string) bool {
	return a.send(ctx, message{kind: kindGetIsRestartableTask, taskName: taskName}).ok
}

// RemoveTaskByName deletes a task from the table. It does not touch
// routing or the runtime; callers that need those side effects perform
// them separately.
func (a *Actor) RemoveTaskByName(ctx context.Context, taskName string) {
	a.send(ctx, message{kind: kindRemoveTask, taskName: taskName})
}

// RequestedTasks returns every task waiting to be placed.
func (a *Actor) RequestedTasks(ctx context.Context) []types.Task {
	return a.send(ctx, message{kind: kindGetRequestedTasks}).tasks
}

// RunningTasks returns every task currently Running.
func (a *Actor) RunningTasks(ctx context.Context) []types.Task {
	return a.send(ctx, message{kind: kindGetRunningTasks}).tasks
}

// RestartTasks returns every task waiting out its restart delay.
func (a *Actor) RestartTasks(ctx context.Context) []types.Task {
	return a.send(ctx, message{kind: kindGetRestartTasks}).tasks
}

// MeteredRunningTasks returns every task flagged for metering,
// regardless of its current state.
func (a *Actor) MeteredRunningTasks(ctx context.Context) []types.Task {
	return a.send(ctx, message{kind: kindMeteredTasks}).tasks
}

// NonJobRunningTasks returns every Running task that isn't a one-shot
// job, the set the admin surface would call "running services".
func (a *Actor) NonJobRunningTasks(ctx context.Context) []types.Task {
	return a.send(ctx, message{kind: kindNonJobRunningTasks}).tasks
}

// AddNode registers a node, inactive until its first heartbeat.
func (a *Actor) AddNode(ctx context.Context, node types.Node) {
	node.Active = false
	node.LastSeen = a.clock()
	a.send(ctx, message{kind: kindAddNode, node: node})
}

// IsNodeActive reports whether the named node exists and is active.
func (a *Actor) IsNodeActive(ctx context.Context, nodeName string) bool {
	return a.send(ctx, message{kind: kindGetIsNodeActive, nodeName: nodeName}).ok
}

// UpdateNode refreshes a node's type, function, and slave assignment and
// marks it active and seen.
func (a *Actor) UpdateNode(ctx context.Context, nodeName, nodeType, nodeFunction, slaveID string) {
	a.send(ctx, message{
		kind:         kindUpdateNode,
		nodeName:     nodeName,
		nodeType:     nodeType,
		nodeFunction: nodeFunction,
		slaveID:      slaveID,
	})
}

// SetNodeInactive marks a node inactive, typically because the clean
// loop found it past its liveness timeout.
func (a *Actor) SetNodeInactive(ctx context.Context, nodeName string) {
	a.send(ctx, message{kind: kindSetNodeInactive, nodeName: nodeName})
}

// Node returns the named node. ok is false when no such node exists;
// this never aborts the caller on an unknown name.
func (a *Actor) Node(ctx context.Context, nodeName string) (types.Node, bool) {
	r := a.send(ctx, message{kind: kindGetNode, nodeName: nodeName})
	return r.node, r.ok
}

// Nodes returns every known node.
func (a *Actor) Nodes(ctx context.Context) []types.Node {
	return a.send(ctx, message{kind: kindGetNodes}).nodes
}

// KillTaskByName sends a kill request for the task to the task's own IP.
// Only the task lookup is serialized through the mailbox (and waits
// behind any queued messages); the kill request itself is made outside
// the actor, so a slow kill never holds up other messages.
func (a *Actor) KillTaskByName(ctx context.Context, taskName string) error {
	r := a.send(ctx, message{kind: kindGetTask, taskName: taskName})
	if !r.ok || a.executor == nil || r.task.IP == "" {
		return nil
	}
	return a.executor.KillTask(ctx, r.task.IP, r.task.ID)
}
