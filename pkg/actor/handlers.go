package actor

import "github.com/torcsys/torc-controller/pkg/types"

func (a *Actor) handleGetTaskState(msg message) {
	task, ok := a.tasks.Get(msg.taskName)
	if !ok {
		msg.reply <- response{taskState: types.TaskNotRunning}
		return
	}
	msg.reply <- response{taskState: task.State}
}

func (a *Actor) handleGetTaskIP(msg message) {
	task, ok := a.tasks.Get(msg.taskName)
	if !ok {
		msg.reply <- response{}
		return
	}
	msg.reply <- response{name: task.IP}
}

func (a *Actor) handleGetTaskNameByID(msg message) {
	name, ok := a.tasks.NameByIDPrefix(msg.idPrefix)
	msg.reply <- response{name: name, ok: ok}
}

// handleUpdateTaskState applies a state transition and, when the task
// just became Running, registers it with the service registry. This
// mirrors the original's side effect inside update_task_state.
func (a *Actor) handleUpdateTaskState(msg message) {
	a.tasks.SetState(msg.taskName, msg.taskState, a.clock())

	if msg.taskState == types.TaskRunning {
		if task, ok := a.tasks.Get(msg.taskName); ok && a.registry != nil {
			if err := a.registry.RegisterTask(task); err != nil {
				a.logger.Error().Err(err).Str("task_name", msg.taskName).Msg("failed to register running task")
			}
		}
	}
	msg.reply <- response{}
}

func (a *Actor) handleUpdateTaskNodeName(msg message) {
	a.tasks.SetNodeName(msg.taskName, msg.nodeName, a.clock())
	msg.reply <- response{}
}

func (a *Actor) handleUpdateTaskInfo(msg message) {
	task, ok := a.tasks.Get(msg.taskName)
	if ok {
		task.ID = msg.id
		task.IP = msg.ip
		task.SlaveID = msg.slaveID
		a.tasks.SetInfo(task, a.clock())
	}
	msg.reply <- response{}
}

func (a *Actor) handleUpdateTaskLastUpdate(msg message) {
	a.tasks.TouchLastUpdate(msg.taskName, a.clock())
	msg.reply <- response{}
}

func (a *Actor) handleStartTask(msg message) {
	a.logger.Info().Str("task_name", msg.task.Name).Msg("start task")
	a.tasks.Add(msg.task)
	msg.reply <- response{}
}

func (a *Actor) handleRestartTask(msg message) {
	a.logger.Info().Str("task_name", msg.taskName).Msg("restart task")
	now := a.clock()
	a.tasks.TouchLastUpdate(msg.taskName, now)
	a.tasks.SetState(msg.taskName, types.TaskRestart, now)
	msg.reply <- response{}
}

func (a *Actor) handleGetIsRestartableTask(msg message) {
	task, ok := a.tasks.Get(msg.taskName)
	if !ok {
		msg.reply <- response{ok: false}
		return
	}
	restartable := task.IsSystemService && task.Controller == a.myName && !task.IsJob
	msg.reply <- response{ok: restartable}
}

func (a *Actor) handleRemoveTask(msg message) {
	a.logger.Info().Str("task_name", msg.taskName).Msg("remove task")
	a.tasks.Remove(msg.taskName)
	msg.reply <- response{}
}

func (a *Actor) handleGetTasksWithState(msg message, state types.TaskState) {
	msg.reply <- response{tasks: a.tasks.WithState(state)}
}

func (a *Actor) handleAddNode(msg message) {
	a.nodes.Add(msg.node)
	msg.reply <- response{}
}

func (a *Actor) handleUpdateNode(msg message) {
	node, ok := a.nodes.Get(msg.nodeName)
	if ok {
		node.NodeType = msg.nodeType
		node.NodeFunction = msg.nodeFunction
		node.SlaveID = msg.slaveID
		node.Active = true
		a.nodes.Update(node, a.clock())
	}
	msg.reply <- response{}
}

// handleGetNode never aborts on an unknown node name: it replies with a
// zero-value node and ok=false, same as every other not-found case.
func (a *Actor) handleGetNode(msg message) {
	node, ok := a.nodes.Get(msg.nodeName)
	msg.reply <- response{node: node, ok: ok}
}
