package actor

import "github.com/torcsys/torc-controller/pkg/types"

type kind int

const (
	kindPing kind = iota
	kindGetTask
	kindHasTaskID
	kindGetTaskState
	kindGetTaskIP
	kindGetTaskNameByID
	kindUpdateTaskState
	kindUpdateTaskNodeName
	kindUpdateTaskInfo
	kindUpdateTaskLastUpdate
	kindStartTask
	kindRestartTask
	kindGetIsRestartableTask
	kindRemoveTask
	kindGetRequestedTasks
	kindGetRunningTasks
	kindGetRestartTasks
	kindMeteredTasks
	kindNonJobRunningTasks
	kindAddNode
	kindGetIsNodeActive
	kindUpdateNode
	kindSetNodeInactive
	kindGetNode
	kindGetNodes
)

func (k kind) String() string {
	switch k {
	case kindPing:
		return "ping"
	case kindGetTask:
		return "get_task"
	case kindHasTaskID:
		return "has_task_id"
	case kindGetTaskState:
		return "get_task_state"
	case kindGetTaskIP:
		return "get_task_ip"
	case kindGetTaskNameByID:
		return "get_task_name_by_id"
	case kindUpdateTaskState:
		return "update_task_state"
	case kindUpdateTaskNodeName:
		return "update_task_node_name"
	case kindUpdateTaskInfo:
		return "update_task_info"
	case kindUpdateTaskLastUpdate:
		return "update_task_last_update"
	case kindStartTask:
		return "start_task"
	case kindRestartTask:
		return "restart_task"
	case kindGetIsRestartableTask:
		return "get_is_restartable_task"
	case kindRemoveTask:
		return "remove_task"
	case kindGetRequestedTasks:
		return "get_requested_tasks"
	case kindGetRunningTasks:
		return "get_running_tasks"
	case kindGetRestartTasks:
		return "get_restart_tasks"
	case kindMeteredTasks:
		return "get_metered_tasks"
	case kindNonJobRunningTasks:
		return "get_non_job_running_tasks"
	case kindAddNode:
		return "add_node"
	case kindGetIsNodeActive:
		return "get_is_node_active"
	case kindUpdateNode:
		return "update_node"
	case kindSetNodeInactive:
		return "set_node_inactive"
	case kindGetNode:
		return "get_node"
	case kindGetNodes:
		return "get_nodes"
	default:
		return "unknown"
	}
}

// message is sent to the actor's mailbox. Only the payload fields that a
// given kind uses are set (UpdateTaskInfo and UpdateNode use several);
// reply always receives exactly
// one response before the actor moves on to the next message.
type message struct {
	kind kind

	taskName     string
	idPrefix     string
	taskState    types.TaskState
	task         types.Task
	nodeName     string
	node         types.Node
	id, ip       string
	slaveID      string
	nodeType     string
	nodeFunction string

	reply chan response
}

// response carries exactly the fields relevant to the message kind that
// produced it.
type response struct {
	task      types.Task
	tasks     []types.Task
	node      types.Node
	nodes     []types.Node
	taskState types.TaskState
	name      string
	ok        bool
}
