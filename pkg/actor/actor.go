// Package actor implements the state actor: the single goroutine that
// owns the task table and node table and serializes every read and
// mutation through a mailbox channel. Nothing outside this package ever
// touches pkg/tasktable or pkg/nodetable directly.
package actor

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/torcsys/torc-controller/pkg/collaborator/executor"
	"github.com/torcsys/torc-controller/pkg/collaborator/registry"
	"github.com/torcsys/torc-controller/pkg/collaborator/routing"
	"github.com/torcsys/torc-controller/pkg/log"
	"github.com/torcsys/torc-controller/pkg/metrics"
	"github.com/torcsys/torc-controller/pkg/nodetable"
	"github.com/torcsys/torc-controller/pkg/tasktable"
	"github.com/torcsys/torc-controller/pkg/types"
)

const mailboxSize = 256

// Clock returns the current Unix timestamp. Tests substitute a fixed
// clock; production uses time.Now().
type Clock func() int64

func systemClock() int64 { return time.Now().Unix() }

// Config wires the actor's collaborators. Registry and Executor may be
// nil; every call site checks before using them.
type Config struct {
	MyName   string
	MasterIP string
	Routing  *routing.Agent
	Registry *registry.Registry
	Executor *executor.Executor
	Clock    Clock
}

// Actor owns the task and node tables and serves requests from its
// mailbox one at a time.
type Actor struct {
	myName   string
	masterIP string
	routing  *routing.Agent
	registry *registry.Registry
	executor *executor.Executor
	clock    Clock
	logger   zerolog.Logger

	mailbox chan message
	stopCh  chan struct{}

	tasks *tasktable.Table
	nodes *nodetable.Table
}

// New constructs an actor. Call Start to begin serving.
func New(cfg Config) *Actor {
	clock := cfg.Clock
	if clock == nil {
		clock = systemClock
	}
	return &Actor{
		myName:   cfg.MyName,
		masterIP: cfg.MasterIP,
		routing:  cfg.Routing,
		registry: cfg.Registry,
		executor: cfg.Executor,
		clock:    clock,
		logger:   log.WithComponent("actor"),
		mailbox:  make(chan message, mailboxSize),
		stopCh:   make(chan struct{}),
		tasks:    tasktable.New(),
		nodes:    nodetable.New(),
	}
}

// Start begins the actor's serving loop in a new goroutine.
func (a *Actor) Start() {
	go a.serve()
}

// Stop ends the serving loop. Pending mailbox messages are dropped.
func (a *Actor) Stop() {
	close(a.stopCh)
}

func (a *Actor) serve() {
	a.logger.Info().Msg("state actor serving")
	for {
		select {
		case msg := <-a.mailbox:
			metrics.ActorMailboxDepth.Set(float64(len(a.mailbox)))
			timer := metrics.NewTimer()
			a.handle(msg)
			timer.ObserveDurationVec(metrics.ActorMessageDuration, msg.kind.String())
		case <-a.stopCh:
			a.logger.Info().Msg("state actor stopped")
			return
		}
	}
}

// send enqueues msg and blocks for its reply, honoring ctx cancellation
// on both the enqueue and the reply wait.
func (a *Actor) send(ctx context.Context, msg message) response {
	msg.reply = make(chan response, 1)

	select {
	case a.mailbox <- msg:
	case <-ctx.Done():
		return response{}
	case <-a.stopCh:
		return response{}
	}

	select {
	case r := <-msg.reply:
		return r
	case <-ctx.Done():
		return response{}
	}
}

func (a *Actor) handle(msg message) {
	switch msg.kind {
	case kindPing:
		msg.reply <- response{ok: true}
	case kindGetTask:
		task, ok := a.tasks.Get(msg.taskName)
		msg.reply <- response{task: task, ok: ok}
	case kindHasTaskID:
		msg.reply <- response{ok: a.tasks.HasID(msg.id)}
	case kindGetTaskState:
		a.handleGetTaskState(msg)
	case kindGetTaskIP:
		a.handleGetTaskIP(msg)
	case kindGetTaskNameByID:
		a.handleGetTaskNameByID(msg)
	case kindUpdateTaskState:
		a.handleUpdateTaskState(msg)
	case kindUpdateTaskNodeName:
		a.handleUpdateTaskNodeName(msg)
	case kindUpdateTaskInfo:
		a.handleUpdateTaskInfo(msg)
	case kindUpdateTaskLastUpdate:
		a.handleUpdateTaskLastUpdate(msg)
	case kindStartTask:
		a.handleStartTask(msg)
	case kindRestartTask:
		a.handleRestartTask(msg)
	case kindGetIsRestartableTask:
		a.handleGetIsRestartableTask(msg)
	case kindRemoveTask:
		a.handleRemoveTask(msg)
	case kindGetRequestedTasks:
		a.handleGetTasksWithState(msg, types.TaskRequested)
	case kindGetRunningTasks:
		a.handleGetTasksWithState(msg, types.TaskRunning)
	case kindGetRestartTasks:
		a.handleGetTasksWithState(msg, types.TaskRestart)
	case kindMeteredTasks:
		msg.reply <- response{tasks: a.tasks.Metered()}
	case kindNonJobRunningTasks:
		msg.reply <- response{tasks: a.tasks.NonJobRunning()}
	case kindAddNode:
		a.handleAddNode(msg)
	case kindGetIsNodeActive:
		msg.reply <- response{ok: a.nodes.IsActive(msg.nodeName)}
	case kindUpdateNode:
		a.handleUpdateNode(msg)
	case kindSetNodeInactive:
		a.nodes.SetInactive(msg.nodeName)
		msg.reply <- response{}
	case kindGetNode:
		a.handleGetNode(msg)
	case kindGetNodes:
		msg.reply <- response{nodes: a.nodes.All()}
	default:
		msg.reply <- response{}
	}
	a.refreshTableMetrics()
}

func (a *Actor) refreshTableMetrics() {
	for _, state := range []types.TaskState{
		types.TaskNotRunning, types.TaskRestart, types.TaskRequested, types.TaskAccepted, types.TaskRunning,
	} {
		metrics.TasksByState.WithLabelValues(string(state)).Set(float64(len(a.tasks.WithState(state))))
	}
	active, inactive := 0, 0
	for _, node := range a.nodes.All() {
		if node.Active {
			active++
		} else {
			inactive++
		}
	}
	metrics.NodesByActive.WithLabelValues("true").Set(float64(active))
	metrics.NodesByActive.WithLabelValues("false").Set(float64(inactive))
}
