// Package cleanloop runs the periodic expiry tick: every configured
// interval it removes foreign tasks that have gone stale, promotes
// tasks that have waited out their restart delay back to Requested, and
// marks nodes inactive once their liveness timeout has passed.
package cleanloop

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/torcsys/torc-controller/pkg/collaborator/routing"
	"github.com/torcsys/torc-controller/pkg/log"
	"github.com/torcsys/torc-controller/pkg/metrics"
	"github.com/torcsys/torc-controller/pkg/types"
)

// Handle is the subset of the state actor the clean loop needs.
type Handle interface {
	RunningTasks(ctx context.Context) []types.Task
	RestartTasks(ctx context.Context) []types.Task
	Nodes(ctx context.Context) []types.Node
	RemoveTaskByName(ctx context.Context, taskName string)
	UpdateTaskState(ctx context.Context, taskName string, state types.TaskState)
	SetNodeInactive(ctx context.Context, nodeName string)
}

// Clock returns the current Unix timestamp.
type Clock func() int64

// Config controls the clean loop's timing.
type Config struct {
	MyName              string
	PollInterval        time.Duration
	TaskTimeout         int64
	NodeTimeout         int64
	RestartDelaySeconds int64
	Clock               Clock
}

// Loop periodically expires stale foreign tasks, promotes delayed
// restarts, and marks stale nodes inactive.
type Loop struct {
	handle  Handle
	routing *routing.Agent
	cfg     Config
	clock   Clock
	logger  zerolog.Logger
	stopCh  chan struct{}
}

// New returns a Loop.
func New(handle Handle, routingAgent *routing.Agent, cfg Config) *Loop {
	clock := cfg.Clock
	if clock == nil {
		clock = func() int64 { return time.Now().Unix() }
	}
	return &Loop{
		handle:  handle,
		routing: routingAgent,
		cfg:     cfg,
		clock:   clock,
		logger:  log.WithComponent("cleanloop"),
		stopCh:  make(chan struct{}),
	}
}

// Start begins the ticking loop. A non-positive poll interval disables
// it.
func (l *Loop) Start() {
	if l.cfg.PollInterval <= 0 {
		l.logger.Warn().Msg("clean loop disabled: non-positive poll interval")
		return
	}
	go l.run()
}

// Stop ends the loop.
func (l *Loop) Stop() {
	close(l.stopCh)
}

func (l *Loop) run() {
	ticker := time.NewTicker(l.cfg.PollInterval)
	defer ticker.Stop()

	l.logger.Info().Dur("interval", l.cfg.PollInterval).Msg("clean loop started")

	for {
		select {
		case <-ticker.C:
			l.tick()
		case <-l.stopCh:
			l.logger.Info().Msg("clean loop stopped")
			return
		}
	}
}

func (l *Loop) tick() {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.CleanCycleDuration)

	ctx := context.Background()
	now := l.clock()

	l.expireStaleForeignTasks(ctx, now)
	l.promoteDelayedRestarts(ctx, now)
	l.inactivateStaleNodes(ctx, now)
}

// expireStaleForeignTasks removes every running task NOT owned by this
// controller whose last_update has exceeded the staleness timeout, and
// tears down the route that pointed at it. Tasks this controller owns
// are left for the sync loop to keep alive instead.
func (l *Loop) expireStaleForeignTasks(ctx context.Context, now int64) {
	for _, task := range l.handle.RunningTasks(ctx) {
		if task.Controller == l.cfg.MyName {
			continue
		}
		if task.LastUpdate+l.cfg.TaskTimeout >= now {
			continue
		}

		l.logger.Info().Str("task_name", task.Name).Msg("expiring stale foreign task")
		l.handle.RemoveTaskByName(ctx, task.Name)
		metrics.TasksExpiredTotal.Inc()

		if l.routing != nil {
			if err := l.routing.DeleteRoute(ctx, task.IP); err != nil {
				l.logger.Error().Err(err).Str("task_name", task.Name).Msg("failed to delete route for expired task")
			}
		}
	}
}

// promoteDelayedRestarts moves tasks this controller owns out of
// Restart and back into Requested once the restart delay has elapsed,
// giving the scheduler a chance to re-place them.
func (l *Loop) promoteDelayedRestarts(ctx context.Context, now int64) {
	for _, task := range l.handle.RestartTasks(ctx) {
		if task.Controller != l.cfg.MyName {
			continue
		}
		if task.LastUpdate+l.cfg.RestartDelaySeconds >= now {
			continue
		}

		l.logger.Info().Str("task_name", task.Name).Msg("promoting delayed restart to requested")
		l.handle.UpdateTaskState(ctx, task.Name, types.TaskRequested)
		metrics.TasksPromotedTotal.Inc()
	}
}

// inactivateStaleNodes marks every active node whose last_seen has
// exceeded the liveness timeout as inactive.
func (l *Loop) inactivateStaleNodes(ctx context.Context, now int64) {
	for _, node := range l.handle.Nodes(ctx) {
		if !node.Active {
			continue
		}
		if node.LastSeen+l.cfg.NodeTimeout >= now {
			continue
		}

		l.logger.Info().Str("node_name", node.Name).Msg("marking stale node inactive")
		l.handle.SetNodeInactive(ctx, node.Name)
		metrics.NodesInactivatedTotal.Inc()
	}
}
