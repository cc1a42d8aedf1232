// Package syncloop runs the periodic re-registration tick: every
// configured interval, it registers every running task with the service
// registry and passes each task this controller owns to the handle's
// Announce (the state actor's peer-announce handler, which refreshes a
// known task's last_update). The loop itself sends nothing to peer
// controllers.
package syncloop

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/torcsys/torc-controller/pkg/collaborator/registry"
	"github.com/torcsys/torc-controller/pkg/log"
	"github.com/torcsys/torc-controller/pkg/metrics"
	"github.com/torcsys/torc-controller/pkg/types"
)

// Handle is the subset of the state actor the sync loop needs.
type Handle interface {
	RunningTasks(ctx context.Context) []types.Task
	Announce(ctx context.Context, task types.Task)
}

// Loop periodically registers running tasks and passes owned tasks to
// the handle's Announce.
type Loop struct {
	handle       Handle
	registry     *registry.Registry
	myName       string
	pollInterval time.Duration
	logger       zerolog.Logger
	stopCh       chan struct{}
}

// New returns a Loop. pollInterval of zero or less disables ticking
// (Start becomes a no-op), matching a misconfigured poll_interval being
// treated as "off" rather than a busy loop.
func New(handle Handle, reg *registry.Registry, myName string, pollInterval time.Duration) *Loop {
	return &Loop{
		handle:       handle,
		registry:     reg,
		myName:       myName,
		pollInterval: pollInterval,
		logger:       log.WithComponent("syncloop"),
		stopCh:       make(chan struct{}),
	}
}

// Start begins the ticking loop in a new goroutine.
func (l *Loop) Start() {
	if l.pollInterval <= 0 {
		l.logger.Warn().Msg("sync loop disabled: non-positive poll interval")
		return
	}
	go l.run()
}

// Stop ends the loop.
func (l *Loop) Stop() {
	close(l.stopCh)
}

func (l *Loop) run() {
	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	l.logger.Info().Dur("interval", l.pollInterval).Msg("sync loop started")

	for {
		select {
		case <-ticker.C:
			l.tick()
		case <-l.stopCh:
			l.logger.Info().Msg("sync loop stopped")
			return
		}
	}
}

func (l *Loop) tick() {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.SyncCycleDuration)

	ctx := context.Background()
	running := l.handle.RunningTasks(ctx)

	for _, task := range running {
		if l.registry != nil {
			if err := l.registry.RegisterTask(task); err != nil {
				l.logger.Error().Err(err).Str("task_name", task.Name).Msg("failed to re-register running task")
			}
		}
		if task.Controller == l.myName {
			l.handle.Announce(ctx, task)
		}
	}
}
