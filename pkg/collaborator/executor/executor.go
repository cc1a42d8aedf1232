// Package executor tells a node's task runtime to kill a task. The state
// actor calls this outside the mailbox, so a slow kill request never
// holds up other queued messages; the call's error is returned to the
// caller.
package executor

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/torcsys/torc-controller/pkg/log"
	"github.com/torcsys/torc-controller/pkg/metrics"
)

// Executor sends kill commands to the per-node task runtime.
type Executor struct {
	client *retryablehttp.Client
}

// New returns an Executor.
func New() *Executor {
	client := retryablehttp.NewClient()
	client.HTTPClient = cleanhttp.DefaultPooledClient()
	client.RetryMax = 1
	client.Logger = nil
	return &Executor{client: client}
}

// defaultPort is the runtime's kill endpoint port, appended to a bare IP.
const defaultPort = 8086

// KillTask tells the runtime on nodeAddr to stop the task identified by
// taskID. nodeAddr may be a bare IP (the default runtime port is
// appended) or a host:port pair.
func (e *Executor) KillTask(ctx context.Context, nodeAddr, taskID string) error {
	logger := log.WithComponent("executor").With().Str("node_addr", nodeAddr).Str("task_id", taskID).Logger()

	if nodeAddr == "" {
		logger.Warn().Msg("kill_task skipped: task has no node assigned")
		return nil
	}

	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.CollaboratorCallDuration, "executor", "kill_task")

	addr := nodeAddr
	if !strings.Contains(addr, ":") {
		addr = fmt.Sprintf("%s:%d", addr, defaultPort)
	}
	url := fmt.Sprintf("http://%s/kill?id=%s", addr, taskID)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		metrics.CollaboratorCallFailures.WithLabelValues("executor", "kill_task").Inc()
		return fmt.Errorf("build kill_task request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		logger.Error().Err(err).Msg("kill_task failed")
		metrics.CollaboratorCallFailures.WithLabelValues("executor", "kill_task").Inc()
		return fmt.Errorf("kill task %s on %s: %w", taskID, nodeAddr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		metrics.CollaboratorCallFailures.WithLabelValues("executor", "kill_task").Inc()
		return fmt.Errorf("runtime on %s returned status %d for kill_task", nodeAddr, resp.StatusCode)
	}
	return nil
}
