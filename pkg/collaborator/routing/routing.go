// Package routing dispatches fabric route changes to the cluster's
// routing agent (fboss or snaproute dispatch, selected by the
// network-agent.type config field). Every task that owns a route gets a
// /32 host route pointed at the node currently running it; the state
// actor calls Add/Delete as tasks move.
package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/torcsys/torc-controller/pkg/log"
	"github.com/torcsys/torc-controller/pkg/metrics"
)

// Agent dispatches route operations to a routing agent over HTTP.
type Agent struct {
	agentType  string
	connection string
	client     *retryablehttp.Client
}

// New returns an Agent that dispatches to the named agent type
// (fboss, snaproute, or undefined) at connection.
func New(agentType, connection string) *Agent {
	client := retryablehttp.NewClient()
	client.HTTPClient = cleanhttp.DefaultPooledClient()
	client.RetryMax = 2
	client.Logger = nil

	return &Agent{
		agentType:  agentType,
		connection: connection,
		client:     client,
	}
}

// ResetFIB clears the forwarding table on the routing agent. It is called
// once at controller startup.
func (a *Agent) ResetFIB(ctx context.Context) error {
	logger := log.WithComponent("routing")
	logger.Info().Str("agent_type", a.agentType).Msg("resetting fib")

	if a.agentType == "undefined" {
		logger.Warn().Msg("network-agent undefined, skipping reset_fib")
		return nil
	}
	return a.dispatch(ctx, "reset_fib", nil)
}

// AddRoute installs a /32 host route to routeTo via routeVia. A no-op if
// routeVia is empty, or if the connection address already routes to
// routeTo directly (the original's "don't route to yourself" guard).
func (a *Agent) AddRoute(ctx context.Context, routeTo, routeVia string) error {
	logger := log.WithComponent("routing").With().Str("route_to", routeTo).Str("route_via", routeVia).Logger()

	if routeVia == "" {
		logger.Debug().Msg("add_route skipped: no via address")
		return nil
	}
	if hasPrefix(a.connection, routeTo) {
		logger.Debug().Msg("add_route skipped: route target is this connection")
		return nil
	}

	logger.Info().Msg("adding route")
	return a.dispatch(ctx, "add_route", map[string]string{
		"route_to":  routeTo + "/32",
		"route_via": routeVia,
	})
}

// DeleteRoute removes a previously installed /32 host route. A no-op if
// routeTo is empty.
func (a *Agent) DeleteRoute(ctx context.Context, routeTo string) error {
	logger := log.WithComponent("routing").With().Str("route_to", routeTo).Logger()

	if routeTo == "" {
		logger.Debug().Msg("delete_route skipped: empty target")
		return nil
	}

	logger.Info().Msg("deleting route")
	return a.dispatch(ctx, "delete_route", map[string]string{
		"route_to": routeTo + "/32",
	})
}

func hasPrefix(connection, routeTo string) bool {
	return len(connection) >= len(routeTo) && connection[:len(routeTo)] == routeTo
}

func (a *Agent) dispatch(ctx context.Context, op string, params map[string]string) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.CollaboratorCallDuration, "routing", op)

	if a.agentType != "fboss" && a.agentType != "snaproute" {
		log.WithComponent("routing").Warn().Str("agent_type", a.agentType).Msg("unknown network-agent type")
		return nil
	}

	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encode %s params: %w", op, err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("http://%s/%s", a.connection, op), bytes.NewReader(body))
	if err != nil {
		metrics.CollaboratorCallFailures.WithLabelValues("routing", op).Inc()
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		metrics.CollaboratorCallFailures.WithLabelValues("routing", op).Inc()
		return fmt.Errorf("dispatch %s to %s: %w", op, a.agentType, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		metrics.CollaboratorCallFailures.WithLabelValues("routing", op).Inc()
		return fmt.Errorf("%s agent returned status %d", a.agentType, resp.StatusCode)
	}
	return nil
}
