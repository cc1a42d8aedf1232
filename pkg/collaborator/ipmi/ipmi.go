// Package ipmi powers nodes on and off through an IPMI proxy reachable
// over HTTP. The proxy itself speaks IPMI to the out-of-band management
// network; this client only knows its HTTP front door.
package ipmi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/torcsys/torc-controller/pkg/log"
	"github.com/torcsys/torc-controller/pkg/metrics"
)

// Proxy talks to an IPMI proxy over HTTP.
type Proxy struct {
	baseURL string
	client  *retryablehttp.Client
}

// New returns a Proxy client pointed at baseURL. If baseURL is
// "undefined" (the config default), every call is a no-op.
func New(baseURL string) *Proxy {
	client := retryablehttp.NewClient()
	client.HTTPClient = cleanhttp.DefaultPooledClient()
	client.RetryMax = 2
	client.Logger = nil

	return &Proxy{baseURL: baseURL, client: client}
}

// StartupNode powers on the node identified by managementIP.
func (p *Proxy) StartupNode(ctx context.Context, managementIP string) error {
	return p.call(ctx, "startup", managementIP)
}

// ShutdownNode powers off the node identified by managementIP.
func (p *Proxy) ShutdownNode(ctx context.Context, managementIP string) error {
	return p.call(ctx, "shutdown", managementIP)
}

func (p *Proxy) call(ctx context.Context, op, managementIP string) error {
	logger := log.WithComponent("ipmi").With().Str("node_ip", managementIP).Str("op", op).Logger()

	if p.baseURL == "" || p.baseURL == "undefined" {
		logger.Warn().Msg("ipmiproxy undefined, skipping power operation")
		return nil
	}

	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.CollaboratorCallDuration, "ipmi", op)

	url := fmt.Sprintf("%s/%s?ip=%s", p.baseURL, op, managementIP)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		metrics.CollaboratorCallFailures.WithLabelValues("ipmi", op).Inc()
		return fmt.Errorf("build %s request: %w", op, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		logger.Error().Err(err).Msg("ipmi proxy call failed")
		metrics.CollaboratorCallFailures.WithLabelValues("ipmi", op).Inc()
		return fmt.Errorf("%s node %s: %w", op, managementIP, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		metrics.CollaboratorCallFailures.WithLabelValues("ipmi", op).Inc()
		return fmt.Errorf("ipmi proxy returned status %d for %s", resp.StatusCode, op)
	}
	return nil
}
