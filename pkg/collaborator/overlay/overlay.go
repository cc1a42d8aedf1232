// Package overlay configures the calico-style overlay network by posting
// shell commands to a small per-node agent listening on port 8085 (a node
// address that already carries a port is used as given). Each node runs
// its own agent; this collaborator has no single endpoint.
package overlay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/torcsys/torc-controller/pkg/log"
	"github.com/torcsys/torc-controller/pkg/metrics"
	"github.com/torcsys/torc-controller/pkg/types"
)

const (
	defaultPort = 8085
	calicoCtl   = "/home/bladerunner/calicoctl"
	etcdEnv     = "ETCD_AUTHORITY=etcd.service.torc:2379"
	ipPool      = "192.168.0.0/16"
	networkName = "torc"
)

// command is the JSON body the node agent's /sync endpoint expects.
type command struct {
	Cmd string `json:"cmd"`
	Env string `json:"env"`
}

// Configurator drives the overlay network agents on every slave node.
type Configurator struct {
	client *retryablehttp.Client
}

// New returns a Configurator.
func New() *Configurator {
	client := retryablehttp.NewClient()
	client.HTTPClient = cleanhttp.DefaultPooledClient()
	client.RetryMax = 2
	client.Logger = nil
	return &Configurator{client: client}
}

// ConfigureNetwork brings up the calico overlay and docker network plugin
// on every slave node, then creates the shared docker network once.
func (c *Configurator) ConfigureNetwork(ctx context.Context, nodes []types.Node) {
	for _, node := range nodes {
		if node.NodeType != "slave" {
			continue
		}
		c.send(ctx, node.IP, fmt.Sprintf("%s node --libnetwork", calicoCtl), etcdEnv)
	}

	for _, node := range nodes {
		if node.NodeType != "slave" {
			continue
		}
		c.send(ctx, node.IP, fmt.Sprintf("%s pool add %s --nat-outgoing", calicoCtl, ipPool), etcdEnv)
		c.send(ctx, node.IP, fmt.Sprintf("docker network create --driver calico --ipam-driver calico %s", networkName), "")
		return
	}
}

// ShutdownNetwork stops and removes the calico node on every slave node,
// then removes the IP pool and the shared docker network once.
func (c *Configurator) ShutdownNetwork(ctx context.Context, nodes []types.Node) {
	for _, node := range nodes {
		if node.NodeType != "slave" {
			continue
		}
		c.send(ctx, node.IP, fmt.Sprintf("%s node stop", calicoCtl), etcdEnv)
		c.send(ctx, node.IP, fmt.Sprintf("%s node remove --remove-endpoints", calicoCtl), etcdEnv)
	}

	for _, node := range nodes {
		if node.NodeType != "slave" {
			continue
		}
		c.send(ctx, node.IP, fmt.Sprintf("%s pool remove %s", calicoCtl, ipPool), etcdEnv)
		c.send(ctx, node.IP, fmt.Sprintf("docker network rm %s", networkName), "")
		return
	}
}

func (c *Configurator) send(ctx context.Context, ip, cmd, env string) {
	logger := log.WithComponent("overlay").With().Str("node_ip", ip).Logger()
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.CollaboratorCallDuration, "overlay", "sync")

	body, err := json.Marshal(command{Cmd: cmd, Env: env})
	if err != nil {
		logger.Error().Err(err).Msg("encode overlay command")
		metrics.CollaboratorCallFailures.WithLabelValues("overlay", "sync").Inc()
		return
	}

	addr := ip
	if !strings.Contains(addr, ":") {
		addr = fmt.Sprintf("%s:%d", addr, defaultPort)
	}
	url := fmt.Sprintf("http://%s/sync", addr)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		logger.Error().Err(err).Msg("build overlay request")
		metrics.CollaboratorCallFailures.WithLabelValues("overlay", "sync").Inc()
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Error().Err(err).Msg("send overlay command")
		metrics.CollaboratorCallFailures.WithLabelValues("overlay", "sync").Inc()
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		logger.Error().Int("status", resp.StatusCode).Msg("overlay agent rejected command")
		metrics.CollaboratorCallFailures.WithLabelValues("overlay", "sync").Inc()
	}
}
