// Package registry registers running tasks and the controller itself
// with Consul's service catalog, so other systems can discover them by
// name. The sync loop calls this on every tick for every running task,
// owned or foreign;
// Consul's registration call is idempotent, so repeated registration is
// cheap and expected.
package registry

import (
	"fmt"

	consulapi "github.com/hashicorp/consul/api"
	"github.com/torcsys/torc-controller/pkg/log"
	"github.com/torcsys/torc-controller/pkg/metrics"
	"github.com/torcsys/torc-controller/pkg/types"
)

// Registry registers services against a Consul agent.
type Registry struct {
	client *consulapi.Client
}

// New returns a Registry pointed at the Consul agent reachable at
// address (host:port).
func New(address string) (*Registry, error) {
	cfg := consulapi.DefaultConfig()
	cfg.Address = address

	client, err := consulapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create consul client: %w", err)
	}
	return &Registry{client: client}, nil
}

// RegisterTask registers a running task as a Consul service named after
// the task, at the task's IP.
func (r *Registry) RegisterTask(task types.Task) error {
	return r.register(task.Name, task.IP, "task")
}

// RegisterController registers this controller itself as a discoverable
// service, so peers and the admin surface can find it.
func (r *Registry) RegisterController(name, ip string) error {
	return r.register(name, ip, "controller")
}

// RegisterUnmanagedService registers a service this controller did not
// launch but wants discoverable anyway.
func (r *Registry) RegisterUnmanagedService(name, ip string) error {
	return r.register(name, ip, "unmanaged")
}

func (r *Registry) register(name, ip, kind string) error {
	logger := log.WithComponent("registry").With().Str("service", name).Str("ip", ip).Logger()
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.CollaboratorCallDuration, "registry", "register")

	err := r.client.Agent().ServiceRegister(&consulapi.AgentServiceRegistration{
		Name:    name,
		Address: ip,
		Tags:    []string{kind},
	})
	if err != nil {
		logger.Error().Err(err).Msg("consul service registration failed")
		metrics.CollaboratorCallFailures.WithLabelValues("registry", "register").Inc()
		return fmt.Errorf("register %s with consul: %w", name, err)
	}

	logger.Debug().Msg("registered with consul")
	return nil
}
