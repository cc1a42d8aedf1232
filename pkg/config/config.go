// Package config loads the controller's YAML configuration tree (spec §6)
// and applies the "$MASTER_IP" variable substitution the original source
// performs while reading node addresses and the network-agent connection
// string.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// NetworkAgent names the routing-agent dispatch target (spec §4.C).
type NetworkAgent struct {
	Type       string `yaml:"type"`
	Connection string `yaml:"connection"`
}

// SyncConfig controls the sync loop's poll interval (spec §4.E).
type SyncConfig struct {
	PollIntervalSeconds int `yaml:"poll_interval_in_seconds"`
}

// CleanConfig controls the clean loop's timing (spec §4.F).
type CleanConfig struct {
	PollIntervalSeconds int `yaml:"poll_interval_in_seconds"`
	TimeoutSeconds      int `yaml:"timeout_in_seconds"`
	RestartDelaySeconds int `yaml:"restart_delay_in_seconds"`
}

// NodeEntry is one entry of the configured node list (spec §6 "nodes[]").
type NodeEntry struct {
	Name         string `yaml:"name"`
	IP           string `yaml:"ip"`
	ExternalIP   string `yaml:"external_ip"`
	ManagementIP string `yaml:"management_ip"`
	Port         int    `yaml:"port"`
	Type         string `yaml:"type"`
}

// ServiceGroup is a predefined batch of services the admin surface can
// launch together (spec §6 "api.service-groups[]"). The core parses this
// through so the config layer is complete; interpreting it is the HTTP
// admin surface's job, out of scope for this repository.
type ServiceGroup struct {
	Name     string   `yaml:"name"`
	Services []string `yaml:"services"`
}

// APIConfig carries the admin-surface-adjacent configuration that the core
// parses but does not act on.
type APIConfig struct {
	ServiceGroups []ServiceGroup `yaml:"service-groups"`
}

// Config is the controller's parsed configuration tree.
type Config struct {
	Name         string       `yaml:"name"`
	IPMIProxy    string       `yaml:"ipmiproxy"`
	NetworkAgent NetworkAgent `yaml:"network-agent"`
	StateSync    SyncConfig   `yaml:"statesync"`
	StateClean   CleanConfig  `yaml:"stateclean"`
	Nodes        []NodeEntry  `yaml:"nodes"`
	API          APIConfig    `yaml:"api"`
}

const (
	masterIPVar     = "$MASTER_IP"
	defaultName     = "torc-controller"
	defaultProxy    = "undefined"
	defaultAgentTyp = "undefined"
)

// Load reads and parses the YAML configuration file at path, applies
// defaults for unset fields, and substitutes masterIP for every occurrence
// of $MASTER_IP in the network-agent connection string and node addresses.
//
// A malformed or unreadable config file is a fatal error per spec §7 — the
// caller is expected to log.Fatal on a non-nil error rather than retry.
func Load(path, masterIP string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyDefaults(&cfg)
	substituteMasterIP(&cfg, masterIP)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Name == "" {
		cfg.Name = defaultName
	}
	if cfg.IPMIProxy == "" {
		cfg.IPMIProxy = defaultProxy
	}
	if cfg.NetworkAgent.Type == "" {
		cfg.NetworkAgent.Type = defaultAgentTyp
	}
}

func substituteMasterIP(cfg *Config, masterIP string) {
	cfg.NetworkAgent.Connection = strings.ReplaceAll(cfg.NetworkAgent.Connection, masterIPVar, masterIP)
	for i := range cfg.Nodes {
		cfg.Nodes[i].IP = strings.ReplaceAll(cfg.Nodes[i].IP, masterIPVar, masterIP)
		cfg.Nodes[i].ExternalIP = strings.ReplaceAll(cfg.Nodes[i].ExternalIP, masterIPVar, masterIP)
	}
}
