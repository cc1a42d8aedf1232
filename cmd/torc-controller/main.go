package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/torcsys/torc-controller/pkg/actor"
	"github.com/torcsys/torc-controller/pkg/cleanloop"
	"github.com/torcsys/torc-controller/pkg/collaborator/executor"
	"github.com/torcsys/torc-controller/pkg/collaborator/registry"
	"github.com/torcsys/torc-controller/pkg/collaborator/routing"
	"github.com/torcsys/torc-controller/pkg/config"
	"github.com/torcsys/torc-controller/pkg/log"
	"github.com/torcsys/torc-controller/pkg/metrics"
	"github.com/torcsys/torc-controller/pkg/syncloop"
	"github.com/torcsys/torc-controller/pkg/types"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "torc-controller",
	Short:   "torc-controller coordinates task placement on a bare-metal cluster",
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("torc-controller version %s (%s)\n", Version, Commit))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(serveCmd)
}

func initLogging() {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	jsonOutput, _ := rootCmd.PersistentFlags().GetBool("log-json")
	log.Init(log.Config{Level: log.Level(level), JSONOutput: jsonOutput})
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the state actor, sync loop, and clean loop",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("config", "", "Path to the controller's YAML config file")
	serveCmd.Flags().String("master-ip", "", "Cluster master IP, substituted for $MASTER_IP in config")
	serveCmd.Flags().String("my-ip", "", "This controller's own IP")
	serveCmd.Flags().String("metrics-addr", "127.0.0.1:9090", "Address to serve /metrics on")
	_ = serveCmd.MarkFlagRequired("config")
	_ = serveCmd.MarkFlagRequired("master-ip")
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	masterIP, _ := cmd.Flags().GetString("master-ip")
	myIP, _ := cmd.Flags().GetString("my-ip")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	metrics.SetVersion(Version)

	cfg, err := config.Load(configPath, masterIP)
	if err != nil {
		log.Logger.Fatal().Err(err).Str("path", configPath).Msg("failed to load config")
	}

	routingAgent := routing.New(cfg.NetworkAgent.Type, cfg.NetworkAgent.Connection)

	reg, err := registry.New(fmt.Sprintf("%s:8500", masterIP))
	if err != nil {
		log.Logger.Error().Err(err).Msg("failed to create consul registry client, continuing without registration")
		reg = nil
	}

	exec := executor.New()

	a := actor.New(actor.Config{
		MyName:   cfg.Name,
		MasterIP: masterIP,
		Routing:  routingAgent,
		Registry: reg,
		Executor: exec,
	})
	a.Start()

	ctx := context.Background()

	for _, node := range cfg.Nodes {
		a.AddNode(ctx, types.Node{
			Name:         node.Name,
			IP:           node.IP,
			ExternalIP:   node.ExternalIP,
			ManagementIP: node.ManagementIP,
			NodeType:     node.Type,
			PortID:       node.Port,
		})
	}

	sync := syncloop.New(a, reg, cfg.Name, time.Duration(cfg.StateSync.PollIntervalSeconds)*time.Second)
	sync.Start()

	clean := cleanloop.New(a, routingAgent, cleanloop.Config{
		MyName:              cfg.Name,
		PollInterval:        time.Duration(cfg.StateClean.PollIntervalSeconds) * time.Second,
		TaskTimeout:         int64(cfg.StateClean.TimeoutSeconds),
		NodeTimeout:         int64(cfg.StateClean.TimeoutSeconds),
		RestartDelaySeconds: int64(cfg.StateClean.RestartDelaySeconds),
	})
	clean.Start()

	if err := routingAgent.ResetFIB(ctx); err != nil {
		log.Logger.Error().Err(err).Msg("failed to reset fib at startup")
	}

	metrics.RegisterComponent("actor", true, "")

	if reg != nil {
		metrics.RegisterComponent("registry", true, "")
		if myIP != "" {
			if err := reg.RegisterController(cfg.Name, myIP); err != nil {
				log.Logger.Error().Err(err).Msg("failed to register controller with consul")
			}
		}
	} else {
		metrics.RegisterComponent("registry", false, "consul client unavailable")
	}

	go serveMetrics(metricsAddr)

	log.Logger.Info().Str("name", cfg.Name).Msg("torc-controller serving")

	waitForShutdown(a, sync, clean)
	return nil
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/health", metrics.HealthHandler())
	mux.Handle("/ready", metrics.ReadyHandler())
	mux.Handle("/live", metrics.LivenessHandler())
	log.Logger.Info().Str("addr", addr).Msg("metrics endpoint listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Logger.Error().Err(err).Msg("metrics server stopped")
	}
}

type stoppable interface{ Stop() }

func waitForShutdown(components ...stoppable) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Logger.Info().Msg("shutting down")
	for _, c := range components {
		c.Stop()
	}
}
