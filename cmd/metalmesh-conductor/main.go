// Package main provides the entry point for metalmesh-conductor.
//
// @design DS-0501
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/yndnr/metalmesh/internal/auth"
	"github.com/yndnr/metalmesh/internal/conductor"
	"github.com/yndnr/metalmesh/internal/infra/buildinfo"
	"github.com/yndnr/metalmesh/internal/infra/confloader"
	"github.com/yndnr/metalmesh/internal/infra/shutdown"
	"github.com/yndnr/metalmesh/internal/localbus"
	"github.com/yndnr/metalmesh/internal/rpc"
	"github.com/yndnr/metalmesh/internal/server/config"
	"github.com/yndnr/metalmesh/internal/telemetry/logger"
	"github.com/yndnr/metalmesh/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Parse command line flags
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	// Show version and exit
	if *showVersion {
		info := buildinfo.Get()
		fmt.Printf("metalmesh-conductor %s (commit: %s, built: %s)\n",
			info.Version, info.Commit, info.BuildTime)
		return nil
	}

	// Load configuration
	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Initialize logger
	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	log.Info("starting metalmesh-conductor",
		"version", buildinfo.Version,
		"config", *configFile,
		"topic", cfg.Conductor.Topic)

	// Setup graceful shutdown
	shutdownHandler := shutdown.NewHandler(30 * time.Second)

	// Stand up the loopback bus when no external broker is configured.
	if cfg.Conductor.LocalBus {
		bus, err := localbus.Start(cfg, localbus.Options{UseTLS: true, Logger: log})
		if err != nil {
			return fmt.Errorf("start local bus: %w", err)
		}
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			bus.Close()
			return nil
		})
	}

	// Open the node store
	store, err := conductor.NewNodeStore(cfg.Conductor.DataDir, log)
	if err != nil {
		return fmt.Errorf("open node store: %w", err)
	}
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down node store")
		return store.Close()
	})

	// Build the manager and its RPC registry
	manager := conductor.NewManager(cfg.Conductor.Topic, store, log)
	registry := rpc.NewRegistry()
	manager.RegisterMethods(registry)

	metrics := metric.NewRegistry()

	// Create the RPC server
	rpcServer, err := rpc.NewServer(registry, rpc.ServerOptions{
		HostIP:         cfg.RPC.HostIP,
		Port:           cfg.RPC.Port,
		TLSCertFile:    serverCert(cfg),
		TLSKeyFile:     serverKey(cfg),
		AuthStrategy:   cfg.Auth.Strategy,
		CredentialFile: cfg.Auth.CredentialFile,
		RequiredRole:   cfg.Auth.RequiredRole,
		Logger:         log,
		Metrics:        metrics,
	})
	if err != nil {
		return fmt.Errorf("create RPC server: %w", err)
	}
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down RPC server")
		return rpcServer.Shutdown(ctx)
	})

	// Watch the credential file so rotated secrets invalidate the
	// verification cache.
	if gate := rpcServer.Gate(); gate != nil {
		watcher, err := auth.NewWatcher(cfg.Auth.CredentialFile, gate.Cache(), log)
		if err != nil {
			return fmt.Errorf("watch credential file: %w", err)
		}
		watcher.StartAsync()
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			watcher.Stop()
			return nil
		})
	}

	// Serve metrics on a separate listener, never on the RPC port.
	if cfg.Telemetry.MetricsAddr != "" {
		metricsServer := &http.Server{
			Addr:    cfg.Telemetry.MetricsAddr,
			Handler: metricsMux(metrics),
		}
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			return metricsServer.Shutdown(ctx)
		})
		go func() {
			log.Info("metrics listening", "addr", cfg.Telemetry.MetricsAddr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server error", "error", err)
			}
		}()
	}

	// Start the RPC server
	go func() {
		if err := rpcServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("RPC server error", "error", err)
		}
	}()

	// Wait for shutdown signal
	log.Info("conductor started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("conductor stopped gracefully")
	return nil
}

// loadConfig loads configuration from file and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	// Start with defaults
	cfg := config.Default()

	// Create loader with optional config file
	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	loader := confloader.NewLoader(opts...)

	// Load and unmarshal
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	// Validate configuration
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// initLogger initializes the structured logger.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}

	logger.SetDefault(log)
	return log, nil
}

func serverCert(cfg *config.ServerConfig) string {
	if !cfg.RPC.UseSSL {
		return ""
	}
	return cfg.RPC.TLSCertFile
}

func serverKey(cfg *config.ServerConfig) string {
	if !cfg.RPC.UseSSL {
		return ""
	}
	return cfg.RPC.TLSKeyFile
}

func metricsMux(metrics *metric.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	return mux
}
