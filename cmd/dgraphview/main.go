// Package main implements the entry point for the dgraphview service.
// dgraphview turns Dgraph schema text and query results into renderable
// graph, map, and autocomplete models for the web client.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/johnymontana/dgraph-client-app-sub001/config"
	"github.com/johnymontana/dgraph-client-app-sub001/gateway"
	"github.com/johnymontana/dgraph-client-app-sub001/metric"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "dgraphview"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}
	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil
	}

	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyFlagOverrides(cfg, cliCfg)

	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	logger := setupLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	slog.Info("Starting dgraphview (schema and result graph modeling)",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath,
		"addr", cfg.Server.Addr)

	registry := metric.NewMetricsRegistry()
	server, err := gateway.NewServer(cfg, logger, registry)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	return runWithSignalHandling(server, cfg)
}

// runWithSignalHandling starts the gateway and blocks until a shutdown
// signal arrives.
func runWithSignalHandling(server *gateway.Server, cfg *config.Config) error {
	signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	if err := server.Start(signalCtx); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	slog.Info("dgraphview started successfully")

	<-signalCtx.Done()
	slog.Info("Received shutdown signal")

	if err := server.Stop(cfg.Server.ShutdownTimeout.Std()); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("dgraphview shutdown complete")
	return nil
}

// applyFlagOverrides lets explicit CLI flags win over file and env config.
func applyFlagOverrides(cfg *config.Config, cliCfg *CLIConfig) {
	if cliCfg.Addr != "" {
		cfg.Server.Addr = cliCfg.Addr
	}
	if cliCfg.LogLevel != "" {
		cfg.Logging.Level = cliCfg.LogLevel
	}
	if cliCfg.LogFormat != "" {
		cfg.Logging.Format = cliCfg.LogFormat
	}
	if cliCfg.Debug {
		cfg.Logging.Level = "debug"
	}
}
