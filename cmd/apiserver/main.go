// API server entry point: wires infrastructure, application services, and
// the REST interface, then serves until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/patentminer/patentminer/internal/config"
	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/logging"
	httpserver "github.com/patentminer/patentminer/internal/interfaces/http"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	migrateOnly := flag.Bool("migrate-only", false, "apply database migrations and exit")
	flag.Parse()

	loader := config.NewLoader(*configPath)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)
	logger.Info("starting patminer api server",
		logging.String("version", cfg.App.Version),
		logging.String("environment", cfg.App.Environment))

	// Most settings apply at construction time; the watcher keeps the loaded
	// snapshot valid and makes edits visible in the logs.
	loader.OnChange(func(next *config.Config) {
		logger.Info("configuration file reloaded, restart to apply wiring changes",
			logging.String("log_level", next.Log.Level))
	})
	loader.Watch()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := buildDependencies(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize dependencies", logging.Err(err))
	}
	defer deps.Close()

	if err := deps.Migrator.Up(); err != nil {
		logger.Fatal("database migration failed", logging.Err(err))
	}
	if *migrateOnly {
		logger.Info("migrations applied, exiting")
		return
	}

	if cfg.Dashboard.Watch {
		go func() {
			if err := deps.Dashboard.Watch(ctx); err != nil && ctx.Err() == nil {
				logger.Error("vault watcher stopped", logging.Err(err))
			}
		}()
	}

	router := httpserver.NewRouter(deps.RouterConfig(cfg))
	server := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", logging.Err(err))
		}
	}

	if err := server.Stop(context.Background()); err != nil {
		logger.Error("graceful shutdown failed", logging.Err(err))
	}
	logger.Info("api server stopped")
}
