package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/agenthands/creative/internal/config"
	"github.com/agenthands/creative/internal/core"
	"github.com/agenthands/creative/internal/driver"
	"github.com/agenthands/creative/internal/server"
	"github.com/agenthands/creative/internal/telemetry"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using defaults")
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	shutdown, err := telemetry.Init(ctx, cfg.Telemetry, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			slog.Error("failed to flush traces", "error", err)
		}
	}()

	var exporter core.Exporter
	if cfg.Memgraph.Enabled() {
		d, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password)
		if err != nil {
			log.Fatalf("Failed to connect to Memgraph: %v", err)
		}
		defer d.Close(ctx)
		if err := d.BuildIndices(ctx); err != nil {
			slog.Warn("failed to build indices", "error", err)
		}
		exporter = driver.NewExporter(d)
	}

	reg := prometheus.NewRegistry()
	srv := server.NewServer(cfg, reg, exporter)
	r := srv.SetupRouter()

	slog.Info("Starting server", "port", cfg.Server.Port, "export", cfg.Memgraph.Enabled())
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal(err)
	}
}

// loadConfig reads CONFIG_PATH (default config/config.toml), falling back to
// the built-in defaults when the default file is absent, then applies the
// environment.
func loadConfig() (*config.Config, error) {
	path := os.Getenv("CONFIG_PATH")
	explicit := path != ""
	if !explicit {
		path = "config/config.toml"
	}

	cfg, err := config.Load(path)
	if err != nil {
		if explicit {
			return nil, err
		}
		slog.Warn("Could not load config, using defaults", "path", path, "error", err)
		cfg = config.Default()
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}
