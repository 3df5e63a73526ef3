package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/Haleralex/userdir/internal/config"
	"github.com/Haleralex/userdir/internal/container"
)

// Заполняются при сборке: -ldflags "-X main.version=... -X main.buildTime=..."
var (
	version   = ""
	buildTime = ""
)

func main() {
	configPath := flag.String("config", "configs", "directory with config.yaml")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("userdir stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(configPath string) error {
	// 1. Configuration
	cfg, err := config.Load(configPath, "config")
	if err != nil {
		return err
	}
	if version != "" {
		cfg.App.Version = version
	}
	if buildTime != "" {
		cfg.App.BuildTime = buildTime
	}

	// 2. Dependencies
	ctx := context.Background()
	c := container.New(cfg)
	if err := c.Initialize(ctx); err != nil {
		return err
	}
	defer func() {
		if err := c.Shutdown(context.WithoutCancel(ctx)); err != nil {
			slog.Error("shutdown failed", slog.String("error", err.Error()))
		}
	}()

	// 3. Serve until SIGINT/SIGTERM
	if err := c.Run(ctx); err != nil {
		return err
	}

	c.Logger().Info("Server stopped gracefully")
	return nil
}
