// API server entry point for BioTerm-Annotator.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/turtacn/BioTerm-Annotator/internal/bootstrap"
	"github.com/turtacn/BioTerm-Annotator/internal/config"
	"github.com/turtacn/BioTerm-Annotator/internal/infrastructure/monitoring/logging"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: using default configuration: %v\n", err)
		cfg, err = config.LoadFromEnv()
		if err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := bootstrap.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: logger initialization failed: %v\n", err)
		os.Exit(1)
	}

	logger.Info("starting BioTerm-Annotator API server",
		logging.String("host", cfg.Server.Host),
		logging.Int("port", cfg.Server.Port),
		logging.Bool("bioportal_enabled", cfg.BioPortal.Enabled()),
		logging.Bool("extraction_enabled", cfg.Anthropic.Enabled()),
		logging.Bool("cache_enabled", cfg.Cache.Enabled),
		logging.Bool("events_enabled", cfg.Events.Enabled),
	)

	app, err := bootstrap.Build(cfg, logger)
	if err != nil {
		logger.Fatal("component wiring failed", logging.Err(err))
	}
	defer app.Close()

	if err := app.RunServer(context.Background()); err != nil {
		logger.Fatal("server exited with error", logging.Err(err))
	}
	logger.Info("server stopped")
}
