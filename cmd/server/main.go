package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/skysar/sarplan/internal/api"
	"github.com/skysar/sarplan/internal/config"
	"github.com/skysar/sarplan/internal/planner"
	"github.com/skysar/sarplan/internal/storage/sqlite"
	"github.com/skysar/sarplan/internal/websocket"
	"github.com/skysar/sarplan/pkg/logger"
)

var (
	// Version is injected at build time
	Version = "dev"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file (optional - will search in configs/ and root directory)")
	flag.Parse()

	// Load configuration with fallback logic
	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Create logger
	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting SAR planning server",
		logger.String("version", Version),
		logger.String("config_path", *configPath),
	)

	// Ensure the database directory exists
	dbDir := filepath.Dir(cfg.Storage.SQLitePath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		log.Error("Failed to create database directory", logger.Error(err), logger.String("path", dbDir))
		os.Exit(1)
	}

	// Create SQLite plan archive
	planStorage, err := sqlite.NewPlanStorage(cfg.Storage.SQLitePath, cfg.Storage.MaxPlansInAPI, log)
	if err != nil {
		log.Error("Failed to create SQLite storage", logger.Error(err))
		os.Exit(1)
	}
	defer planStorage.Close()
	log.Info("Using SQLite storage", logger.String("path", cfg.Storage.SQLitePath))

	// Ensure the artifact output directory exists
	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		log.Error("Failed to create output directory", logger.Error(err), logger.String("path", cfg.Output.Dir))
		os.Exit(1)
	}

	// Create the planning service from configured tunables and fleet
	tunables := planner.Tunables{
		BurnRateKgPerHour:   cfg.Planner.BurnRateKgPerHour,
		UncertaintyFraction: cfg.Planner.UncertaintyFraction,
		MinRadiusKm:         cfg.Planner.MinRadiusKm,
		DriftCapFraction:    cfg.Planner.DriftCapFraction,
		CellSizeKm:          cfg.Planner.CellSizeKm,
		MaxCells:            cfg.Planner.MaxCells,
		DirectionalBias:     cfg.Planner.DirectionalBias,
		ForcedDescentFpm:    cfg.Planner.ForcedDescentFpm,
	}

	assets := make([]planner.Asset, 0, len(cfg.Assets))
	for _, a := range cfg.Assets {
		assets = append(assets, planner.Asset{
			Name:         a.Name,
			SweepWidthKm: a.SweepWidthKm,
			SpeedKmh:     a.SpeedKmh,
		})
	}

	plannerService, err := planner.NewService(tunables, assets, log)
	if err != nil {
		log.Error("Invalid planner configuration", logger.Error(err))
		os.Exit(1)
	}

	// Create WebSocket server for plan event streaming
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wsServer := websocket.NewServer(log)
	go wsServer.Run(ctx)

	// Create API router
	router := api.NewRouter(plannerService, cfg, log, wsServer, planStorage)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSecs) * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error on startup", logger.String("addr", server.Addr), logger.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down server...")

	// Stop the WebSocket hub
	cancel()

	// Shutdown the HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", logger.Error(err))
	} else {
		log.Info("HTTP server shutdown complete")
	}

	log.Info("Server fully stopped")
}
