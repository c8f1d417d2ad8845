package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dynconv/analyzer/internal/config"
	"github.com/dynconv/analyzer/internal/database"
	"github.com/dynconv/analyzer/internal/di"
	"github.com/dynconv/analyzer/internal/scheduler"
	"github.com/dynconv/analyzer/internal/server"
	"github.com/dynconv/analyzer/pkg/logger"
)

func main() {
	log := logger.New(logger.Config{
		Level:  "info",
		Pretty: true,
	})

	log.Info().Msg("Starting convertible fund analyzer")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log = logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.DevMode})
	logger.SetGlobalLogger(log)

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	container, err := di.Wire(context.Background(), cfg, db, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire services")
	}

	// Scheduled runs are optional; the dashboard can also trigger them.
	sched := scheduler.New(log)
	if cfg.AnalyzeSchedule != "" {
		if err := sched.AddJob(cfg.AnalyzeSchedule, scheduler.NewAnalyzeJob(container.Analyzer)); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.AnalyzeSchedule).Msg("Failed to register analyze job")
		}
		log.Info().Str("schedule", cfg.AnalyzeSchedule).Msg("Scheduled analysis enabled")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Port:     cfg.Port,
		Log:      log,
		Store:    container.Store,
		Analyzer: container.Analyzer,
		Bus:      container.Bus,
		DevMode:  cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
