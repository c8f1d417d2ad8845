// Command analyzer runs one analysis pass over the configured input files
// and writes the report to the output directory.
package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/dynconv/analyzer/internal/config"
	"github.com/dynconv/analyzer/internal/database"
	"github.com/dynconv/analyzer/internal/di"
	"github.com/dynconv/analyzer/pkg/logger"
)

func main() {
	log := logger.New(logger.Config{
		Level:  "info",
		Pretty: true,
	})

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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	container, err := di.Wire(ctx, cfg, db, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire services")
	}

	report, err := container.Analyzer.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Analysis failed")
	}

	if err := writeReport(cfg.OutputDir, report.RunID, report); err != nil {
		log.Fatal().Err(err).Msg("Failed to write report")
	}

	log.Info().
		Str("run_id", report.RunID).
		Str("fund_rating", report.Results.Summary.FundRating).
		Int("holdings", report.Results.Summary.Holdings).
		Msg("Report written")
}

// writeReport stores the report JSON under the run ID and as latest.json.
func writeReport(dir, runID string, report any) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}

	for _, name := range []string{runID + ".json", "latest.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			return err
		}
	}
	return nil
}
