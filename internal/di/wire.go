// Package di wires the application's services together. The Container is
// the single source of truth for service instances shared by the commands.
package di

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dynconv/analyzer/internal/clients/refdata"
	"github.com/dynconv/analyzer/internal/config"
	"github.com/dynconv/analyzer/internal/database"
	"github.com/dynconv/analyzer/internal/events"
	"github.com/dynconv/analyzer/internal/export"
	"github.com/dynconv/analyzer/internal/modules/aggregation"
	"github.com/dynconv/analyzer/internal/modules/analysis"
	"github.com/dynconv/analyzer/internal/modules/loader"
	"github.com/dynconv/analyzer/internal/modules/metrics"
	"github.com/dynconv/analyzer/internal/modules/snapshots"
)

// Container holds the application's wired services.
type Container struct {
	Analyzer *analysis.Analyzer
	Store    *snapshots.Store
	Bus      *events.Bus
}

// Wire builds the full pipeline from configuration.
func Wire(ctx context.Context, cfg *config.Config, db *database.DB, log zerolog.Logger) (*Container, error) {
	class, err := metrics.LoadClassifications(cfg.ClassificationsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load classifications: %w", err)
	}

	// Reference-data enrichment is skipped when no service is configured;
	// the loader logs a warning and the earnings columns stay empty.
	var fetcher loader.ReferenceDataFetcher
	if cfg.RefdataURL != "" {
		cache, err := refdata.NewCache(db)
		if err != nil {
			return nil, err
		}
		fetcher = refdata.NewClient(cfg.RefdataURL, cfg.RefdataAPIKey, log,
			refdata.WithCache(cache, time.Duration(cfg.RefdataCacheTTLHrs)*time.Hour),
			refdata.WithMaxAttempts(cfg.RefdataMaxAttempts),
		)
	}

	store, err := snapshots.NewStore(db, log)
	if err != nil {
		return nil, err
	}

	var publisher analysis.Publisher
	if cfg.S3Bucket != "" {
		p, err := export.NewS3Publisher(ctx, cfg.S3Bucket, cfg.S3Prefix, log)
		if err != nil {
			return nil, err
		}
		publisher = p
	}

	bus := events.NewBus()

	analyzer := analysis.New(analysis.Config{
		Loader: loader.New(loader.Sources{
			Positions:       cfg.PositionsFile,
			Themes:          cfg.ThemesFile,
			Analytics:       cfg.AnalyticsFile,
			InternalRatings: cfg.InternalRatingsFile,
		}, fetcher, log),
		Calculator: metrics.NewCalculator(class, log),
		Aggregator: aggregation.New(cfg.TopHoldings, class.RatingOrder(), log),
		Store:      store,
		Publisher:  publisher,
		Bus:        bus,
		FXHedgeUSD: cfg.FXHedgeUSD,
		Log:        log,
	})

	return &Container{
		Analyzer: analyzer,
		Store:    store,
		Bus:      bus,
	}, nil
}
