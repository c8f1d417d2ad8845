// Package analysis orchestrates one full analysis run:
// load -> compute metrics -> aggregate -> persist -> publish.
package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dynconv/analyzer/internal/domain"
	"github.com/dynconv/analyzer/internal/events"
	"github.com/dynconv/analyzer/internal/modules/aggregation"
	"github.com/dynconv/analyzer/internal/modules/loader"
	"github.com/dynconv/analyzer/internal/modules/metrics"
)

// Report is the output of one analysis run: the named summary tables plus
// the full enriched row-level table.
type Report struct {
	RunID      string              `json:"run_id"`
	CreatedAt  time.Time           `json:"created_at"`
	FXHedgeUSD float64             `json:"fx_hedge_usd"`
	Results    aggregation.Results `json:"results"`
	Positions  []domain.Position   `json:"positions"`
}

// SnapshotSaver persists finished reports.
type SnapshotSaver interface {
	Save(report *Report) error
}

// Publisher ships a finished report somewhere external (e.g. S3).
type Publisher interface {
	Publish(ctx context.Context, report *Report) error
}

// Analyzer wires the pipeline stages together.
type Analyzer struct {
	loader     *loader.Loader
	calculator *metrics.Calculator
	aggregator *aggregation.Aggregator
	store      SnapshotSaver // optional
	publisher  Publisher     // optional
	bus        *events.Bus   // optional
	fxHedgeUSD float64
	log        zerolog.Logger
}

// Config holds the analyzer's collaborators.
type Config struct {
	Loader     *loader.Loader
	Calculator *metrics.Calculator
	Aggregator *aggregation.Aggregator
	Store      SnapshotSaver
	Publisher  Publisher
	Bus        *events.Bus
	FXHedgeUSD float64
	Log        zerolog.Logger
}

// New creates a new analyzer.
func New(cfg Config) *Analyzer {
	return &Analyzer{
		loader:     cfg.Loader,
		calculator: cfg.Calculator,
		aggregator: cfg.Aggregator,
		store:      cfg.Store,
		publisher:  cfg.Publisher,
		bus:        cfg.Bus,
		fxHedgeUSD: cfg.FXHedgeUSD,
		log:        cfg.Log.With().Str("service", "analysis").Logger(),
	}
}

// Run executes one full analysis. Load and fetch failures are fatal for the
// run; data-quality problems inside the table degrade values and continue.
func (a *Analyzer) Run(ctx context.Context) (*Report, error) {
	runID := uuid.New().String()
	start := time.Now()

	a.log.Info().Str("run_id", runID).Msg("Analysis run started")
	a.publish(events.Event{Type: events.RunStarted, RunID: runID})

	complete, err := a.loader.Load(ctx)
	if err != nil {
		a.fail(runID, err)
		return nil, err
	}
	a.stage(runID, "load")

	a.calculator.Apply(complete)
	fundRating, fundOrdinal := a.calculator.FundRating(complete)
	a.stage(runID, "metrics")

	working := domain.WorkingSet(complete)
	results := a.aggregator.Aggregate(working, complete, fundRating, fundOrdinal)
	a.stage(runID, "aggregate")

	report := &Report{
		RunID:      runID,
		CreatedAt:  start,
		FXHedgeUSD: a.fxHedgeUSD,
		Results:    results,
		Positions:  complete,
	}

	if a.store != nil {
		if err := a.store.Save(report); err != nil {
			a.fail(runID, err)
			return nil, err
		}
		a.stage(runID, "persist")
	}

	if a.publisher != nil {
		// Publishing is best-effort: the report is already persisted locally.
		if err := a.publisher.Publish(ctx, report); err != nil {
			a.log.Warn().Err(err).Str("run_id", runID).Msg("Report publish failed")
		}
	}

	a.log.Info().
		Str("run_id", runID).
		Dur("elapsed", time.Since(start)).
		Int("holdings", results.Summary.Holdings).
		Str("fund_rating", fundRating).
		Msg("Analysis run completed")
	a.publish(events.Event{Type: events.RunCompleted, RunID: runID})

	return report, nil
}

func (a *Analyzer) stage(runID, stage string) {
	a.publish(events.Event{Type: events.StageCompleted, RunID: runID, Stage: stage})
}

func (a *Analyzer) fail(runID string, err error) {
	a.log.Error().Err(err).Str("run_id", runID).Msg("Analysis run failed")
	a.publish(events.Event{Type: events.RunFailed, RunID: runID, Message: err.Error()})
}

func (a *Analyzer) publish(e events.Event) {
	if a.bus != nil {
		a.bus.Publish(e)
	}
}
