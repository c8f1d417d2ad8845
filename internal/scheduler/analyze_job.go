package scheduler

import (
	"context"
	"time"

	"github.com/dynconv/analyzer/internal/modules/analysis"
)

// analyzeTimeout bounds one scheduled run, dominated by the external
// reference-data fetch.
const analyzeTimeout = 10 * time.Minute

// AnalyzeJob runs the full analysis pipeline on a schedule.
type AnalyzeJob struct {
	analyzer *analysis.Analyzer
}

// NewAnalyzeJob creates a new scheduled analysis job.
func NewAnalyzeJob(analyzer *analysis.Analyzer) *AnalyzeJob {
	return &AnalyzeJob{analyzer: analyzer}
}

// Name returns the job name.
func (j *AnalyzeJob) Name() string { return "analyze" }

// Run executes one analysis run.
func (j *AnalyzeJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	_, err := j.analyzer.Run(ctx)
	return err
}
