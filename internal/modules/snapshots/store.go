// Package snapshots persists finished analysis reports so the report API can
// serve past runs without recomputing them.
package snapshots

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/dynconv/analyzer/internal/database"
	"github.com/dynconv/analyzer/internal/modules/analysis"
)

// RunInfo summarizes one stored run for listings.
type RunInfo struct {
	RunID      string    `json:"run_id"`
	CreatedAt  time.Time `json:"created_at"`
	Holdings   int       `json:"holdings"`
	FundRating string    `json:"fund_rating"`
}

// Store is the sqlite-backed snapshot repository. The headline columns are
// queryable; the full report is kept as a msgpack blob.
type Store struct {
	db  *database.DB
	log zerolog.Logger
}

// NewStore creates the store and its schema.
func NewStore(db *database.DB, log zerolog.Logger) (*Store, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS analysis_runs (
			run_id      TEXT PRIMARY KEY,
			created_at  INTEGER NOT NULL,
			holdings    INTEGER NOT NULL,
			fund_rating TEXT NOT NULL,
			report      BLOB NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis_runs table: %w", err)
	}
	return &Store{
		db:  db,
		log: log.With().Str("service", "snapshots").Logger(),
	}, nil
}

// Save persists a finished report.
func (s *Store) Save(report *analysis.Report) error {
	blob, err := msgpack.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO analysis_runs (run_id, created_at, holdings, fund_rating, report) VALUES (?, ?, ?, ?, ?)",
		report.RunID,
		report.CreatedAt.Unix(),
		report.Results.Summary.Holdings,
		report.Results.Summary.FundRating,
		blob,
	)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	s.log.Info().Str("run_id", report.RunID).Int("bytes", len(blob)).Msg("Report snapshot saved")
	return nil
}

// Get returns one stored report by run ID.
func (s *Store) Get(runID string) (*analysis.Report, error) {
	var blob []byte
	err := s.db.QueryRow("SELECT report FROM analysis_runs WHERE run_id = ?", runID).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	return decode(blob)
}

// Latest returns the most recent stored report, or nil when none exist.
func (s *Store) Latest() (*analysis.Report, error) {
	var blob []byte
	err := s.db.QueryRow("SELECT report FROM analysis_runs ORDER BY created_at DESC LIMIT 1").Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest report: %w", err)
	}
	return decode(blob)
}

// List returns run summaries, newest first.
func (s *Store) List(limit int) ([]RunInfo, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(
		"SELECT run_id, created_at, holdings, fund_rating FROM analysis_runs ORDER BY created_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var info RunInfo
		var createdAt int64
		if err := rows.Scan(&info.RunID, &createdAt, &info.Holdings, &info.FundRating); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		info.CreatedAt = time.Unix(createdAt, 0).UTC()
		runs = append(runs, info)
	}
	return runs, rows.Err()
}

func decode(blob []byte) (*analysis.Report, error) {
	var report analysis.Report
	if err := msgpack.Unmarshal(blob, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &report, nil
}
