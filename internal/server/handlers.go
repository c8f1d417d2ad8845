package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/dynconv/analyzer/internal/modules/snapshots"
)

// handleHealth reports service and host health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"service": "analyzer",
	}

	if cpuPercent, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(cpuPercent) > 0 {
		response["cpu_percent"] = cpuPercent[0]
	}
	if memStat, err := mem.VirtualMemory(); err == nil {
		response["mem_percent"] = memStat.UsedPercent
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleLatestReport returns the most recent run's summary tables.
func (s *Server) handleLatestReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.store.Latest()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if report == nil {
		s.writeError(w, http.StatusNotFound, "no analysis runs yet")
		return
	}
	s.writeJSON(w, http.StatusOK, report.Results)
}

// handleReport returns one run's summary tables by ID.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	report, err := s.store.Get(runID)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, report.Results)
}

// handlePositions returns the latest run's enriched row-level table.
func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	report, err := s.store.Latest()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if report == nil {
		s.writeError(w, http.StatusNotFound, "no analysis runs yet")
		return
	}
	s.writeJSON(w, http.StatusOK, report.Positions)
}

// handleRuns lists stored runs, newest first.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	runs, err := s.store.List(limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []snapshots.RunInfo{}
	}
	s.writeJSON(w, http.StatusOK, runs)
}

// handleAnalyze triggers a new analysis run in the background. Progress is
// observable on the events stream.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := s.analyzer.Run(ctx); err != nil {
			s.log.Error().Err(err).Msg("Triggered analysis run failed")
		}
	}()

	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes a JSON error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
