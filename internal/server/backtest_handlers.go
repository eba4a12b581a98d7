package server

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/mwalczak/evergreen/internal/domain"
)

// BacktestRunner executes one full simulation over pre-loaded data.
type BacktestRunner interface {
	Run() (domain.BacktestReport, error)
}

// BacktestHandlers exposes backtest runs over HTTP.
type BacktestHandlers struct {
	log      zerolog.Logger
	runner   BacktestRunner
	registry *RunRegistry
}

// NewBacktestHandlers creates new backtest handlers
func NewBacktestHandlers(runner BacktestRunner, registry *RunRegistry, log zerolog.Logger) *BacktestHandlers {
	return &BacktestHandlers{
		log:      log.With().Str("component", "backtest_handlers").Logger(),
		runner:   runner,
		registry: registry,
	}
}

// RegisterRoutes registers backtest routes
func (h *BacktestHandlers) RegisterRoutes(r chi.Router) {
	r.Post("/backtest/run", h.HandleStartRun)
	r.Get("/backtest/runs", h.HandleListRuns)
	r.Get("/backtest/runs/{id}", h.HandleGetRun)
	r.Get("/backtest/runs/{id}/equity.csv", h.HandleEquityCurveCSV)
}

// HandleStartRun launches a backtest in the background and returns its ID
// POST /api/backtest/run
func (h *BacktestHandlers) HandleStartRun(w http.ResponseWriter, r *http.Request) {
	id := h.registry.Create()

	go func() {
		rep, err := h.runner.Run()
		if err != nil {
			h.log.Error().Err(err).Str("run_id", id).Msg("Backtest failed")
			h.registry.Fail(id, err)
			return
		}
		h.registry.Complete(id, rep)
		h.log.Info().Str("run_id", id).Msg("Backtest completed")
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(map[string]string{"id": id, "status": string(RunStatusRunning)}); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// HandleListRuns returns all runs, newest first
// GET /api/backtest/runs
func (h *BacktestHandlers) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.registry.List())
}

// HandleGetRun returns one run with its report when completed
// GET /api/backtest/runs/{id}
func (h *BacktestHandlers) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := h.registry.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, run)
}

// HandleEquityCurveCSV streams a completed run's equity curve as CSV
// GET /api/backtest/runs/{id}/equity.csv
func (h *BacktestHandlers) HandleEquityCurveCSV(w http.ResponseWriter, r *http.Request) {
	run, ok := h.registry.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	if run.Status != RunStatusCompleted || run.Report == nil {
		http.Error(w, "run has no report", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"date", "value"})
	for _, point := range run.Report.EquityCurve {
		_ = writer.Write([]string{point.Date, strconv.FormatFloat(point.Value, 'f', 2, 64)})
	}
	writer.Flush()
}

func (h *BacktestHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
