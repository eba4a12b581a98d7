package server

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mwalczak/evergreen/internal/domain"
	"github.com/mwalczak/evergreen/internal/modules/report"
)

// RunStatus is the lifecycle state of one backtest run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one registered backtest execution.
type Run struct {
	ID         string                 `json:"id"`
	Status     RunStatus              `json:"status"`
	StartedAt  time.Time              `json:"started_at"`
	FinishedAt *time.Time             `json:"finished_at,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Report     *domain.BacktestReport `json:"report,omitempty"`
}

// RunRegistry tracks backtest runs in memory, keyed by UUID. All methods
// are safe for concurrent use by HTTP handlers and the run goroutine.
type RunRegistry struct {
	mu   sync.RWMutex
	runs map[string]*Run
}

// NewRunRegistry creates a new run registry
func NewRunRegistry() *RunRegistry {
	return &RunRegistry{runs: make(map[string]*Run)}
}

// Create registers a new running entry and returns its ID.
func (r *RunRegistry) Create() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.New().String()
	r.runs[id] = &Run{
		ID:        id,
		Status:    RunStatusRunning,
		StartedAt: time.Now(),
	}
	return id
}

// Complete marks a run as finished with its report.
func (r *RunRegistry) Complete(id string, rep domain.BacktestReport) {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.runs[id]
	if !ok {
		return
	}
	now := time.Now()
	run.Status = RunStatusCompleted
	run.FinishedAt = &now
	run.Report = &rep
}

// Fail marks a run as failed.
func (r *RunRegistry) Fail(id string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.runs[id]
	if !ok {
		return
	}
	now := time.Now()
	run.Status = RunStatusFailed
	run.FinishedAt = &now
	run.Error = err.Error()
}

// Get returns one run by ID.
func (r *RunRegistry) Get(id string) (*Run, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return nil, false
	}
	copied := *run
	return &copied, true
}

// List returns all runs, newest first.
func (r *RunRegistry) List() []*Run {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Run, 0, len(r.runs))
	for _, run := range r.runs {
		copied := *run
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}

// LatestSummary renders the most recently completed run for the weekly
// report job. Returns false when no run has completed yet.
func (r *RunRegistry) LatestSummary() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *Run
	for _, run := range r.runs {
		if run.Status != RunStatusCompleted || run.Report == nil {
			continue
		}
		if latest == nil || run.StartedAt.After(latest.StartedAt) {
			latest = run
		}
	}
	if latest == nil {
		return "", false
	}
	return report.Summary(*latest.Report), true
}
