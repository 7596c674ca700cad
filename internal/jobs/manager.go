// Package jobs tracks asynchronous pipeline runs triggered over HTTP.
package jobs

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is a job lifecycle state.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Job records one submitted pipeline run.
type Job struct {
	ID         string    `json:"id"`
	OperatorID int       `json:"operator_id"`
	Status     Status    `json:"status"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
}

// Manager runs submitted jobs in the background and keeps their state in
// memory. Submission is fire-and-forget from the caller's perspective;
// outcomes are queryable by job id.
type Manager struct {
	mu     sync.RWMutex
	jobs   map[string]*Job
	logger *slog.Logger
}

// NewManager creates a job manager.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		jobs:   make(map[string]*Job),
		logger: logger,
	}
}

// Submit registers a job for operatorID and starts run in the background.
// The run gets a fresh context: the job must outlive the HTTP request
// that submitted it.
func (m *Manager) Submit(operatorID int, run func(ctx context.Context) error) *Job {
	job := &Job{
		ID:         uuid.NewString(),
		OperatorID: operatorID,
		Status:     StatusPending,
		CreatedAt:  time.Now(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	go func() {
		m.setStatus(job.ID, StatusRunning, "")
		m.logger.Info("job started", "job_id", job.ID, "operator", operatorID)

		if err := run(context.Background()); err != nil {
			m.setStatus(job.ID, StatusFailed, err.Error())
			m.logger.Error("job failed", "job_id", job.ID, "operator", operatorID, "error", err)
			return
		}
		m.setStatus(job.ID, StatusDone, "")
		m.logger.Info("job finished", "job_id", job.ID, "operator", operatorID)
	}()

	return m.snapshot(job.ID)
}

// Get returns a copy of the job with the given id.
func (m *Manager) Get(id string) (*Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, false
	}
	copied := *job
	return &copied, true
}

// List returns copies of all jobs, newest first.
func (m *Manager) List() []*Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		copied := *job
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *Manager) setStatus(id string, status Status, errMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return
	}
	job.Status = status
	job.Error = errMsg
	if status == StatusDone || status == StatusFailed {
		job.FinishedAt = time.Now()
	}
}

func (m *Manager) snapshot(id string) *Job {
	job, _ := m.Get(id)
	return job
}
