package handler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yumyai/ggderep/pkg/derep"
	"github.com/yumyai/ggderep/pkg/derr"
)

// JobStatus represents the lifecycle of a dereplication request.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Job keeps track of a dereplication run started through the API.
type Job struct {
	ID        string        `json:"job_id"`
	Status    JobStatus     `json:"status"`
	Result    *derep.Result `json:"result,omitempty"`
	Error     string        `json:"error,omitempty"`
	ErrorKind string        `json:"error_kind,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// JobManager stores job states indexed by job ID. Jobs run on a context
// that Shutdown cancels.
type JobManager struct {
	mu   sync.RWMutex
	jobs map[string]*Job
	wg   sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

func NewJobManager() *JobManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &JobManager{
		jobs:   make(map[string]*Job),
		ctx:    ctx,
		cancel: cancel,
	}
}

// NewJob registers a queued job.
func (m *JobManager) NewJob() Job {
	now := time.Now()
	job := &Job{
		ID:        uuid.New().String(),
		Status:    JobQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()
	return *job
}

// Go runs fn in the background and tracks it for Wait.
func (m *JobManager) Go(fn func(ctx context.Context)) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		fn(m.ctx)
	}()
}

// Wait blocks until every job started with Go has returned.
func (m *JobManager) Wait() {
	m.wg.Wait()
}

// Shutdown waits for running jobs until ctx is done, then cancels them and
// waits for them to return. It returns ctx.Err() when jobs were cancelled.
func (m *JobManager) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.cancel()
		return nil
	case <-ctx.Done():
		m.cancel()
		<-done
		return ctx.Err()
	}
}

func (m *JobManager) SetRunning(jobID string) {
	m.updateJob(jobID, func(job *Job) {
		job.Status = JobRunning
	})
}

// CompleteJob stores the run result and marks the job complete.
func (m *JobManager) CompleteJob(jobID string, result *derep.Result) {
	m.updateJob(jobID, func(job *Job) {
		job.Status = JobCompleted
		job.Result = result
	})
}

// FailJob records a failure and its error kind when the error is classified.
func (m *JobManager) FailJob(jobID string, err error) {
	m.updateJob(jobID, func(job *Job) {
		job.Status = JobFailed
		job.Error = err.Error()
		if kind, ok := derr.KindOf(err); ok {
			job.ErrorKind = kind.String()
		}
	})
}

// GetJob returns a copy of the job.
func (m *JobManager) GetJob(jobID string) (Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

func (m *JobManager) updateJob(jobID string, update func(job *Job)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return
	}

	update(job)
	job.UpdatedAt = time.Now()
}
