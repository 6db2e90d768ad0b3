// Package queue implements the job queue abstraction over two
// interchangeable backends: a durable postgres backend supporting many
// concurrent workers, and a single-process in-memory fallback.
package queue

import (
	"context"
	"sync"
	"time"

	"go.trai.ch/loom/internal/adapters/ident"
	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Queue = (*Memory)(nil)

// Memory is the single-process in-memory backend. Jobs are dispatched by a
// single cooperative goroutine, so execution is serialized within the
// process. All state is lost on restart.
type Memory struct {
	name     string
	defaults domain.QueueDefaults
	ids      *ident.Generator
	log      ports.Logger

	mu          sync.Mutex
	jobs        map[string]*domain.Job
	meta        map[string]domain.JobOptions
	waiting     []string
	timers      map[string]*time.Timer
	handler     ports.Handler
	dispatching bool
	closed      bool
}

// NewMemory creates an in-memory queue with the given per-queue defaults.
func NewMemory(name string, defaults domain.QueueDefaults, ids *ident.Generator, log ports.Logger) *Memory {
	return &Memory{
		name:     name,
		defaults: defaults,
		ids:      ids,
		log:      log,
		jobs:     make(map[string]*domain.Job),
		meta:     make(map[string]domain.JobOptions),
		timers:   make(map[string]*time.Timer),
	}
}

// Name returns the queue name.
func (m *Memory) Name() string {
	return m.name
}

// Add submits a job, merging the queue defaults with the given options.
func (m *Memory) Add(_ context.Context, payload []byte, opts domain.JobOptions) (*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, zerr.With(domain.ErrQueueClosed, "queue", m.name)
	}

	opts = m.defaults.Resolve(opts)

	id := opts.JobID
	if id == "" {
		id = m.ids.NewID()
	}
	if _, exists := m.jobs[id]; exists {
		return nil, zerr.With(zerr.With(zerr.New("job id already in use"), "job_id", id), "queue", m.name)
	}

	now := time.Now()
	job := &domain.Job{
		ID:          id,
		Queue:       m.name,
		Payload:     payload,
		State:       domain.JobWaiting,
		MaxAttempts: opts.Attempts,
		CreatedAt:   now,
		RunAt:       now,
	}
	m.jobs[id] = job
	m.meta[id] = opts

	if opts.Delay > 0 {
		job.State = domain.JobDelayed
		job.RunAt = now.Add(opts.Delay)
		m.scheduleLocked(id, opts.Delay, m.promote)
	} else {
		m.waiting = append(m.waiting, id)
		m.kickLocked()
	}

	return snapshot(job), nil
}

// Process registers the single handler and starts dispatching queued work.
func (m *Memory) Process(h ports.Handler) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return zerr.With(domain.ErrQueueClosed, "queue", m.name)
	}
	if m.handler != nil {
		return zerr.With(domain.ErrHandlerRegistered, "queue", m.name)
	}
	m.handler = h
	m.kickLocked()
	return nil
}

// GetJob returns a snapshot of the job with the given id.
func (m *Memory) GetJob(_ context.Context, id string) (*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, zerr.With(zerr.With(domain.ErrJobNotFound, "job_id", id), "queue", m.name)
	}
	return snapshot(job), nil
}

// Counts returns the number of jobs per state.
func (m *Memory) Counts(_ context.Context) (domain.QueueCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var counts domain.QueueCounts
	for _, job := range m.jobs {
		switch job.State {
		case domain.JobWaiting:
			counts.Waiting++
		case domain.JobActive:
			counts.Active++
		case domain.JobCompleted:
			counts.Completed++
		case domain.JobFailed:
			counts.Failed++
		case domain.JobDelayed:
			counts.Delayed++
		}
	}
	return counts, nil
}

// Close stops accepting new work, detaches the handler, and cancels pending
// timers. Jobs already handed to the handler run to completion.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.handler = nil
	for id, timer := range m.timers {
		timer.Stop()
		delete(m.timers, id)
	}
	return nil
}

// kickLocked starts the dispatch goroutine if work and a handler are
// present. Caller must hold m.mu.
func (m *Memory) kickLocked() {
	if m.handler == nil || m.dispatching || m.closed || len(m.waiting) == 0 {
		return
	}
	m.dispatching = true
	go m.dispatch()
}

// dispatch runs queued jobs one at a time until the queue drains.
func (m *Memory) dispatch() {
	for {
		m.mu.Lock()
		if m.closed || m.handler == nil || len(m.waiting) == 0 {
			m.dispatching = false
			m.mu.Unlock()
			return
		}

		id := m.waiting[0]
		m.waiting = m.waiting[1:]
		job := m.jobs[id]
		handler := m.handler

		job.State = domain.JobActive
		job.AttemptsMade++
		started := time.Now()
		job.ProcessedAt = &started
		attempt := snapshot(job)
		m.mu.Unlock()

		progress := func(percent int) {
			m.mu.Lock()
			defer m.mu.Unlock()
			job.Progress = clampPercent(percent)
		}

		result, err := handler(context.Background(), attempt, progress)
		m.settle(id, result, err)
	}
}

// settle applies the handler outcome to the job record.
func (m *Memory) settle(id string, result []byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job := m.jobs[id]
	opts := m.meta[id]
	now := time.Now()

	if err == nil {
		job.State = domain.JobCompleted
		job.Result = result
		job.Progress = 100
		job.FinishedAt = &now
		m.scheduleLocked(id, opts.CompletedRetention, m.purge)
		return
	}

	job.FailedReason = err.Error()
	if job.AttemptsMade < job.MaxAttempts {
		delay := domain.BackoffDelay(opts.BackoffBase, job.AttemptsMade)
		job.State = domain.JobDelayed
		job.RunAt = now.Add(delay)
		m.scheduleLocked(id, delay, m.promote)
		return
	}

	job.State = domain.JobFailed
	job.FinishedAt = &now
	m.scheduleLocked(id, opts.FailedRetention, m.purge)
}

// promote moves a delayed job back to the waiting list.
func (m *Memory) promote(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.timers, id)
	if m.closed {
		return
	}
	job, ok := m.jobs[id]
	if !ok || job.State != domain.JobDelayed {
		return
	}
	job.State = domain.JobWaiting
	m.waiting = append(m.waiting, id)
	m.kickLocked()
}

// purge drops a terminal job after its retention window.
func (m *Memory) purge(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.timers, id)
	if job, ok := m.jobs[id]; ok && job.State.Terminal() {
		delete(m.jobs, id)
		delete(m.meta, id)
	}
}

// scheduleLocked arms a timer for the job. Caller must hold m.mu.
func (m *Memory) scheduleLocked(id string, d time.Duration, fn func(string)) {
	if m.closed {
		return
	}
	if prev, ok := m.timers[id]; ok {
		prev.Stop()
	}
	m.timers[id] = time.AfterFunc(d, func() { fn(id) })
}

func snapshot(job *domain.Job) *domain.Job {
	copied := *job
	if job.ProcessedAt != nil {
		t := *job.ProcessedAt
		copied.ProcessedAt = &t
	}
	if job.FinishedAt != nil {
		t := *job.FinishedAt
		copied.FinishedAt = &t
	}
	return &copied
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
