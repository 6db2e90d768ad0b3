package queue

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.trai.ch/loom/internal/adapters/ident"
	"go.trai.ch/loom/internal/adapters/postgres"
	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

var _ ports.Queue = (*Postgres)(nil)

// purgeInterval is how often terminal jobs past retention are swept.
const purgeInterval = time.Minute

// Postgres is the durable backend. Multiple worker processes may consume
// from the same queue; the claim statement's row lock is the only mutual
// exclusion, so handlers must be idempotent or externally deduplicated.
type Postgres struct {
	client       *postgres.Client
	name         string
	defaults     domain.QueueDefaults
	ids          *ident.Generator
	log          ports.Logger
	workers      int
	pollInterval time.Duration

	mu      sync.Mutex
	handler ports.Handler
	cancel  context.CancelFunc
	group   *errgroup.Group
	closed  bool
}

// NewPostgres creates a durable queue with the given per-queue defaults.
func NewPostgres(
	client *postgres.Client,
	name string,
	defaults domain.QueueDefaults,
	ids *ident.Generator,
	log ports.Logger,
	workers int,
	pollInterval time.Duration,
) *Postgres {
	if workers <= 0 {
		workers = 1
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Postgres{
		client:       client,
		name:         name,
		defaults:     defaults,
		ids:          ids,
		log:          log,
		workers:      workers,
		pollInterval: pollInterval,
	}
}

// Name returns the queue name.
func (p *Postgres) Name() string {
	return p.name
}

// Add submits a job, merging the queue defaults with the given options.
func (p *Postgres) Add(ctx context.Context, payload []byte, opts domain.JobOptions) (*domain.Job, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, zerr.With(domain.ErrQueueClosed, "queue", p.name)
	}

	opts = p.defaults.Resolve(opts)

	id := opts.JobID
	if id == "" {
		id = p.ids.NewID()
	}

	now := time.Now()
	job := &domain.Job{
		ID:          id,
		Queue:       p.name,
		Payload:     payload,
		State:       domain.JobWaiting,
		MaxAttempts: opts.Attempts,
		CreatedAt:   now,
		RunAt:       now,
	}
	if opts.Delay > 0 {
		job.State = domain.JobDelayed
		job.RunAt = now.Add(opts.Delay)
	}

	_, err := p.client.Pool.Exec(ctx,
		`INSERT INTO loom_jobs
		   (id, queue, payload, state, max_attempts, backoff_base_ms,
		    completed_retention_ms, failed_retention_ms, created_at, run_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		job.ID, job.Queue, job.Payload, string(job.State), job.MaxAttempts,
		opts.BackoffBase.Milliseconds(),
		opts.CompletedRetention.Milliseconds(), opts.FailedRetention.Milliseconds(),
		job.CreatedAt, job.RunAt)
	if err != nil {
		return nil, zerr.With(zerr.With(zerr.Wrap(err, "failed to insert job"), "job_id", id), "queue", p.name)
	}
	return job, nil
}

// Process registers the single handler and starts the worker pool and the
// retention sweeper.
func (p *Postgres) Process(h ports.Handler) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return zerr.With(domain.ErrQueueClosed, "queue", p.name)
	}
	if p.handler != nil {
		return zerr.With(domain.ErrHandlerRegistered, "queue", p.name)
	}
	p.handler = h

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	g, gctx := errgroup.WithContext(ctx)
	p.group = g
	for i := 0; i < p.workers; i++ {
		g.Go(func() error {
			p.workLoop(gctx)
			return nil
		})
	}
	g.Go(func() error {
		p.purgeLoop(gctx)
		return nil
	})
	return nil
}

func (p *Postgres) workLoop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		claimed, err := p.claim(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.log.Error(err, "queue", p.name)
		}
		if claimed == nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.pollInterval):
			}
			continue
		}
		p.run(ctx, claimed)
	}
}

// claimed carries the row fields needed to settle an attempt.
type claimedJob struct {
	job         *domain.Job
	backoffBase time.Duration
}

// claim atomically transitions the oldest eligible job to active. The
// SKIP LOCKED subquery lets concurrent workers pass over rows another
// worker is claiming.
func (p *Postgres) claim(ctx context.Context) (*claimedJob, error) {
	var (
		job       domain.Job
		state     string
		backoffMS int64
		processed time.Time
	)
	err := p.client.Pool.QueryRow(ctx,
		`UPDATE loom_jobs
		 SET state = 'active', attempts_made = attempts_made + 1, processed_at = now()
		 WHERE id = (
			SELECT id FROM loom_jobs
			WHERE queue = $1 AND state IN ('waiting', 'delayed') AND run_at <= now()
			ORDER BY created_at
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		 )
		 RETURNING id, queue, payload, state, progress, attempts_made, max_attempts,
		           backoff_base_ms, created_at, processed_at, run_at`,
		p.name,
	).Scan(&job.ID, &job.Queue, &job.Payload, &state, &job.Progress,
		&job.AttemptsMade, &job.MaxAttempts, &backoffMS,
		&job.CreatedAt, &processed, &job.RunAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, zerr.Wrap(err, "failed to claim job")
	}

	job.State = domain.JobState(state)
	job.ProcessedAt = &processed
	return &claimedJob{
		job:         &job,
		backoffBase: time.Duration(backoffMS) * time.Millisecond,
	}, nil
}

func (p *Postgres) run(ctx context.Context, claimed *claimedJob) {
	job := claimed.job

	progress := func(percent int) {
		_, err := p.client.Pool.Exec(ctx,
			`UPDATE loom_jobs SET progress = $2 WHERE id = $1`,
			job.ID, clampPercent(percent))
		if err != nil {
			p.log.Warn("progress update failed", "job_id", job.ID, "error", err)
		}
	}

	result, err := p.handler(ctx, snapshot(job), progress)
	if err == nil {
		p.complete(ctx, job.ID, result)
		return
	}
	p.fail(ctx, claimed, err)
}

func (p *Postgres) complete(ctx context.Context, id string, result []byte) {
	_, err := p.client.Pool.Exec(ctx,
		`UPDATE loom_jobs
		 SET state = 'completed', result = $2, progress = 100, finished_at = now()
		 WHERE id = $1`,
		id, result)
	if err != nil {
		p.log.Error(zerr.Wrap(err, "failed to mark job completed"), "job_id", id)
	}
}

func (p *Postgres) fail(ctx context.Context, claimed *claimedJob, handlerErr error) {
	job := claimed.job
	reason := handlerErr.Error()

	if job.AttemptsMade < job.MaxAttempts {
		delay := domain.BackoffDelay(claimed.backoffBase, job.AttemptsMade)
		_, err := p.client.Pool.Exec(ctx,
			`UPDATE loom_jobs
			 SET state = 'delayed', failed_reason = $2, run_at = now() + make_interval(secs => $3)
			 WHERE id = $1`,
			job.ID, reason, delay.Seconds())
		if err != nil {
			p.log.Error(zerr.Wrap(err, "failed to schedule retry"), "job_id", job.ID)
		}
		return
	}

	_, err := p.client.Pool.Exec(ctx,
		`UPDATE loom_jobs
		 SET state = 'failed', failed_reason = $2, finished_at = now()
		 WHERE id = $1`,
		job.ID, reason)
	if err != nil {
		p.log.Error(zerr.Wrap(err, "failed to mark job failed"), "job_id", job.ID)
	}
}

// purgeLoop sweeps terminal jobs past their retention window.
func (p *Postgres) purgeLoop(ctx context.Context) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, err := p.client.Pool.Exec(ctx,
				`DELETE FROM loom_jobs
				 WHERE queue = $1
				   AND (
					(state = 'completed' AND finished_at < now() - make_interval(secs => completed_retention_ms / 1000.0))
					OR
					(state = 'failed' AND finished_at < now() - make_interval(secs => failed_retention_ms / 1000.0))
				   )`,
				p.name)
			if err != nil && ctx.Err() == nil {
				p.log.Error(zerr.Wrap(err, "retention sweep failed"), "queue", p.name)
			}
		}
	}
}

// GetJob returns a snapshot of the job with the given id.
func (p *Postgres) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	var (
		job       domain.Job
		state     string
		processed *time.Time
		finished  *time.Time
	)
	err := p.client.Pool.QueryRow(ctx,
		`SELECT id, queue, payload, state, progress, attempts_made, max_attempts,
		        result, failed_reason, created_at, processed_at, finished_at, run_at
		 FROM loom_jobs WHERE id = $1`,
		id,
	).Scan(&job.ID, &job.Queue, &job.Payload, &state, &job.Progress,
		&job.AttemptsMade, &job.MaxAttempts, &job.Result, &job.FailedReason,
		&job.CreatedAt, &processed, &finished, &job.RunAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, zerr.With(zerr.With(domain.ErrJobNotFound, "job_id", id), "queue", p.name)
		}
		return nil, zerr.Wrap(err, "failed to read job")
	}
	job.State = domain.JobState(state)
	job.ProcessedAt = processed
	job.FinishedAt = finished
	return &job, nil
}

// Counts returns the number of jobs per state.
func (p *Postgres) Counts(ctx context.Context) (domain.QueueCounts, error) {
	rows, err := p.client.Pool.Query(ctx,
		`SELECT state, COUNT(*) FROM loom_jobs WHERE queue = $1 GROUP BY state`,
		p.name)
	if err != nil {
		return domain.QueueCounts{}, zerr.Wrap(err, "failed to count jobs")
	}
	defer rows.Close()

	var counts domain.QueueCounts
	for rows.Next() {
		var (
			state string
			n     int
		)
		if err := rows.Scan(&state, &n); err != nil {
			return domain.QueueCounts{}, zerr.Wrap(err, "failed to scan job count")
		}
		switch domain.JobState(state) {
		case domain.JobWaiting:
			counts.Waiting = n
		case domain.JobActive:
			counts.Active = n
		case domain.JobCompleted:
			counts.Completed = n
		case domain.JobFailed:
			counts.Failed = n
		case domain.JobDelayed:
			counts.Delayed = n
		}
	}
	return counts, rows.Err()
}

// Close stops the worker pool and detaches the handler.
func (p *Postgres) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	cancel := p.cancel
	group := p.group
	p.handler = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if group != nil {
		_ = group.Wait()
	}
	return nil
}
