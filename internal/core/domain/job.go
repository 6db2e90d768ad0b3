package domain

import "time"

// JobState is the lifecycle state of a queued job.
type JobState string

const (
	// JobWaiting indicates the job is queued and eligible to run.
	JobWaiting JobState = "waiting"
	// JobDelayed indicates the job is waiting out a retry backoff.
	JobDelayed JobState = "delayed"
	// JobActive indicates a worker is processing the job.
	JobActive JobState = "active"
	// JobCompleted indicates the handler resolved successfully. Terminal.
	JobCompleted JobState = "completed"
	// JobFailed indicates the handler failed. Terminal once attempts are
	// exhausted; re-entered into active only via the retry mechanism.
	JobFailed JobState = "failed"
)

// Terminal reports whether the state admits no further transitions.
func (s JobState) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// Job is one unit of asynchronous generation work. It is created on
// submission and mutated only by the owning queue backend.
type Job struct {
	ID      string
	Queue   string
	Payload []byte

	State        JobState
	Progress     int
	AttemptsMade int
	MaxAttempts  int

	Result       []byte
	FailedReason string

	CreatedAt   time.Time
	ProcessedAt *time.Time
	FinishedAt  *time.Time

	// RunAt is the earliest time the job may be dequeued. Set into the
	// future for delayed retries.
	RunAt time.Time
}

// JobOptions are call-site overrides merged over per-queue defaults.
// Zero values defer to the queue's defaults.
type JobOptions struct {
	// JobID is a caller-supplied id. Empty means the queue generates one.
	JobID string

	Attempts           int
	BackoffBase        time.Duration
	Delay              time.Duration
	CompletedRetention time.Duration
	FailedRetention    time.Duration
}

// QueueDefaults are the per-queue retry and retention settings.
type QueueDefaults struct {
	Attempts           int
	BackoffBase        time.Duration
	CompletedRetention time.Duration
	FailedRetention    time.Duration
}

// Resolve merges call-site options over the queue defaults.
func (d QueueDefaults) Resolve(opts JobOptions) JobOptions {
	if opts.Attempts <= 0 {
		opts.Attempts = d.Attempts
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = d.BackoffBase
	}
	if opts.CompletedRetention <= 0 {
		opts.CompletedRetention = d.CompletedRetention
	}
	if opts.FailedRetention <= 0 {
		opts.FailedRetention = d.FailedRetention
	}
	return opts
}

// GenerationQueueDefaults tunes queues backing expensive AI generation:
// few attempts, long backoff.
func GenerationQueueDefaults() QueueDefaults {
	return QueueDefaults{
		Attempts:           2,
		BackoffBase:        5 * time.Second,
		CompletedRetention: time.Hour,
		FailedRetention:    24 * time.Hour,
	}
}

// StandardQueueDefaults is the general-purpose tuning.
func StandardQueueDefaults() QueueDefaults {
	return QueueDefaults{
		Attempts:           3,
		BackoffBase:        2 * time.Second,
		CompletedRetention: time.Hour,
		FailedRetention:    24 * time.Hour,
	}
}

// BatchQueueDefaults tunes bulk queues: a single attempt, since partial
// success is tracked per item, and a longer retention window so callers can
// collect per-item outcomes late.
func BatchQueueDefaults() QueueDefaults {
	return QueueDefaults{
		Attempts:           1,
		BackoffBase:        2 * time.Second,
		CompletedRetention: 7 * 24 * time.Hour,
		FailedRetention:    7 * 24 * time.Hour,
	}
}

// BackoffDelay returns the retry delay after the given number of attempts,
// doubling from base: base after the first failure, 2*base after the second.
func BackoffDelay(base time.Duration, attemptsMade int) time.Duration {
	if attemptsMade < 1 {
		attemptsMade = 1
	}
	delay := base
	for i := 1; i < attemptsMade; i++ {
		delay *= 2
	}
	return delay
}

// QueueCounts is a point-in-time census of a queue's jobs by state.
type QueueCounts struct {
	Waiting   int
	Active    int
	Completed int
	Failed    int
	Delayed   int
}
