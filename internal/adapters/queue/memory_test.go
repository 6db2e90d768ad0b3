package queue_test

import (
	"context"
	"io"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"
	"go.trai.ch/loom/internal/adapters/ident"
	"go.trai.ch/loom/internal/adapters/logger"
	"go.trai.ch/loom/internal/adapters/queue"
	"go.trai.ch/loom/internal/core/domain"
	"go.trai.ch/loom/internal/core/ports"
	"go.trai.ch/zerr"
)

func newMemoryQueue(t *testing.T, defaults domain.QueueDefaults) *queue.Memory {
	t.Helper()
	ids, err := ident.New(1)
	require.NoError(t, err)
	return queue.NewMemory("test", defaults, ids, logger.NewWithWriter(io.Discard))
}

func TestMemoryQueueCompletesJob(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		q := newMemoryQueue(t, domain.StandardQueueDefaults())
		defer q.Close()

		err := q.Process(func(_ context.Context, job *domain.Job, progress ports.ProgressFunc) ([]byte, error) {
			progress(50)
			return []byte(`{"ok":true}`), nil
		})
		require.NoError(t, err)

		job, err := q.Add(context.Background(), []byte(`{}`), domain.JobOptions{})
		require.NoError(t, err)
		require.Equal(t, domain.JobWaiting, job.State)

		synctest.Wait()

		got, err := q.GetJob(context.Background(), job.ID)
		require.NoError(t, err)
		require.Equal(t, domain.JobCompleted, got.State)
		require.Equal(t, 100, got.Progress)
		require.Equal(t, 1, got.AttemptsMade)
		require.JSONEq(t, `{"ok":true}`, string(got.Result))
		require.NotNil(t, got.ProcessedAt)
		require.NotNil(t, got.FinishedAt)
	})
}

func TestMemoryQueueRetriesUntilExhausted(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		defaults := domain.QueueDefaults{
			Attempts:           3,
			BackoffBase:        2 * time.Second,
			CompletedRetention: time.Hour,
			FailedRetention:    time.Hour,
		}
		q := newMemoryQueue(t, defaults)
		defer q.Close()

		attempts := 0
		require.NoError(t, q.Process(func(_ context.Context, job *domain.Job, _ ports.ProgressFunc) ([]byte, error) {
			attempts++
			return nil, zerr.New("generation backend unavailable")
		}))

		job, err := q.Add(context.Background(), []byte(`{}`), domain.JobOptions{})
		require.NoError(t, err)

		synctest.Wait()

		got, err := q.GetJob(context.Background(), job.ID)
		require.NoError(t, err)
		require.Equal(t, domain.JobDelayed, got.State)
		require.Equal(t, 1, got.AttemptsMade)

		// First retry after the base delay.
		time.Sleep(2 * time.Second)
		synctest.Wait()

		got, err = q.GetJob(context.Background(), job.ID)
		require.NoError(t, err)
		require.Equal(t, domain.JobDelayed, got.State)
		require.Equal(t, 2, got.AttemptsMade)

		// Second retry after the doubled delay.
		time.Sleep(4 * time.Second)
		synctest.Wait()

		got, err = q.GetJob(context.Background(), job.ID)
		require.NoError(t, err)
		require.Equal(t, domain.JobFailed, got.State)
		require.Equal(t, 3, got.AttemptsMade)
		require.Equal(t, 3, attempts)
		require.Contains(t, got.FailedReason, "generation backend unavailable")
		require.NotNil(t, got.FinishedAt)
	})
}

func TestMemoryQueueSucceedsOnRetry(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		q := newMemoryQueue(t, domain.StandardQueueDefaults())
		defer q.Close()

		attempts := 0
		require.NoError(t, q.Process(func(_ context.Context, job *domain.Job, _ ports.ProgressFunc) ([]byte, error) {
			attempts++
			if attempts < 2 {
				return nil, zerr.New("transient")
			}
			return []byte("done"), nil
		}))

		job, err := q.Add(context.Background(), []byte(`{}`), domain.JobOptions{})
		require.NoError(t, err)

		synctest.Wait()
		time.Sleep(2 * time.Second)
		synctest.Wait()

		got, err := q.GetJob(context.Background(), job.ID)
		require.NoError(t, err)
		require.Equal(t, domain.JobCompleted, got.State)
		require.Equal(t, 2, got.AttemptsMade)
		require.Equal(t, []byte("done"), got.Result)
	})
}

func TestMemoryQueueSingleAttemptFailsWithoutRetry(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		q := newMemoryQueue(t, domain.BatchQueueDefaults())
		defer q.Close()

		require.NoError(t, q.Process(func(_ context.Context, job *domain.Job, _ ports.ProgressFunc) ([]byte, error) {
			return nil, zerr.New("boom")
		}))

		job, err := q.Add(context.Background(), []byte(`{}`), domain.JobOptions{})
		require.NoError(t, err)

		synctest.Wait()

		got, err := q.GetJob(context.Background(), job.ID)
		require.NoError(t, err)
		require.Equal(t, domain.JobFailed, got.State)
		require.Equal(t, 1, got.AttemptsMade)
	})
}

func TestMemoryQueueProcessesInSubmissionOrder(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		q := newMemoryQueue(t, domain.StandardQueueDefaults())
		defer q.Close()

		var order []string
		require.NoError(t, q.Process(func(_ context.Context, job *domain.Job, _ ports.ProgressFunc) ([]byte, error) {
			order = append(order, string(job.Payload))
			return nil, nil
		}))

		for _, payload := range []string{"first", "second", "third"} {
			_, err := q.Add(context.Background(), []byte(payload), domain.JobOptions{})
			require.NoError(t, err)
		}

		synctest.Wait()
		require.Equal(t, []string{"first", "second", "third"}, order)
	})
}

func TestMemoryQueueDelayedStart(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		q := newMemoryQueue(t, domain.StandardQueueDefaults())
		defer q.Close()

		require.NoError(t, q.Process(func(_ context.Context, job *domain.Job, _ ports.ProgressFunc) ([]byte, error) {
			return nil, nil
		}))

		job, err := q.Add(context.Background(), []byte(`{}`), domain.JobOptions{Delay: 5 * time.Second})
		require.NoError(t, err)
		require.Equal(t, domain.JobDelayed, job.State)

		synctest.Wait()
		counts, err := q.Counts(context.Background())
		require.NoError(t, err)
		require.Equal(t, 1, counts.Delayed)

		time.Sleep(5 * time.Second)
		synctest.Wait()

		got, err := q.GetJob(context.Background(), job.ID)
		require.NoError(t, err)
		require.Equal(t, domain.JobCompleted, got.State)
	})
}

func TestMemoryQueuePurgesAfterRetention(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		defaults := domain.QueueDefaults{
			Attempts:           1,
			BackoffBase:        time.Second,
			CompletedRetention: time.Minute,
			FailedRetention:    time.Minute,
		}
		q := newMemoryQueue(t, defaults)
		defer q.Close()

		require.NoError(t, q.Process(func(_ context.Context, job *domain.Job, _ ports.ProgressFunc) ([]byte, error) {
			return nil, nil
		}))

		job, err := q.Add(context.Background(), []byte(`{}`), domain.JobOptions{})
		require.NoError(t, err)

		synctest.Wait()

		_, err = q.GetJob(context.Background(), job.ID)
		require.NoError(t, err)

		time.Sleep(time.Minute)
		synctest.Wait()

		_, err = q.GetJob(context.Background(), job.ID)
		require.ErrorIs(t, err, domain.ErrJobNotFound)
	})
}

func TestMemoryQueueCallerSuppliedID(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		q := newMemoryQueue(t, domain.StandardQueueDefaults())
		defer q.Close()

		job, err := q.Add(context.Background(), []byte(`{}`), domain.JobOptions{
			JobID: "generation-user-1-1756000000000",
		})
		require.NoError(t, err)
		require.Equal(t, "generation-user-1-1756000000000", job.ID)

		_, err = q.Add(context.Background(), []byte(`{}`), domain.JobOptions{
			JobID: "generation-user-1-1756000000000",
		})
		require.Error(t, err)
	})
}

func TestMemoryQueueRejectsSecondHandler(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		q := newMemoryQueue(t, domain.StandardQueueDefaults())
		defer q.Close()

		noop := func(_ context.Context, _ *domain.Job, _ ports.ProgressFunc) ([]byte, error) {
			return nil, nil
		}
		require.NoError(t, q.Process(noop))
		require.ErrorIs(t, q.Process(noop), domain.ErrHandlerRegistered)
	})
}

func TestMemoryQueueClosedRejectsWork(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		q := newMemoryQueue(t, domain.StandardQueueDefaults())
		require.NoError(t, q.Close())

		_, err := q.Add(context.Background(), []byte(`{}`), domain.JobOptions{})
		require.ErrorIs(t, err, domain.ErrQueueClosed)

		err = q.Process(func(_ context.Context, _ *domain.Job, _ ports.ProgressFunc) ([]byte, error) {
			return nil, nil
		})
		require.ErrorIs(t, err, domain.ErrQueueClosed)
	})
}

func TestMemoryQueueGetJobNotFound(t *testing.T) {
	q := newMemoryQueue(t, domain.StandardQueueDefaults())
	defer q.Close()

	_, err := q.GetJob(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrJobNotFound)
}
