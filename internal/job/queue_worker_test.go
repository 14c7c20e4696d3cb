package job

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"reviewflow/internal/config"
	"reviewflow/internal/model"
	"reviewflow/internal/repository"
	"reviewflow/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newWorker(t *testing.T) (*QueueWorker, *gorm.DB) {
	db := testutil.NewTestDB(t, &model.Job{})
	cfg := &config.Config{
		Business: config.BusinessConfig{
			WorkerMaxJobs:    10,
			JobRetentionDays: 7,
		},
	}
	return NewQueueWorker(db, nil, cfg), db
}

func enqueueJobs(t *testing.T, db *gorm.DB, jobType string, n int) {
	t.Helper()
	repo := repository.NewJobRepository(db)
	for i := 0; i < n; i++ {
		job := &model.Job{
			JobType: jobType,
			Status:  model.JobStatusPending,
			Payload: fmt.Sprintf(`{"n":%d}`, i),
		}
		require.NoError(t, repo.Enqueue(context.Background(), nil, job))
	}
}

func jobStatusCounts(t *testing.T, db *gorm.DB) map[string]int64 {
	t.Helper()
	counts := make(map[string]int64)
	for _, status := range []string{model.JobStatusPending, model.JobStatusProcessing, model.JobStatusCompleted, model.JobStatusFailed} {
		var n int64
		require.NoError(t, db.Model(&model.Job{}).Where("status = ?", status).Count(&n).Error)
		counts[status] = n
	}
	return counts
}

func TestRunOnceCapsBatchSize(t *testing.T) {
	worker, db := newWorker(t)
	worker.Register("noop", func(ctx context.Context, payload string) error { return nil })

	enqueueJobs(t, db, "noop", 15)

	processed, err := worker.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 10, processed)

	counts := jobStatusCounts(t, db)
	require.Equal(t, int64(10), counts[model.JobStatusCompleted])
	require.Equal(t, int64(5), counts[model.JobStatusPending])

	// the remainder drains on the next pass
	processed, err = worker.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, processed)

	counts = jobStatusCounts(t, db)
	require.Equal(t, int64(15), counts[model.JobStatusCompleted])
}

func TestRunOnceIsolatesFailures(t *testing.T) {
	worker, db := newWorker(t)
	worker.Register("ok", func(ctx context.Context, payload string) error { return nil })
	worker.Register("boom", func(ctx context.Context, payload string) error {
		return errors.New("handler exploded")
	})

	enqueueJobs(t, db, "ok", 2)
	enqueueJobs(t, db, "boom", 1)
	enqueueJobs(t, db, "ok", 2)

	processed, err := worker.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, processed)

	counts := jobStatusCounts(t, db)
	require.Equal(t, int64(4), counts[model.JobStatusCompleted])
	require.Equal(t, int64(1), counts[model.JobStatusFailed])

	var failed model.Job
	require.NoError(t, db.Where("status = ?", model.JobStatusFailed).First(&failed).Error)
	require.Contains(t, failed.LastError, "handler exploded")
	require.Equal(t, 1, failed.Attempts)
}

func TestRunOnceRecoversPanics(t *testing.T) {
	worker, db := newWorker(t)
	worker.Register("panics", func(ctx context.Context, payload string) error {
		panic("boom")
	})

	enqueueJobs(t, db, "panics", 1)
	enqueueJobs(t, db, "panics", 1)

	processed, err := worker.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, processed)

	counts := jobStatusCounts(t, db)
	require.Equal(t, int64(2), counts[model.JobStatusFailed])
}

func TestRunOnceFailsUnknownJobType(t *testing.T) {
	worker, db := newWorker(t)

	enqueueJobs(t, db, "no_such_type", 1)

	_, err := worker.RunOnce(context.Background())
	require.NoError(t, err)

	counts := jobStatusCounts(t, db)
	require.Equal(t, int64(1), counts[model.JobStatusFailed])
}

func TestRunOnceSkipsFutureJobs(t *testing.T) {
	worker, db := newWorker(t)
	worker.Register("noop", func(ctx context.Context, payload string) error { return nil })

	future := time.Now().Add(time.Hour)
	job := &model.Job{
		JobType: "noop",
		Status:  model.JobStatusPending,
		Payload: "{}",
		RunAt:   &future,
	}
	require.NoError(t, db.Create(job).Error)

	processed, err := worker.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, processed)

	counts := jobStatusCounts(t, db)
	require.Equal(t, int64(1), counts[model.JobStatusPending])
}

func TestCleanupPurgesOldFinishedJobs(t *testing.T) {
	worker, db := newWorker(t)
	worker.Register("noop", func(ctx context.Context, payload string) error { return nil })

	old := time.Now().AddDate(0, 0, -30)
	stale := &model.Job{JobType: "noop", Status: model.JobStatusCompleted, Payload: "{}"}
	require.NoError(t, db.Create(stale).Error)
	require.NoError(t, db.Model(stale).UpdateColumn("updated_at", old).Error)

	_, err := worker.RunOnce(context.Background())
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&model.Job{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}
