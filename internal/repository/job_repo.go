package repository

import (
	"context"
	"time"

	"reviewflow/internal/model"

	"gorm.io/gorm"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Enqueue(ctx context.Context, tx *gorm.DB, job *model.Job) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(job).Error
}

// GetPendingJobs fetches up to limit runnable jobs, oldest first.
func (r *JobRepository) GetPendingJobs(ctx context.Context, limit int) ([]*model.Job, error) {
	var jobs []*model.Job
	now := time.Now()
	err := r.db.WithContext(ctx).
		Where("status = ? AND (run_at IS NULL OR run_at <= ?)", model.JobStatusPending, now).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

// MarkProcessing claims a pending job. The status guard means only one
// worker wins when several poll concurrently.
func (r *JobRepository) MarkProcessing(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Job{}).
		Where("id = ? AND status = ?", id, model.JobStatusPending).
		Updates(map[string]interface{}{
			"status":   model.JobStatusProcessing,
			"attempts": gorm.Expr("attempts + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *JobRepository) MarkCompleted(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&model.Job{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     model.JobStatusCompleted,
			"last_error": "",
		}).Error
}

func (r *JobRepository) MarkFailed(ctx context.Context, id int64, jobErr error) error {
	msg := ""
	if jobErr != nil {
		msg = jobErr.Error()
		if len(msg) > 512 {
			msg = msg[:512]
		}
	}
	return r.db.WithContext(ctx).
		Model(&model.Job{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     model.JobStatusFailed,
			"last_error": msg,
		}).Error
}

// DeleteFinishedBefore purges completed and failed jobs older than the
// cutoff. Best effort cleanup run at the end of each worker batch.
func (r *JobRepository) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status IN ? AND updated_at < ?", []string{model.JobStatusCompleted, model.JobStatusFailed}, cutoff).
		Delete(&model.Job{})
	return result.RowsAffected, result.Error
}
