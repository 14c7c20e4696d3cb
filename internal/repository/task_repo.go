package repository

import (
	"context"
	"errors"
	"time"

	"reviewflow/internal/model"

	"gorm.io/gorm"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrStepNotFound    = errors.New("task step not found")
	ErrStepOrder       = errors.New("previous step not completed")
	ErrStepAlreadyDone = errors.New("step already completed")
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts the task together with its four pending steps.
func (r *TaskRepository) Create(ctx context.Context, tx *gorm.DB, task *model.Task) error {
	if tx == nil {
		tx = r.db
	}
	if err := tx.WithContext(ctx).Create(task).Error; err != nil {
		return err
	}

	steps := make([]model.TaskStep, 0, model.StepReviewLive)
	for n := model.StepOrderPlaced; n <= model.StepReviewLive; n++ {
		steps = append(steps, model.TaskStep{
			TaskID:     task.ID,
			StepNumber: n,
			Status:     model.StepStatusPending,
		})
	}
	return tx.WithContext(ctx).Create(&steps).Error
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("step_number ASC") }).
		Where("id = ?", id).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) GetStep(ctx context.Context, taskID int64, stepNumber int) (*model.TaskStep, error) {
	var step model.TaskStep
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND step_number = ?", taskID, stepNumber).
		First(&step).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStepNotFound
		}
		return nil, err
	}
	return &step, nil
}

// SubmitStepProof records the reviewer's proof on a pending step.
func (r *TaskRepository) SubmitStepProof(ctx context.Context, taskID int64, stepNumber int, orderNumber, screenshot string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.TaskStep{}).
		Where("task_id = ? AND step_number = ? AND status = ?", taskID, stepNumber, model.StepStatusPending).
		Updates(map[string]interface{}{
			"order_number": orderNumber,
			"screenshot":   screenshot,
			"submitted_at": &now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStepAlreadyDone
	}
	return nil
}

// CompleteStep marks a pending step completed. The status guard in the
// WHERE clause makes completion idempotent-safe: a second attempt matches
// zero rows.
func (r *TaskRepository) CompleteStep(ctx context.Context, tx *gorm.DB, taskID int64, stepNumber int) error {
	if tx == nil {
		tx = r.db
	}
	now := time.Now()
	result := tx.WithContext(ctx).
		Model(&model.TaskStep{}).
		Where("task_id = ? AND step_number = ? AND status = ?", taskID, stepNumber, model.StepStatusPending).
		Updates(map[string]interface{}{
			"status":       model.StepStatusCompleted,
			"completed_at": &now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStepAlreadyDone
	}
	return nil
}

func (r *TaskRepository) ListByUserID(ctx context.Context, userID int64, page, pageSize int) ([]*model.Task, int64, error) {
	var tasks []*model.Task
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Task{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("step_number ASC") }).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&tasks).Error

	return tasks, total, err
}

// CountCompletedReviews counts tasks whose step 3 is completed for the
// given request. Legacy rows have no foreign key and are matched by
// (seller_id, product_link) instead; both paths live in this one query so
// the fallback can be dropped after a backfill.
func (r *TaskRepository) CountCompletedReviews(ctx context.Context, tx *gorm.DB, req *model.ReviewRequest) (int64, error) {
	if tx == nil {
		tx = r.db
	}

	var count int64
	err := tx.WithContext(ctx).
		Model(&model.TaskStep{}).
		Joins("JOIN task ON task.id = task_step.task_id").
		Where("task_step.step_number = ? AND task_step.status = ?", model.StepReviewSubmitted, model.StepStatusCompleted).
		Where("task.review_request_id = ? OR (task.review_request_id IS NULL AND task.seller_id = ? AND task.product_link = ?)",
			req.ID, req.SellerID, req.ProductLink).
		Count(&count).Error
	return count, err
}
