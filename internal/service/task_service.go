package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"reviewflow/internal/config"
	"reviewflow/internal/model"
	"reviewflow/internal/repository"
	"reviewflow/pkg/idgen"

	"gorm.io/gorm"
)

var (
	ErrNotAssignable = errors.New("review request is not open for assignment")
	ErrNotOwnTask    = errors.New("task belongs to another reviewer")
)

// TaskService drives the 4-step review workflow: assignment, proof
// submission and step approval.
type TaskService struct {
	db          *gorm.DB
	cfg         *config.Config
	taskRepo    *repository.TaskRepository
	requestRepo *repository.ReviewRequestRepository
	jobRepo     *repository.JobRepository
	outboxRepo  *repository.OutboxRepository
}

func NewTaskService(db *gorm.DB, cfg *config.Config) *TaskService {
	return &TaskService{
		db:          db,
		cfg:         cfg,
		taskRepo:    repository.NewTaskRepository(db),
		requestRepo: repository.NewReviewRequestRepository(db),
		jobRepo:     repository.NewJobRepository(db),
		outboxRepo:  repository.NewOutboxRepository(db),
	}
}

// Assign creates a reviewer's task with its four pending steps.
func (s *TaskService) Assign(ctx context.Context, reviewRequestID, userID int64) (*model.Task, error) {
	req, err := s.requestRepo.GetByID(ctx, reviewRequestID)
	if err != nil {
		return nil, err
	}

	if req.PaymentStatus != model.PaymentStatusPaid || req.AdminStatus != model.AdminStatusApproved {
		return nil, ErrNotAssignable
	}

	task := &model.Task{
		TaskNo:          idgen.GenerateTaskNo(),
		ReviewRequestID: &req.ID,
		UserID:          userID,
		SellerID:        req.SellerID,
		ProductLink:     req.ProductLink,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.taskRepo.Create(ctx, tx, task)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assign task: %w", err)
	}

	log.Printf("[Task] assigned: task=%s request=%s user=%d", task.TaskNo, req.RequestNo, userID)
	return task, nil
}

// SubmitStepProof records the reviewer's proof for one step. The step
// must be the next actionable one: the previous step completed, this one
// still pending.
func (s *TaskService) SubmitStepProof(ctx context.Context, userID, taskID int64, stepNumber int, orderNumber, screenshot string) error {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task.UserID != userID {
		return ErrNotOwnTask
	}

	if err := s.checkStepOrder(ctx, taskID, stepNumber); err != nil {
		return err
	}

	return s.taskRepo.SubmitStepProof(ctx, taskID, stepNumber, orderNumber, screenshot)
}

// CompleteStep is the admin approval of one checkpoint. Completion of
// step 3 refreshes the request's reviews_completed aggregate; completion
// of step 4 releases the payout through the job queue.
func (s *TaskService) CompleteStep(ctx context.Context, taskID int64, stepNumber int) error {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}

	if err := s.checkStepOrder(ctx, taskID, stepNumber); err != nil {
		return err
	}

	// load the funding request before the transaction opens
	var req *model.ReviewRequest
	if stepNumber == model.StepReviewSubmitted && task.ReviewRequestID != nil {
		req, err = s.requestRepo.GetByID(ctx, *task.ReviewRequestID)
		if err != nil {
			return err
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.taskRepo.CompleteStep(ctx, tx, taskID, stepNumber); err != nil {
			return err
		}

		switch stepNumber {
		case model.StepReviewSubmitted:
			if req == nil {
				// legacy task with no FK: nothing to aggregate against
				return nil
			}
			return s.refreshCompletedCount(ctx, tx, req)
		case model.StepReviewLive:
			return s.enqueuePayout(ctx, tx, task)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[Task] step completed: task=%s step=%d", task.TaskNo, stepNumber)
	return nil
}

// checkStepOrder rejects completion/submission out of order. Steps never
// regress; step N needs step N-1 completed first.
func (s *TaskService) checkStepOrder(ctx context.Context, taskID int64, stepNumber int) error {
	if stepNumber < model.StepOrderPlaced || stepNumber > model.StepReviewLive {
		return fmt.Errorf("invalid step number %d", stepNumber)
	}
	if stepNumber == model.StepOrderPlaced {
		return nil
	}

	prev, err := s.taskRepo.GetStep(ctx, taskID, stepNumber-1)
	if err != nil {
		return err
	}
	if prev.Status != model.StepStatusCompleted {
		return repository.ErrStepOrder
	}
	return nil
}

// refreshCompletedCount recomputes reviews_completed from the tasks table
// (dual matching for legacy rows) and closes the request when the target
// is reached.
func (s *TaskService) refreshCompletedCount(ctx context.Context, tx *gorm.DB, req *model.ReviewRequest) error {
	count, err := s.taskRepo.CountCompletedReviews(ctx, tx, req)
	if err != nil {
		return err
	}

	if err := s.requestRepo.SetReviewsCompleted(ctx, tx, req.ID, int(count)); err != nil {
		return err
	}

	if int(count) >= req.ReviewsNeeded && req.AdminStatus == model.AdminStatusApproved {
		if err := s.requestRepo.UpdateAdminStatus(ctx, tx, req.ID, model.AdminStatusApproved, model.AdminStatusCompleted); err != nil {
			return err
		}
	}
	return nil
}

// enqueuePayout schedules the refund+commission release for the task and
// emits the lifecycle event, both inside the step-4 transaction.
func (s *TaskService) enqueuePayout(ctx context.Context, tx *gorm.DB, task *model.Task) error {
	payload, _ := json.Marshal(model.PayoutPayload{TaskID: task.ID})
	job := &model.Job{
		JobType: model.JobTypePayout,
		Status:  model.JobStatusPending,
		Payload: string(payload),
	}
	if err := s.jobRepo.Enqueue(ctx, tx, job); err != nil {
		return fmt.Errorf("failed to enqueue payout: %w", err)
	}

	event, _ := json.Marshal(map[string]interface{}{
		"event":        "task.review_live",
		"task_id":      task.ID,
		"task_no":      task.TaskNo,
		"user_id":      task.UserID,
		"seller_id":    task.SellerID,
		"completed_at": time.Now().Format(time.RFC3339),
	})
	msg := &model.OutboxMessage{
		MessageKey: task.TaskNo,
		Topic:      s.cfg.Kafka.Topic.TaskEvents,
		Payload:    string(event),
		Status:     model.OutboxStatusPending,
	}
	return s.outboxRepo.Create(ctx, tx, msg)
}

func (s *TaskService) Get(ctx context.Context, id int64) (*model.Task, error) {
	return s.taskRepo.GetByID(ctx, id)
}

type TaskView struct {
	*model.Task
	Label string `json:"label"`
}

// ListByUser returns the reviewer's tasks with their derived labels.
func (s *TaskService) ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]*TaskView, int64, error) {
	tasks, total, err := s.taskRepo.ListByUserID(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	views := make([]*TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, &TaskView{Task: t, Label: t.Label()})
	}
	return views, total, nil
}
