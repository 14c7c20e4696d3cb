package model

import (
	"time"
)

const (
	StepStatusPending   = "PENDING"
	StepStatusCompleted = "COMPLETED"
)

// Step numbers of the review workflow. The business meaning of each
// checkpoint depends on its number.
const (
	StepOrderPlaced     = 1
	StepDelivered       = 2
	StepReviewSubmitted = 3
	StepReviewLive      = 4
)

// Display labels, highest completed step wins.
const (
	TaskLabelPending         = "Pending"
	TaskLabelOrderPlaced     = "Order Placed"
	TaskLabelDelivered       = "Delivered"
	TaskLabelReviewSubmitted = "Review Submitted"
	TaskLabelRefundCompleted = "Refund Completed"
)

// Task is one reviewer's assignment against a ReviewRequest. Legacy rows
// imported from the old system have a NULL ReviewRequestID and are matched
// by (seller_id, product_link) instead.
type Task struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TaskNo          string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"task_no"`
	ReviewRequestID *int64    `gorm:"index" json:"review_request_id"`
	UserID          int64     `gorm:"index;not null" json:"user_id"`
	SellerID        int64     `gorm:"index;not null" json:"seller_id"`
	ProductLink     string    `gorm:"type:varchar(512);index;not null" json:"product_link"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Steps []TaskStep `gorm:"foreignKey:TaskID" json:"steps,omitempty"`
}

func (Task) TableName() string {
	return "task"
}

// TaskStep is one of four ordered checkpoints within a Task. Step N may
// only complete after step N-1; completion never regresses.
type TaskStep struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	TaskID      int64      `gorm:"index:idx_task_step,unique;not null" json:"task_id"`
	StepNumber  int        `gorm:"index:idx_task_step,unique;not null" json:"step_number"`
	Status      string     `gorm:"type:varchar(20);not null;default:PENDING" json:"status"`
	OrderNumber string     `gorm:"type:varchar(64)" json:"order_number"` // proof, step 1
	Screenshot  string     `gorm:"type:varchar(512)" json:"screenshot"`  // proof, all steps
	SubmittedAt *time.Time `json:"submitted_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TaskStep) TableName() string {
	return "task_step"
}

var stepLabels = map[int]string{
	StepOrderPlaced:     TaskLabelOrderPlaced,
	StepDelivered:       TaskLabelDelivered,
	StepReviewSubmitted: TaskLabelReviewSubmitted,
	StepReviewLive:      TaskLabelRefundCompleted,
}

// DeriveTaskLabel scans steps 4 down to 1 and returns the label of the
// first completed step, or "Pending" when none has completed.
func DeriveTaskLabel(steps []TaskStep) string {
	for n := StepReviewLive; n >= StepOrderPlaced; n-- {
		for _, s := range steps {
			if s.StepNumber == n && s.Status == StepStatusCompleted {
				return stepLabels[n]
			}
		}
	}
	return TaskLabelPending
}

// Label is a convenience over the preloaded Steps association.
func (t *Task) Label() string {
	return DeriveTaskLabel(t.Steps)
}
