package model

import (
	"time"
)

const (
	JobStatusPending    = "PENDING"
	JobStatusProcessing = "PROCESSING"
	JobStatusCompleted  = "COMPLETED"
	JobStatusFailed     = "FAILED"
)

const (
	JobTypePayout       = "payout"
	JobTypeCacheCleanup = "cache_cleanup"
)

// Job is one unit of deferred work polled by the queue worker.
// Delivery is at-least-once, so handlers must be idempotent.
type Job struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	JobType   string     `gorm:"type:varchar(32);index;not null" json:"job_type"`
	Status    string     `gorm:"type:varchar(20);index;not null;default:PENDING" json:"status"`
	Payload   string     `gorm:"type:text" json:"payload"` // JSON, handler specific
	Attempts  int        `gorm:"not null;default:0" json:"attempts"`
	LastError string     `gorm:"type:varchar(512)" json:"last_error"`
	RunAt     *time.Time `gorm:"index" json:"run_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Job) TableName() string {
	return "job"
}

// PayoutPayload is the payload for JobTypePayout.
type PayoutPayload struct {
	TaskID int64 `json:"task_id"`
}
