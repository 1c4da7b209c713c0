package model

import (
	"time"

	"gorm.io/gorm"
)

// Queue item statuses. Transitions are monotone: pending -> processing ->
// completed, or pending -> processing -> pending (retry) -> ... -> failed.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// QueueItem represents one inbound payload awaiting processing
type QueueItem struct {
	ID              uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	Payload         []byte         `json:"payload" gorm:"type:longtext;not null"`
	Status          string         `json:"status" gorm:"type:varchar(50);not null;default:pending;index"`
	ProcessAttempts int            `json:"process_attempts" gorm:"not null;default:0"`
	LastError       string         `json:"last_error" gorm:"type:text"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for QueueItem
func (QueueItem) TableName() string {
	return "email_queue"
}
