package model

import (
	"time"

	"gorm.io/gorm"
)

// Memory topics
const (
	TopicJournal      = "journal_topic"
	TopicConversation = "email"
)

// Memory represents a remembered fact about a user, indexed by keywords
// for relevance lookups when composing conversational replies
type Memory struct {
	ID             uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID         uint           `json:"user_id" gorm:"not null;index"`
	Content        string         `json:"content" gorm:"type:text;not null"`
	Keywords       string         `json:"keywords" gorm:"type:varchar(500);index"`
	Topic          string         `json:"topic" gorm:"type:varchar(50)"`
	Frequency      int            `json:"frequency" gorm:"default:1"`
	LastAccessedAt time.Time      `json:"last_accessed_at"`
	CreatedAt      time.Time      `json:"created_at"`
	DeletedAt      gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for Memory
func (Memory) TableName() string {
	return "memories"
}
