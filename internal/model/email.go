package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Email directions
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Moods recognized by the classifier
const (
	MoodNeutral    = "neutral"
	MoodHappy      = "happy"
	MoodCalm       = "calm"
	MoodSad        = "sad"
	MoodFrustrated = "frustrated"
)

// TagList stores a set of tags as a JSON column
type TagList []string

// Value implements driver.Valuer
func (t TagList) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (t *TagList) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported tag column type %T", value)
	}
	if len(data) == 0 {
		*t = nil
		return nil
	}
	return json.Unmarshal(data, t)
}

// Email represents a durable record of one inbound or outbound message
type Email struct {
	ID             uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID         *uint          `json:"user_id" gorm:"index"`
	To             string         `json:"to" gorm:"type:varchar(255);not null"`
	From           string         `json:"from" gorm:"type:varchar(255);not null"`
	Subject        string         `json:"subject" gorm:"type:varchar(500)"`
	Content        string         `json:"content" gorm:"type:longtext"`
	Direction      string         `json:"direction" gorm:"type:varchar(20);not null;index"`
	MessageID      string         `json:"message_id" gorm:"type:varchar(255);index"`
	ConversationID string         `json:"conversation_id" gorm:"type:varchar(64);index"`
	Mood           string         `json:"mood" gorm:"type:varchar(20)"`
	Tags           TagList        `json:"tags" gorm:"type:varchar(500)"`
	IsJournalEntry bool           `json:"is_journal_entry" gorm:"default:false"`
	JournalEntryID *uint          `json:"journal_entry_id"`
	SentAt         time.Time      `json:"sent_at"`
	IsRead         bool           `json:"is_read" gorm:"default:false"`
	DeletedAt      gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for Email
func (Email) TableName() string {
	return "emails"
}
