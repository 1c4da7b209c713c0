package model

import (
	"time"

	"gorm.io/gorm"
)

// JournalEntry represents one journal entry owned by a user
type JournalEntry struct {
	ID        uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    uint           `json:"user_id" gorm:"not null;index"`
	Title     string         `json:"title" gorm:"type:varchar(500);not null"`
	Content   string         `json:"content" gorm:"type:longtext;not null"`
	Mood      string         `json:"mood" gorm:"type:varchar(20)"`
	Tags      TagList        `json:"tags" gorm:"type:varchar(500)"`
	ImageURL  *string        `json:"image_url" gorm:"type:varchar(500)"`
	IsPrivate bool           `json:"is_private" gorm:"default:false"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for JournalEntry
func (JournalEntry) TableName() string {
	return "journal_entries"
}
