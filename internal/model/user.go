package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered journaling user
type User struct {
	ID             uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	Username       string         `json:"username" gorm:"type:varchar(100);not null"`
	Email          string         `json:"email" gorm:"type:varchar(255);not null;uniqueIndex"`
	IsPremium      bool           `json:"is_premium" gorm:"default:false"`
	EmailFrequency string         `json:"email_frequency" gorm:"type:varchar(20);default:daily"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// WantsEmail reports whether the user has not opted out of periodic sends
func (u *User) WantsEmail() bool {
	return u.EmailFrequency != "none"
}
