package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog represents an entry in the user's activity history
type ActivityLog struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string         `gorm:"size:128;not null;index" json:"user_id"`
	EventType string         `gorm:"size:30;not null" json:"event_type"` // profile_created, event_scheduled, reminder_sent
	Detail    datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"detail"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
}

// TableName specifies the table name for the ActivityLog model
func (ActivityLog) TableName() string {
	return "activity_log"
}
