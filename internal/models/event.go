package models

import (
	"time"

	"gorm.io/gorm"
)

// ScheduledEvent represents one reminder-eligible event extracted from an
// inbound WhatsApp message. A row is written once by the ingestion path and
// mutated exactly once (ReminderSent false -> true) by the reminder worker.
type ScheduledEvent struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           string    `gorm:"size:128;not null;index" json:"user_id"`
	PhoneNumber      string    `gorm:"size:20;not null" json:"phone_number"`
	EventTitle       string    `gorm:"size:255;not null" json:"event_title"`
	EventDeadlineUTC time.Time `gorm:"not null" json:"event_deadline_utc"`
	ReminderTimeUTC  time.Time `gorm:"not null;index:idx_pending_reminder" json:"reminder_time_utc"`
	ReminderSent     bool      `gorm:"not null;default:false;index:idx_pending_reminder" json:"reminder_sent"`
	CreatedAt        time.Time `gorm:"not null" json:"created_at"`
}

// BeforeCreate hook is called before creating a new scheduled event
func (e *ScheduledEvent) BeforeCreate(tx *gorm.DB) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	return nil
}

// TableName specifies the table name for the ScheduledEvent model
func (ScheduledEvent) TableName() string {
	return "scheduled_event"
}
