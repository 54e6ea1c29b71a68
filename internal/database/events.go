package database

import (
	"time"

	"donna/internal/models"

	"gorm.io/gorm"
)

// EventStore is the persistence handle for scheduled events. It is the only
// writer of the reminder_sent flag besides AutoMigrate defaults.
type EventStore struct {
	db *gorm.DB
}

// NewEventStore creates an event store backed by the given connection
func NewEventStore(db *gorm.DB) *EventStore {
	return &EventStore{db: db}
}

// Insert persists a new scheduled event and assigns its ID
func (s *EventStore) Insert(event *models.ScheduledEvent) error {
	return s.db.Create(event).Error
}

// QueryDue returns all events whose reminder is due and not yet sent
func (s *EventStore) QueryDue(now time.Time) ([]models.ScheduledEvent, error) {
	var events []models.ScheduledEvent
	err := s.db.
		Where("reminder_sent = ? AND reminder_time_utc <= ?", false, now).
		Find(&events).Error
	return events, err
}

// MarkSent flips reminder_sent to true for the given event. The conditional
// WHERE makes the update idempotent: marking an already-sent row affects zero
// rows and is not an error, and two pollers racing on the same row can only
// both "win" at the delivery step, never at the flag.
func (s *EventStore) MarkSent(id uint) error {
	return s.db.Model(&models.ScheduledEvent{}).
		Where("id = ? AND reminder_sent = ?", id, false).
		Update("reminder_sent", true).Error
}
