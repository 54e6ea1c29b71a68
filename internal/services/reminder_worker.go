package services

import (
	"fmt"
	"log"
	"time"

	"donna/internal/events"
	"donna/internal/models"
)

// ReminderStore is the slice of the event store the worker needs
type ReminderStore interface {
	QueryDue(now time.Time) ([]models.ScheduledEvent, error)
	MarkSent(id uint) error
}

// Messenger delivers one text message to a phone number
type Messenger interface {
	Send(to, text string) error
}

// ReminderStats records per-user delivery bookkeeping
type ReminderStats interface {
	IncrementRemindersSent(userID string) error
	LogActivity(userID, eventType string, detail map[string]interface{}) error
}

// ReminderWorker is the single polling loop that finds due reminders and
// delivers them. The deployment runs exactly one instance; the conditional
// mark-sent update in the store is the only guard against a second one.
type ReminderWorker struct {
	store     ReminderStore
	messenger Messenger
	stats     ReminderStats
	interval  time.Duration
	now       func() time.Time
}

// NewReminderWorker wires a worker from its collaborators
func NewReminderWorker(store ReminderStore, messenger Messenger, stats ReminderStats) *ReminderWorker {
	return &ReminderWorker{
		store:     store,
		messenger: messenger,
		stats:     stats,
		interval:  time.Minute, // Check every 60 seconds
		now:       time.Now,
	}
}

// Start launches the polling loop in its own goroutine
func (w *ReminderWorker) Start() {
	go w.run()
}

func (w *ReminderWorker) run() {
	log.Printf("Reminder worker started, polling every %v", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for range ticker.C {
		w.checkDueReminders()
	}
}

// checkDueReminders runs one scan/dispatch cycle. A store read failure skips
// the cycle entirely; the next tick retries. Per-row failures never abort
// the batch.
func (w *ReminderWorker) checkDueReminders() {
	now := w.now().UTC()

	due, err := w.store.QueryDue(now)
	if err != nil {
		log.Printf("Error: Failed to query due reminders: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}

	log.Printf("Found %d due reminders to send", len(due))
	for _, event := range due {
		if err := w.deliver(event); err != nil {
			log.Printf("Error: Failed to process reminder %d: %v", event.ID, err)
		}
	}
}

// deliver sends one reminder and marks it sent. Delivery happens before the
// mark, so a crash between the two re-sends the reminder on the next scan
// instead of silently dropping it.
func (w *ReminderWorker) deliver(event models.ScheduledEvent) error {
	if err := w.messenger.Send(event.PhoneNumber, renderReminder(event)); err != nil {
		return fmt.Errorf("delivery failed: %w", err)
	}

	if err := w.store.MarkSent(event.ID); err != nil {
		return fmt.Errorf("failed to mark reminder %d sent: %w", event.ID, err)
	}

	if w.stats != nil {
		if err := w.stats.IncrementRemindersSent(event.UserID); err != nil {
			log.Printf("Warning: Failed to update reminder stats for %s: %v", event.UserID, err)
		}
		if err := w.stats.LogActivity(event.UserID, "reminder_sent", map[string]interface{}{
			"event_id": event.ID,
			"title":    event.EventTitle,
		}); err != nil {
			log.Printf("Warning: Failed to log reminder activity for %s: %v", event.UserID, err)
		}
	}

	log.Printf("Sent reminder %d to %s", event.ID, event.PhoneNumber)
	return nil
}

func renderReminder(event models.ScheduledEvent) string {
	due := event.EventDeadlineUTC.In(events.DisplayZone).Format(events.DisplayTimeFormat)
	return fmt.Sprintf("🔔 *REMINDER* 🔔\n\nThis is your 1-hour reminder for the event:\n\n*%s*\n\nIt's due at *%s* (IST).",
		event.EventTitle, due)
}
