package events

import (
	"fmt"
	"log"
	"time"

	"donna/internal/models"
)

// DisplayZone is the fixed offset used to render deadlines in outbound
// messages. All scheduling stays in UTC; this is display only.
var DisplayZone = time.FixedZone("IST", 5*3600+30*60)

// DisplayTimeFormat renders a deadline as e.g. "05:30 PM, Nov 22"
const DisplayTimeFormat = "03:04 PM, Jan 02"

// EventStore persists scheduled events
type EventStore interface {
	Insert(event *models.ScheduledEvent) error
}

// Syncer pushes one event to an external productivity service
type Syncer interface {
	SyncEvent(profile *models.Profile, title string, deadline time.Time, priority string) error
}

// ActivityLogger records entries in the user's activity history
type ActivityLogger interface {
	LogActivity(userID, eventType string, detail map[string]interface{}) error
}

// Receipt summarizes what happened to one ingested event
type Receipt struct {
	ReminderScheduled bool
	SyncedNotion      bool
	SyncedCalendar    bool
	Reply             string
}

// Ingestor consumes normalized events for known users: it persists a
// reminder when one can still fire, fans the event out to the user's enabled
// integrations, and builds the confirmation reply.
type Ingestor struct {
	store    EventStore
	notion   Syncer
	calendar Syncer
	activity ActivityLogger
	now      func() time.Time
}

// NewIngestor wires an ingestor from its collaborators. Either syncer may be
// nil when the integration is not configured at all.
func NewIngestor(store EventStore, notion, calendar Syncer, activity ActivityLogger) *Ingestor {
	return &Ingestor{
		store:    store,
		notion:   notion,
		calendar: calendar,
		activity: activity,
		now:      time.Now,
	}
}

// Ingest applies the scheduling policy to one resolved event. A store
// failure aborts the whole ingestion; sync failures are logged and swallowed
// since syncing is advisory.
func (i *Ingestor) Ingest(profile *models.Profile, ev *NormalizedEvent) (*Receipt, error) {
	now := i.now().UTC()
	receipt := &Receipt{}

	// Past-due reminders are never persisted: don't schedule what cannot fire.
	if ev.ReminderTimeUTC.After(now) {
		row := &models.ScheduledEvent{
			UserID:           profile.UserID,
			PhoneNumber:      profile.PhoneNumber,
			EventTitle:       ev.Title,
			EventDeadlineUTC: ev.DeadlineUTC,
			ReminderTimeUTC:  ev.ReminderTimeUTC,
			ReminderSent:     false,
		}
		if err := i.store.Insert(row); err != nil {
			return nil, fmt.Errorf("failed to persist scheduled event: %w", err)
		}
		receipt.ReminderScheduled = true

		if i.activity != nil {
			if err := i.activity.LogActivity(profile.UserID, "event_scheduled", map[string]interface{}{
				"event_id": row.ID,
				"title":    ev.Title,
				"deadline": ev.DeadlineUTC.Format(time.RFC3339),
			}); err != nil {
				log.Printf("Warning: Failed to log activity for %s: %v", profile.UserID, err)
			}
		}
	}

	// Best-effort fan-out. The two syncs are independent: one failing must
	// not block the other or the confirmation.
	if i.notion != nil && profile.CanSyncNotion() {
		if err := i.notion.SyncEvent(profile, ev.Title, ev.DeadlineUTC, ev.Priority); err != nil {
			log.Printf("Error: Notion sync failed for %s: %v", profile.UserID, err)
		} else {
			receipt.SyncedNotion = true
		}
	}
	if i.calendar != nil && profile.CanSyncCalendar() {
		if err := i.calendar.SyncEvent(profile, ev.Title, ev.DeadlineUTC, ev.Priority); err != nil {
			log.Printf("Error: Calendar sync failed for %s: %v", profile.UserID, err)
		} else {
			receipt.SyncedCalendar = true
		}
	}

	receipt.Reply = buildConfirmation(ev, receipt)
	return receipt, nil
}

func buildConfirmation(ev *NormalizedEvent, receipt *Receipt) string {
	msg := fmt.Sprintf("✅ Got it! *%s* is due at *%s* (priority: %s).",
		ev.Title, ev.DeadlineUTC.In(DisplayZone).Format(DisplayTimeFormat), ev.Priority)

	if receipt.ReminderScheduled {
		msg += "\n\nI'll remind you 1 hour before the deadline."
	} else {
		msg += "\n\nThe deadline is too close for a reminder, so I won't send one."
	}

	switch {
	case receipt.SyncedNotion && receipt.SyncedCalendar:
		msg += "\nSynced to: Notion, Google Calendar."
	case receipt.SyncedNotion:
		msg += "\nSynced to: Notion."
	case receipt.SyncedCalendar:
		msg += "\nSynced to: Google Calendar."
	}

	return msg
}
