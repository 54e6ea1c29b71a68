package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"donna/internal/events"
	"donna/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryEventStore mimics the real store's semantics: due-row filtering and
// the conditional, idempotent mark-sent update.
type memoryEventStore struct {
	rows        []*models.ScheduledEvent
	nextID      uint
	queryErr    error
	markSentErr map[uint]error
}

func newMemoryEventStore() *memoryEventStore {
	return &memoryEventStore{markSentErr: map[uint]error{}}
}

func (s *memoryEventStore) Insert(event *models.ScheduledEvent) error {
	s.nextID++
	event.ID = s.nextID
	s.rows = append(s.rows, event)
	return nil
}

func (s *memoryEventStore) QueryDue(now time.Time) ([]models.ScheduledEvent, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	var due []models.ScheduledEvent
	for _, row := range s.rows {
		if !row.ReminderSent && !row.ReminderTimeUTC.After(now) {
			due = append(due, *row)
		}
	}
	return due, nil
}

func (s *memoryEventStore) MarkSent(id uint) error {
	if err := s.markSentErr[id]; err != nil {
		return err
	}
	for _, row := range s.rows {
		if row.ID == id && !row.ReminderSent {
			row.ReminderSent = true
			return nil
		}
	}
	// Already sent or unknown: a no-op, not an error.
	return nil
}

type sentMessage struct {
	to   string
	text string
}

type fakeMessenger struct {
	sent    []sentMessage
	failFor map[string]error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{failFor: map[string]error{}}
}

func (m *fakeMessenger) Send(to, text string) error {
	if err := m.failFor[to]; err != nil {
		return err
	}
	m.sent = append(m.sent, sentMessage{to: to, text: text})
	return nil
}

type fakeStats struct {
	increments []string
	activities []string
}

func (s *fakeStats) IncrementRemindersSent(userID string) error {
	s.increments = append(s.increments, userID)
	return nil
}

func (s *fakeStats) LogActivity(userID, eventType string, detail map[string]interface{}) error {
	s.activities = append(s.activities, eventType)
	return nil
}

// --- helpers ---

var workerNow = time.Date(2025, 11, 22, 12, 0, 0, 0, time.UTC)

func newTestWorker(store ReminderStore, messenger Messenger, stats ReminderStats, now time.Time) *ReminderWorker {
	w := NewReminderWorker(store, messenger, stats)
	w.now = func() time.Time { return now }
	return w
}

func dueRow(store *memoryEventStore, phone string, reminderOffset time.Duration) *models.ScheduledEvent {
	row := &models.ScheduledEvent{
		UserID:           "user-" + phone,
		PhoneNumber:      phone,
		EventTitle:       fmt.Sprintf("event for %s", phone),
		EventDeadlineUTC: workerNow.Add(reminderOffset + time.Hour),
		ReminderTimeUTC:  workerNow.Add(reminderOffset),
	}
	_ = store.Insert(row)
	return row
}

// --- tests ---

func TestWorker_DeliversDueRemindersAndMarksSent(t *testing.T) {
	store := newMemoryEventStore()
	messenger := newFakeMessenger()
	stats := &fakeStats{}

	dueRow(store, "111", -time.Minute)   // due
	dueRow(store, "222", 10*time.Minute) // not yet due

	newTestWorker(store, messenger, stats, workerNow).checkDueReminders()

	require.Len(t, messenger.sent, 1)
	assert.Equal(t, "111", messenger.sent[0].to)
	assert.True(t, store.rows[0].ReminderSent)
	assert.False(t, store.rows[1].ReminderSent)
	assert.Equal(t, []string{"user-111"}, stats.increments)
	assert.Equal(t, []string{"reminder_sent"}, stats.activities)
}

func TestWorker_OneFailedDeliveryDoesNotBlockTheBatch(t *testing.T) {
	store := newMemoryEventStore()
	messenger := newFakeMessenger()
	messenger.failFor["222"] = errors.New("meta is down")

	dueRow(store, "111", -3*time.Minute)
	dueRow(store, "222", -2*time.Minute)
	dueRow(store, "333", -time.Minute)

	newTestWorker(store, messenger, &fakeStats{}, workerNow).checkDueReminders()

	require.Len(t, messenger.sent, 2)
	assert.True(t, store.rows[0].ReminderSent)
	assert.False(t, store.rows[1].ReminderSent)
	assert.True(t, store.rows[2].ReminderSent)
}

func TestWorker_MarkSentFailureMeansRedelivery(t *testing.T) {
	store := newMemoryEventStore()
	messenger := newFakeMessenger()

	row := dueRow(store, "111", -time.Minute)
	store.markSentErr[row.ID] = errors.New("connection reset")

	worker := newTestWorker(store, messenger, &fakeStats{}, workerNow)

	// Delivery succeeds but the flag write fails: at-least-once means the
	// next cycle re-selects and re-delivers the same row.
	worker.checkDueReminders()
	require.Len(t, messenger.sent, 1)
	assert.False(t, store.rows[0].ReminderSent)

	delete(store.markSentErr, row.ID)
	worker.checkDueReminders()
	require.Len(t, messenger.sent, 2)
	assert.True(t, store.rows[0].ReminderSent)
}

func TestWorker_StoreQueryFailureSkipsCycle(t *testing.T) {
	store := newMemoryEventStore()
	store.queryErr = errors.New("no route to host")
	messenger := newFakeMessenger()

	dueRow(store, "111", -time.Minute)
	worker := newTestWorker(store, messenger, &fakeStats{}, workerNow)

	worker.checkDueReminders()
	assert.Empty(t, messenger.sent)

	// Connectivity back: the next cycle picks the row up.
	store.queryErr = nil
	worker.checkDueReminders()
	assert.Len(t, messenger.sent, 1)
}

func TestWorker_MarkSentIsIdempotent(t *testing.T) {
	store := newMemoryEventStore()
	row := dueRow(store, "111", -time.Minute)

	require.NoError(t, store.MarkSent(row.ID))
	require.NoError(t, store.MarkSent(row.ID))
	assert.True(t, store.rows[0].ReminderSent)
}

func TestWorker_RenderReminderUsesDisplayZone(t *testing.T) {
	// 17:00 UTC is 22:30 in the fixed display offset (+05:30).
	msg := renderReminder(models.ScheduledEvent{
		EventTitle:       "Submit tax return",
		EventDeadlineUTC: time.Date(2025, 11, 22, 17, 0, 0, 0, time.UTC),
	})
	assert.Contains(t, msg, "Submit tax return")
	assert.Contains(t, msg, "10:30 PM, Nov 22")
	assert.Contains(t, msg, "(IST)")
}

func TestWorker_EndToEndWithSimulatedClock(t *testing.T) {
	store := newMemoryEventStore()
	messenger := newFakeMessenger()

	// Ingest an event due 90 minutes out; its reminder fires at +30min.
	ingestor := events.NewIngestor(store, nil, nil, nil)
	receipt, err := ingestor.Ingest(&models.Profile{
		UserID:      "user-1",
		PhoneNumber: "14155552671",
	}, &events.NormalizedEvent{
		Title:           "Dentist",
		DeadlineUTC:     time.Now().UTC().Add(90 * time.Minute),
		Priority:        "medium",
		ReminderTimeUTC: time.Now().UTC().Add(30 * time.Minute),
	})
	require.NoError(t, err)
	require.True(t, receipt.ReminderScheduled)
	require.Len(t, store.rows, 1)
	require.False(t, store.rows[0].ReminderSent)

	// First poll past the reminder moment delivers exactly one message.
	newTestWorker(store, messenger, &fakeStats{}, time.Now().UTC().Add(31*time.Minute)).checkDueReminders()
	require.Len(t, messenger.sent, 1)
	assert.Equal(t, "14155552671", messenger.sent[0].to)
	assert.True(t, store.rows[0].ReminderSent)

	// A later poll delivers nothing further.
	newTestWorker(store, messenger, &fakeStats{}, time.Now().UTC().Add(32*time.Minute)).checkDueReminders()
	assert.Len(t, messenger.sent, 1)
}
