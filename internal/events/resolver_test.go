package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestResolve_ValidEvent(t *testing.T) {
	normalized, err := Resolve(ExtractedEvent{
		Title:       "Submit tax return",
		DeadlineUTC: strPtr("2025-11-22T17:00:00Z"),
		Priority:    "high",
	})
	require.NoError(t, err)

	assert.Equal(t, "Submit tax return", normalized.Title)
	assert.Equal(t, "high", normalized.Priority)
	assert.Equal(t, time.Date(2025, 11, 22, 17, 0, 0, 0, time.UTC), normalized.DeadlineUTC)
	assert.Equal(t, time.Date(2025, 11, 22, 16, 0, 0, 0, time.UTC), normalized.ReminderTimeUTC)
}

func TestResolve_MissingFields(t *testing.T) {
	cases := []struct {
		name string
		in   ExtractedEvent
	}{
		{"no title", ExtractedEvent{DeadlineUTC: strPtr("2025-11-22T17:00:00Z")}},
		{"blank title", ExtractedEvent{Title: "   ", DeadlineUTC: strPtr("2025-11-22T17:00:00Z")}},
		{"nil deadline", ExtractedEvent{Title: "Dentist"}},
		{"empty deadline", ExtractedEvent{Title: "Dentist", DeadlineUTC: strPtr("")}},
		{"blank deadline", ExtractedEvent{Title: "Dentist", DeadlineUTC: strPtr("  ")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve(tc.in)
			assert.ErrorIs(t, err, ErrMissingField)
		})
	}
}

func TestResolve_MalformedTimestamp(t *testing.T) {
	for _, raw := range []string{"next tuesday", "22/11/2025", "2025-13-45T99:00:00Z"} {
		_, err := Resolve(ExtractedEvent{Title: "Dentist", DeadlineUTC: strPtr(raw)})
		assert.ErrorIs(t, err, ErrMalformedTimestamp, "input %q", raw)
	}
}

func TestResolve_PriorityDefaultsToMedium(t *testing.T) {
	normalized, err := Resolve(ExtractedEvent{
		Title:       "Dentist",
		DeadlineUTC: strPtr("2025-11-22T17:00:00Z"),
	})
	require.NoError(t, err)
	assert.Equal(t, "medium", normalized.Priority)
}

func TestResolve_UnrecognizedPriorityPreserved(t *testing.T) {
	normalized, err := Resolve(ExtractedEvent{
		Title:       "Dentist",
		DeadlineUTC: strPtr("2025-11-22T17:00:00Z"),
		Priority:    "urgent",
	})
	require.NoError(t, err)
	assert.Equal(t, "urgent", normalized.Priority)
}

func TestResolve_OffsetTimestampNormalizedToUTC(t *testing.T) {
	normalized, err := Resolve(ExtractedEvent{
		Title:       "Standup",
		DeadlineUTC: strPtr("2025-11-22T22:30:00+05:30"),
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 11, 22, 17, 0, 0, 0, time.UTC), normalized.DeadlineUTC)
}

func TestResolve_NaiveTimestampTakenAsUTC(t *testing.T) {
	normalized, err := Resolve(ExtractedEvent{
		Title:       "Standup",
		DeadlineUTC: strPtr("2025-11-22T17:00:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 11, 22, 17, 0, 0, 0, time.UTC), normalized.DeadlineUTC)
}

func TestResolve_ReminderAlwaysLeadsDeadlineByOneHour(t *testing.T) {
	deadlines := []string{
		"2025-01-01T00:30:00Z",
		"2025-06-15T09:00:00Z",
		"2026-12-31T23:59:00Z",
	}
	for _, raw := range deadlines {
		normalized, err := Resolve(ExtractedEvent{Title: "x", DeadlineUTC: strPtr(raw)})
		require.NoError(t, err)
		assert.Equal(t, ReminderLead, normalized.DeadlineUTC.Sub(normalized.ReminderTimeUTC), "deadline %s", raw)
		assert.True(t, normalized.ReminderTimeUTC.Before(normalized.DeadlineUTC))
	}
}
