package events

import (
	"errors"
	"strings"
	"time"
)

// ReminderLead is the fixed lead time between a reminder firing and the
// event deadline it announces.
const ReminderLead = time.Hour

var (
	// ErrMissingField means the extraction produced no usable title or deadline
	ErrMissingField = errors.New("extracted event is missing a title or deadline")
	// ErrMalformedTimestamp means the extracted deadline could not be parsed
	ErrMalformedTimestamp = errors.New("extracted deadline is not a valid timestamp")
)

// ExtractedEvent is the loosely-typed output of the language-model call.
// Every field may be absent; DeadlineUTC is a pointer because the model
// returns an explicit null when it finds no deadline.
type ExtractedEvent struct {
	Title       string  `json:"title"`
	DeadlineUTC *string `json:"deadline_utc"`
	Priority    string  `json:"priority"`
}

// NormalizedEvent is a fully validated event ready for scheduling
type NormalizedEvent struct {
	Title           string
	DeadlineUTC     time.Time
	Priority        string
	ReminderTimeUTC time.Time
}

// Resolve validates an extracted event and computes its reminder time. It is
// a pure transformation: whether the deadline is already in the past is the
// ingestion step's decision, not the resolver's.
func Resolve(ex ExtractedEvent) (*NormalizedEvent, error) {
	title := strings.TrimSpace(ex.Title)
	if title == "" || ex.DeadlineUTC == nil || strings.TrimSpace(*ex.DeadlineUTC) == "" {
		return nil, ErrMissingField
	}

	deadline, err := parseDeadline(strings.TrimSpace(*ex.DeadlineUTC))
	if err != nil {
		return nil, ErrMalformedTimestamp
	}

	priority := strings.TrimSpace(ex.Priority)
	if priority == "" {
		priority = "medium"
	}

	return &NormalizedEvent{
		Title:           title,
		DeadlineUTC:     deadline,
		Priority:        priority,
		ReminderTimeUTC: deadline.Add(-ReminderLead),
	}, nil
}

// parseDeadline accepts RFC 3339 timestamps (a trailing Z designates UTC) and
// falls back to a bare ISO date-time, which is taken as UTC. The model is
// prompted to return the former but not guaranteed to.
func parseDeadline(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", raw, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
