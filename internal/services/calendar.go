package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"donna/internal/models"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// CalendarSyncer inserts events into each user's primary Google Calendar
// using the refresh token captured during the calendar connect flow.
type CalendarSyncer struct {
	oauthConfig *oauth2.Config
}

// NewCalendarSyncer builds the syncer from the Google OAuth environment
func NewCalendarSyncer() (*CalendarSyncer, error) {
	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set")
	}

	return &CalendarSyncer{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Scopes:       []string{calendar.CalendarEventsScope},
			Endpoint:     google.Endpoint,
		},
	}, nil
}

// SyncEvent creates a one-hour calendar block ending at the deadline. The
// priority is not representable in the calendar event and is dropped here.
func (s *CalendarSyncer) SyncEvent(profile *models.Profile, title string, deadline time.Time, priority string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// No access token on hand; the token source mints one from the stored
	// refresh token on each sync.
	tokenSource := s.oauthConfig.TokenSource(ctx, &oauth2.Token{
		RefreshToken: profile.GoogleRefreshToken,
	})

	service, err := calendar.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return fmt.Errorf("failed to build calendar service: %w", err)
	}

	start := deadline.Add(-time.Hour)
	event := &calendar.Event{
		Summary: title,
		Start:   &calendar.EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: "UTC"},
		End:     &calendar.EventDateTime{DateTime: deadline.Format(time.RFC3339), TimeZone: "UTC"},
	}

	if _, err := service.Events.Insert("primary", event).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to insert calendar event: %w", err)
	}
	return nil
}
