package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"donna/internal/models"
	"donna/internal/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrProfileNotFound is returned when no profile matches the lookup
var ErrProfileNotFound = errors.New("profile not found")

// ProfileStore is the persistence handle for user profiles
type ProfileStore struct {
	db *gorm.DB
}

// NewProfileStore creates a profile store backed by the given connection
func NewProfileStore(db *gorm.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// GetByPhone finds a profile by its WhatsApp phone number. The number is
// normalized to digits before lookup so webhook and dashboard formats match.
func (s *ProfileStore) GetByPhone(phone string) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.Where("phone_number = ?", utils.NormalizePhone(phone)).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to look up profile by phone: %w", err)
	}
	return &profile, nil
}

// GetByID finds a profile by its Google subject ID
func (s *ProfileStore) GetByID(userID string) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to look up profile: %w", err)
	}
	return &profile, nil
}

// CreateIfMissing creates a profile for a first-time sign-in. Returns the
// stored profile and whether a new row was created.
func (s *ProfileStore) CreateIfMissing(profile *models.Profile) (*models.Profile, bool, error) {
	existing, err := s.GetByID(profile.UserID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrProfileNotFound) {
		return nil, false, err
	}

	if err := s.db.Create(profile).Error; err != nil {
		return nil, false, fmt.Errorf("failed to create profile: %w", err)
	}
	return profile, true, nil
}

// SavePhoneNumber links a WhatsApp number to the profile
func (s *ProfileStore) SavePhoneNumber(userID, phone string) error {
	return s.db.Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Update("phone_number", utils.NormalizePhone(phone)).Error
}

// SaveNotionDetails stores the user's Notion integration credentials
func (s *ProfileStore) SaveNotionDetails(userID, apiKey, databaseID string) error {
	return s.db.Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"notion_api_key":     apiKey,
			"notion_database_id": databaseID,
		}).Error
}

// SaveGoogleToken stores the calendar-scope refresh token
func (s *ProfileStore) SaveGoogleToken(userID, refreshToken string) error {
	return s.db.Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Update("google_refresh_token", refreshToken).Error
}

// UpdateSyncPreference toggles one sync integration on or off. The service
// name is constrained to the two sync columns by the request binding.
func (s *ProfileStore) UpdateSyncPreference(userID, service string, enabled bool) error {
	if service != "sync_notion" && service != "sync_calendar" {
		return fmt.Errorf("unknown sync service %q", service)
	}
	return s.db.Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Update(service, enabled).Error
}

// IncrementRemindersSent bumps the delivered-reminder counter for the stats
// shown on the dashboard
func (s *ProfileStore) IncrementRemindersSent(userID string) error {
	return s.db.Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Update("reminders_sent", gorm.Expr("reminders_sent + 1")).Error
}

// LogActivity appends an entry to the user's activity history. Failures are
// returned for the caller to log; activity history is advisory.
func (s *ProfileStore) LogActivity(userID, eventType string, detail map[string]interface{}) error {
	payload, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("failed to encode activity detail: %w", err)
	}
	entry := models.ActivityLog{
		UserID:    userID,
		EventType: eventType,
		Detail:    datatypes.JSON(payload),
		Timestamp: time.Now(),
	}
	return s.db.Create(&entry).Error
}
