package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile represents a registered user of the service. The UserID is the
// Google subject claim from sign-in; the phone number links the profile to
// the WhatsApp bot and is stored digits-only.
type Profile struct {
	UserID             string    `gorm:"primaryKey;size:128" json:"user_id"`
	Email              string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	FullName           string    `gorm:"size:255" json:"full_name"`
	AvatarURL          string    `gorm:"size:512" json:"avatar_url"`
	PhoneNumber        string    `gorm:"uniqueIndex;size:20" json:"phone_number"`
	SyncNotion         bool      `gorm:"not null;default:true" json:"sync_notion"`
	SyncCalendar       bool      `gorm:"not null;default:true" json:"sync_calendar"`
	NotionAPIKey       string    `gorm:"size:255" json:"-"`
	NotionDatabaseID   string    `gorm:"size:64" json:"-"`
	GoogleRefreshToken string    `gorm:"type:text" json:"-"`
	RemindersSent      int       `gorm:"not null;default:0" json:"reminders_sent"`
	CreatedAt          time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook is called before creating a new profile
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	return nil
}

// BeforeSave hook is called before saving the profile
func (p *Profile) BeforeSave(tx *gorm.DB) error {
	p.UpdatedAt = time.Now()
	return nil
}

// TableName specifies the table name for the Profile model
func (Profile) TableName() string {
	return "user_profile"
}

// CanSyncNotion reports whether the profile has Notion sync enabled and has
// supplied the credentials the sync call needs.
func (p *Profile) CanSyncNotion() bool {
	return p.SyncNotion && p.NotionAPIKey != "" && p.NotionDatabaseID != ""
}

// CanSyncCalendar reports whether the profile has calendar sync enabled and
// has completed the calendar OAuth flow.
func (p *Profile) CanSyncCalendar() bool {
	return p.SyncCalendar && p.GoogleRefreshToken != ""
}
