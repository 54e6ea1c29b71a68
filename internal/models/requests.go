package models

// SavePhoneRequest represents the data needed to link a phone number
type SavePhoneRequest struct {
	Phone string `json:"phone" binding:"required,min=7,max=20"`
}

// SaveNotionRequest represents the data needed to store Notion credentials
type SaveNotionRequest struct {
	NotionAPIKey     string `json:"notion_api_key" binding:"required"`
	NotionDatabaseID string `json:"notion_database_id" binding:"required"`
}

// SyncPreferenceRequest represents a toggle of one sync integration
type SyncPreferenceRequest struct {
	Service string `json:"service" binding:"required,oneof=sync_notion sync_calendar"`
	Enabled *bool  `json:"enabled" binding:"required"`
}
