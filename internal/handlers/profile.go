package handlers

import (
	"errors"
	"net/http"
	"strings"

	"donna/internal/database"
	"donna/internal/models"

	"github.com/gin-gonic/gin"
)

// GetMe returns the signed-in user's dashboard payload
func GetMe(c *gin.Context) {
	userID := c.GetString("user_id")

	profiles := database.NewProfileStore(database.GetDB())
	profile, err := profiles.GetByID(userID)
	if err != nil {
		if errors.Is(err, database.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to load profile", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email":              profile.Email,
		"full_name":          profile.FullName,
		"avatar_url":         profile.AvatarURL,
		"phone_number":       profile.PhoneNumber,
		"sync_notion":        profile.SyncNotion,
		"sync_calendar":      profile.SyncCalendar,
		"notion_configured":  profile.NotionAPIKey != "" && profile.NotionDatabaseID != "",
		"calendar_connected": profile.GoogleRefreshToken != "",
		"reminders_sent":     profile.RemindersSent,
	})
}

// SavePhone links a WhatsApp number to the signed-in user's profile
func SavePhone(c *gin.Context) {
	var req models.SavePhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	userID := c.GetString("user_id")
	profiles := database.NewProfileStore(database.GetDB())
	if err := profiles.SavePhoneNumber(userID, req.Phone); err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			handleError(c, http.StatusConflict, "Phone number already linked to another account", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to save phone number", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "phone number saved"})
}

// SaveNotion stores the user's Notion integration credentials
func SaveNotion(c *gin.Context) {
	var req models.SaveNotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	userID := c.GetString("user_id")
	profiles := database.NewProfileStore(database.GetDB())
	if err := profiles.SaveNotionDetails(userID, req.NotionAPIKey, req.NotionDatabaseID); err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to save Notion details", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "notion details saved"})
}

// UpdateSyncPreference toggles one sync integration on or off
func UpdateSyncPreference(c *gin.Context) {
	var req models.SyncPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	userID := c.GetString("user_id")
	profiles := database.NewProfileStore(database.GetDB())
	if err := profiles.UpdateSyncPreference(userID, req.Service, *req.Enabled); err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to update sync preference", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "sync preference updated"})
}
