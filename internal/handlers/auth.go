package handlers

import (
	"log"
	"net/http"
	"os"

	"donna/internal/auth"
	"donna/internal/database"
	"donna/internal/models"
	"donna/internal/services"

	"github.com/gin-gonic/gin"
)

// dashboardURL is where browser flows land after auth round-trips
func dashboardURL() string {
	if url := os.Getenv("DASHBOARD_URL"); url != "" {
		return url
	}
	return "/"
}

// GoogleLogin redirects the browser to Google sign-in
func GoogleLogin(c *gin.Context) {
	url, err := auth.GetLoginURL(c)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to generate login URL", err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback processes the sign-in callback from Google
func GoogleCallback(c *gin.Context) {
	if !auth.VerifyOAuthState(c, c.Query("state")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid oauth state, possible CSRF attack"})
		return
	}

	userInfo, err := auth.ExchangeLogin(c.Request.Context(), c.Query("code"))
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Google sign-in failed", err)
		return
	}

	profiles := database.NewProfileStore(database.GetDB())
	_, created, err := profiles.CreateIfMissing(&models.Profile{
		UserID:       userInfo.Sub,
		Email:        userInfo.Email,
		FullName:     userInfo.Name,
		AvatarURL:    userInfo.Picture,
		SyncNotion:   true,
		SyncCalendar: true,
	})
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create profile", err)
		return
	}

	if created {
		if err := profiles.LogActivity(userInfo.Sub, "profile_created", map[string]interface{}{
			"email": userInfo.Email,
		}); err != nil {
			log.Printf("Warning: Failed to log signup activity: %v", err)
		}
		// Welcome email is best effort and must not hold up the redirect
		go func(email, name string) {
			if err := services.NewEmailService().SendWelcomeEmail(email, name); err != nil {
				log.Printf("Warning: Failed to send welcome email to %s: %v", email, err)
			}
		}(userInfo.Email, userInfo.Name)
	}

	if err := auth.CreateSession(c, userInfo); err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create session", err)
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, dashboardURL())
}

// Logout invalidates the session and clears the cookie
func Logout(c *gin.Context) {
	auth.DeleteSession(c)
	c.JSON(http.StatusOK, gin.H{"message": "logout successful"})
}

// ConnectCalendar starts the calendar-scope authorization flow
func ConnectCalendar(c *gin.Context) {
	url, err := auth.GetCalendarConnectURL(c)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to generate calendar connect URL", err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// CalendarCallback stores the refresh token from the calendar flow on the
// signed-in user's profile
func CalendarCallback(c *gin.Context) {
	if !auth.VerifyOAuthState(c, c.Query("state")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid oauth state, possible CSRF attack"})
		return
	}

	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	refreshToken, err := auth.ExchangeCalendarCode(c.Request.Context(), c.Query("code"))
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Calendar authorization failed", err)
		return
	}

	profiles := database.NewProfileStore(database.GetDB())
	if err := profiles.SaveGoogleToken(userID, refreshToken); err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to save calendar token", err)
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, dashboardURL())
}
