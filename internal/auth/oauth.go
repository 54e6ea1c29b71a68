package auth

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/idtoken"
)

var (
	// loginConfig is the identity-scope config used for dashboard sign-in
	loginConfig *oauth2.Config
	// calendarConfig is the calendar-scope config used to capture a refresh
	// token for event sync; it is a separate consent flow on purpose
	calendarConfig *oauth2.Config
)

// InitOAuth initializes both Google OAuth configurations
func InitOAuth() error {
	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	redirectURL := os.Getenv("GOOGLE_REDIRECT_URL")
	calendarRedirectURL := os.Getenv("GOOGLE_CALENDAR_REDIRECT_URL")

	if clientID == "" || clientSecret == "" || redirectURL == "" || calendarRedirectURL == "" {
		return errors.New("GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET, GOOGLE_REDIRECT_URL, and GOOGLE_CALENDAR_REDIRECT_URL must be set")
	}

	loginConfig = &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile", "openid"},
		Endpoint:     google.Endpoint,
	}

	calendarConfig = &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  calendarRedirectURL,
		Scopes:       []string{calendar.CalendarEventsScope},
		Endpoint:     google.Endpoint,
	}

	return nil
}

// GetLoginURL returns the Google sign-in URL with a secure state parameter
func GetLoginURL(c *gin.Context) (string, error) {
	state, err := SetOAuthState(c)
	if err != nil {
		return "", err
	}

	return loginConfig.AuthCodeURL(state,
		oauth2.SetAuthURLParam("prompt", "select_account"),
	), nil
}

// ExchangeLogin swaps the callback code for a token and returns the verified
// identity claims from its ID token
func ExchangeLogin(ctx context.Context, code string) (*UserInfo, error) {
	token, err := loginConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, errors.New("token response carried no id_token")
	}

	payload, err := idtoken.Validate(ctx, rawIDToken, loginConfig.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to validate ID token: %w", err)
	}

	return extractUserInfo(payload), nil
}

// GetCalendarConnectURL returns the calendar-scope authorization URL.
// access_type=offline plus the consent prompt is what makes Google return a
// refresh token.
func GetCalendarConnectURL(c *gin.Context) (string, error) {
	state, err := SetOAuthState(c)
	if err != nil {
		return "", err
	}

	return calendarConfig.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	), nil
}

// ExchangeCalendarCode swaps the calendar callback code for a refresh token
func ExchangeCalendarCode(ctx context.Context, code string) (string, error) {
	token, err := calendarConfig.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("code exchange failed: %w", err)
	}
	if token.RefreshToken == "" {
		return "", errors.New("google returned no refresh token")
	}
	return token.RefreshToken, nil
}

// extractUserInfo pulls the claims the app uses out of a verified payload
func extractUserInfo(payload *idtoken.Payload) *UserInfo {
	userInfo := &UserInfo{
		Sub: payload.Subject,
	}

	if email, ok := payload.Claims["email"].(string); ok {
		userInfo.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		userInfo.Name = name
	}
	if picture, ok := payload.Claims["picture"].(string); ok {
		userInfo.Picture = picture
	}
	if emailVerified, ok := payload.Claims["email_verified"].(bool); ok {
		userInfo.EmailVerified = emailVerified
	}

	return userInfo
}
