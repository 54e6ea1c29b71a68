package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"donna/internal/auth"
	"donna/internal/database"
	"donna/internal/events"
	"donna/internal/handlers"
	"donna/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env in development; env vars win in production
	_ = godotenv.Load()

	// Initialize database
	if err := database.InitDB(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Initialize Google OAuth (sign-in + calendar scopes)
	if err := auth.InitOAuth(); err != nil {
		log.Fatal("Failed to initialize OAuth:", err)
	}

	db := database.GetDB()
	eventStore := database.NewEventStore(db)
	profileStore := database.NewProfileStore(db)
	messenger := services.NewWhatsAppClient()

	extractor, err := services.NewExtractor(context.Background())
	if err != nil {
		log.Fatal("Failed to initialize extractor:", err)
	}
	defer extractor.Close()

	calendarSyncer, err := services.NewCalendarSyncer()
	if err != nil {
		log.Fatal("Failed to initialize calendar sync:", err)
	}

	ingestor := events.NewIngestor(eventStore, services.NewNotionSyncer(), calendarSyncer, profileStore)

	// Start the reminder polling loop. Single instance only: the store's
	// conditional mark-sent is the sole guard against duplicate delivery.
	services.NewReminderWorker(eventStore, messenger, profileStore).Start()

	// Initialize Gin router
	router := gin.Default()

	// Configure trusted proxies
	router.SetTrustedProxies([]string{"127.0.0.1"})

	// Allow the dashboard front-end to call the API with cookies
	if dashboardURL := os.Getenv("DASHBOARD_URL"); dashboardURL != "" {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     []string{dashboardURL},
			AllowMethods:     []string{"GET", "POST"},
			AllowHeaders:     []string{"Origin", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	webhook := handlers.NewWebhookHandler(profileStore, extractor, ingestor, messenger)

	// Basic routes
	router.GET("/", handlers.HomeHandler)
	router.GET("/health", handlers.HealthHandler)

	// WhatsApp webhook (Meta verification + inbound messages)
	router.GET("/whatsapp-webhook", webhook.Verify)
	router.POST("/whatsapp-webhook", webhook.Receive)

	// Auth routes (no auth required)
	router.GET("/auth/google/login", handlers.GoogleLogin)
	router.GET("/auth/google/callback", handlers.GoogleCallback)

	// Protected routes (auth required)
	protected := router.Group("")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("/auth/logout", handlers.Logout)
		protected.GET("/api/me", handlers.GetMe)
		protected.POST("/api/profile/phone", handlers.SavePhone)
		protected.POST("/api/profile/notion", handlers.SaveNotion)
		protected.POST("/api/profile/sync", handlers.UpdateSyncPreference)
		protected.GET("/connect-google-calendar", handlers.ConnectCalendar)
		protected.GET("/google-calendar-callback", handlers.CalendarCallback)
	}

	// Start the server
	fmt.Println("Server starting on port 8080...")
	if err := router.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}
