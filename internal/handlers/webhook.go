package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	"donna/internal/database"
	"donna/internal/events"
	"donna/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	signupReply        = "Hi! I don't recognize your number. Please sign up on the Donna dashboard to use this service."
	understandingReply = "Sorry, I had a problem understanding that. Please try again."
	missingFieldsReply = "Sorry, I understood the event but couldn't find a clear title or deadline. Please try again."
	genericErrorReply  = "Sorry, something went wrong on my end. Please try again."
)

// ProfileFinder resolves an inbound phone number to a registered profile
type ProfileFinder interface {
	GetByPhone(phone string) (*models.Profile, error)
}

// ExtractorClient turns free text into a loosely-typed event
type ExtractorClient interface {
	Extract(ctx context.Context, text string) (*events.ExtractedEvent, error)
}

// EventIngestor applies the scheduling policy to one resolved event
type EventIngestor interface {
	Ingest(profile *models.Profile, ev *events.NormalizedEvent) (*events.Receipt, error)
}

// Replier sends a text back to the sender
type Replier interface {
	Send(to, text string) error
}

// WebhookHandler is the Meta webhook boundary. Whatever happens downstream,
// the webhook acknowledges with 200 so Meta never retries delivery of an
// inbound message because of our own failures.
type WebhookHandler struct {
	verifyToken string
	profiles    ProfileFinder
	extractor   ExtractorClient
	ingestor    EventIngestor
	messenger   Replier
}

// NewWebhookHandler wires the webhook from its collaborators
func NewWebhookHandler(profiles ProfileFinder, extractor ExtractorClient, ingestor EventIngestor, messenger Replier) *WebhookHandler {
	return &WebhookHandler{
		verifyToken: os.Getenv("META_VERIFY_TOKEN"),
		profiles:    profiles,
		extractor:   extractor,
		ingestor:    ingestor,
		messenger:   messenger,
	}
}

// Verify answers Meta's webhook verification handshake
func (h *WebhookHandler) Verify(c *gin.Context) {
	if c.Query("hub.verify_token") == h.verifyToken && h.verifyToken != "" {
		c.String(http.StatusOK, c.Query("hub.challenge"))
		return
	}
	c.String(http.StatusForbidden, "Error, bad token")
}

// Receive processes one inbound WhatsApp message
func (h *WebhookHandler) Receive(c *gin.Context) {
	// Always acknowledge, even on failure: replying 4xx/5xx would make Meta
	// redeliver the same message into the same failure.
	defer c.String(http.StatusOK, "OK")

	var payload models.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Printf("Error: Failed to parse webhook payload: %v", err)
		return
	}

	msg := payload.FirstTextMessage()
	if msg == nil {
		// Status callbacks and non-text messages land here
		return
	}

	profile, err := h.profiles.GetByPhone(msg.From)
	if err != nil {
		if errors.Is(err, database.ErrProfileNotFound) {
			h.reply(msg.From, signupReply)
			return
		}
		log.Printf("Error: Profile lookup failed for %s: %v", msg.From, err)
		h.reply(msg.From, genericErrorReply)
		return
	}

	extracted, err := h.extractor.Extract(c.Request.Context(), msg.Text.Body)
	if err != nil {
		log.Printf("Error: Extraction failed for %s: %v", msg.From, err)
		h.reply(msg.From, understandingReply)
		return
	}

	normalized, err := events.Resolve(*extracted)
	if err != nil {
		log.Printf("Resolution failed for %s: %v", msg.From, err)
		h.reply(msg.From, missingFieldsReply)
		return
	}

	receipt, err := h.ingestor.Ingest(profile, normalized)
	if err != nil {
		log.Printf("Error: Ingestion failed for %s: %v", msg.From, err)
		h.reply(msg.From, genericErrorReply)
		return
	}

	h.reply(msg.From, receipt.Reply)
}

func (h *WebhookHandler) reply(to, text string) {
	if err := h.messenger.Send(to, text); err != nil {
		log.Printf("Error: Failed to send WhatsApp reply to %s: %v", to, err)
	}
}
