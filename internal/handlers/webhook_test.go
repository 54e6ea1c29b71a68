package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"donna/internal/database"
	"donna/internal/events"
	"donna/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeProfiles struct {
	profile *models.Profile
	err     error
}

func (f *fakeProfiles) GetByPhone(phone string) (*models.Profile, error) {
	return f.profile, f.err
}

type fakeExtractor struct {
	extracted *events.ExtractedEvent
	err       error
}

func (f *fakeExtractor) Extract(ctx context.Context, text string) (*events.ExtractedEvent, error) {
	return f.extracted, f.err
}

type fakeIngestor struct {
	receipt  *events.Receipt
	err      error
	profiles []*models.Profile
}

func (f *fakeIngestor) Ingest(profile *models.Profile, ev *events.NormalizedEvent) (*events.Receipt, error) {
	f.profiles = append(f.profiles, profile)
	if f.err != nil {
		return nil, f.err
	}
	return f.receipt, nil
}

type fakeReplier struct {
	sent []sentReply
}

type sentReply struct {
	to   string
	text string
}

func (f *fakeReplier) Send(to, text string) error {
	f.sent = append(f.sent, sentReply{to: to, text: text})
	return nil
}

// --- helpers ---

const messagePayload = `{
	"entry": [{
		"changes": [{
			"value": {
				"messages": [{
					"from": "14155552671",
					"type": "text",
					"text": {"body": "dentist tomorrow at 5pm"}
				}]
			}
		}]
	}]
}`

func newTestHandler(profiles ProfileFinder, extractor ExtractorClient, ingestor EventIngestor, replier *fakeReplier) *WebhookHandler {
	return &WebhookHandler{
		verifyToken: "verify-secret",
		profiles:    profiles,
		extractor:   extractor,
		ingestor:    ingestor,
		messenger:   replier,
	}
}

func performWebhook(h *WebhookHandler, method, target, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/whatsapp-webhook", h.Verify)
	router.POST("/whatsapp-webhook", h.Receive)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func knownProfile() *models.Profile {
	return &models.Profile{UserID: "user-1", PhoneNumber: "14155552671"}
}

func validExtraction() *events.ExtractedEvent {
	deadline := time.Now().UTC().Add(3 * time.Hour).Format(time.RFC3339)
	return &events.ExtractedEvent{Title: "Dentist", DeadlineUTC: &deadline, Priority: "high"}
}

// --- tests ---

func TestWebhook_VerificationHandshake(t *testing.T) {
	h := newTestHandler(&fakeProfiles{}, &fakeExtractor{}, &fakeIngestor{}, &fakeReplier{})

	w := performWebhook(h, http.MethodGet, "/whatsapp-webhook?hub.verify_token=verify-secret&hub.challenge=12345", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "12345", w.Body.String())

	w = performWebhook(h, http.MethodGet, "/whatsapp-webhook?hub.verify_token=wrong&hub.challenge=12345", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWebhook_UnknownSenderGetsSignupPointer(t *testing.T) {
	replier := &fakeReplier{}
	h := newTestHandler(&fakeProfiles{err: database.ErrProfileNotFound}, &fakeExtractor{}, &fakeIngestor{}, replier)

	w := performWebhook(h, http.MethodPost, "/whatsapp-webhook", messagePayload)
	assert.Equal(t, http.StatusOK, w.Code)

	require.Len(t, replier.sent, 1)
	assert.Equal(t, "14155552671", replier.sent[0].to)
	assert.Contains(t, replier.sent[0].text, "sign up")
}

func TestWebhook_ExtractionFailureGetsApology(t *testing.T) {
	replier := &fakeReplier{}
	h := newTestHandler(
		&fakeProfiles{profile: knownProfile()},
		&fakeExtractor{err: errors.New("gemini timeout")},
		&fakeIngestor{},
		replier,
	)

	w := performWebhook(h, http.MethodPost, "/whatsapp-webhook", messagePayload)
	assert.Equal(t, http.StatusOK, w.Code)

	require.Len(t, replier.sent, 1)
	assert.Equal(t, understandingReply, replier.sent[0].text)
}

func TestWebhook_UnresolvableEventGetsApology(t *testing.T) {
	replier := &fakeReplier{}
	ingestor := &fakeIngestor{}
	h := newTestHandler(
		&fakeProfiles{profile: knownProfile()},
		&fakeExtractor{extracted: &events.ExtractedEvent{Title: "Dentist"}}, // no deadline
		ingestor,
		replier,
	)

	w := performWebhook(h, http.MethodPost, "/whatsapp-webhook", messagePayload)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Empty(t, ingestor.profiles)
	require.Len(t, replier.sent, 1)
	assert.Equal(t, missingFieldsReply, replier.sent[0].text)
}

func TestWebhook_IngestionFailureGetsGenericError(t *testing.T) {
	replier := &fakeReplier{}
	h := newTestHandler(
		&fakeProfiles{profile: knownProfile()},
		&fakeExtractor{extracted: validExtraction()},
		&fakeIngestor{err: errors.New("db down")},
		replier,
	)

	w := performWebhook(h, http.MethodPost, "/whatsapp-webhook", messagePayload)
	assert.Equal(t, http.StatusOK, w.Code)

	require.Len(t, replier.sent, 1)
	assert.Equal(t, genericErrorReply, replier.sent[0].text)
}

func TestWebhook_HappyPathRepliesWithReceipt(t *testing.T) {
	replier := &fakeReplier{}
	ingestor := &fakeIngestor{receipt: &events.Receipt{Reply: "all scheduled"}}
	h := newTestHandler(
		&fakeProfiles{profile: knownProfile()},
		&fakeExtractor{extracted: validExtraction()},
		ingestor,
		replier,
	)

	w := performWebhook(h, http.MethodPost, "/whatsapp-webhook", messagePayload)
	assert.Equal(t, http.StatusOK, w.Code)

	require.Len(t, ingestor.profiles, 1)
	assert.Equal(t, "user-1", ingestor.profiles[0].UserID)
	require.Len(t, replier.sent, 1)
	assert.Equal(t, "all scheduled", replier.sent[0].text)
}

func TestWebhook_StatusCallbackIsIgnored(t *testing.T) {
	replier := &fakeReplier{}
	ingestor := &fakeIngestor{}
	h := newTestHandler(&fakeProfiles{}, &fakeExtractor{}, ingestor, replier)

	w := performWebhook(h, http.MethodPost, "/whatsapp-webhook", `{"entry":[{"changes":[{"value":{}}]}]}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, replier.sent)
	assert.Empty(t, ingestor.profiles)
}
