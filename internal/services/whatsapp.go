package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// WhatsAppClient sends text messages through the Meta Graph API. Meta ships
// no Go SDK; the messages endpoint is a single JSON POST.
type WhatsAppClient struct {
	phoneNumberID string
	accessToken   string
	baseURL       string
	httpClient    *http.Client
}

// NewWhatsAppClient builds a client from the Meta environment variables
func NewWhatsAppClient() *WhatsAppClient {
	return &WhatsAppClient{
		phoneNumberID: os.Getenv("META_PHONE_NUMBER_ID"),
		accessToken:   os.Getenv("META_ACCESS_TOKEN"),
		baseURL:       "https://graph.facebook.com/v19.0",
		httpClient:    &http.Client{Timeout: 10 * time.Second},
	}
}

type whatsAppText struct {
	Body string `json:"body"`
}

type whatsAppMessage struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             whatsAppText `json:"text"`
}

// Send delivers one text message to a phone number. Callers treat failures
// as logged-and-dropped; there is no retry at this layer.
func (c *WhatsAppClient) Send(to, text string) error {
	payload := whatsAppMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             whatsAppText{Body: text},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("whatsapp send to %s failed: status %d: %s", to, resp.StatusCode, detail)
	}

	return nil
}
