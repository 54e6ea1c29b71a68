package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"donna/internal/events"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrNoGeminiKey is returned when the extractor cannot be configured
var ErrNoGeminiKey = errors.New("GEMINI_API_KEY environment variable not set")

const extractionPrompt = `You are an event parsing assistant. Analyze the following text and extract
the event title, deadline (as an ISO 8601 UTC string), and priority.

Priority must be "high", "medium", or "low". Default to "medium".
Assume the current year is %d.
If no specific time is mentioned, default to 5:00 PM in the user's timezone.
For deadlines like "tomorrow", calculate the date based on today: %s

Respond ONLY with a JSON object with keys "title", "deadline_utc" and "priority".

Text: "%s"`

// Extractor turns free-form task descriptions into structured events using
// Gemini. The model output carries no determinism guarantee; everything it
// returns is re-validated by the resolver.
type Extractor struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewExtractor builds a Gemini-backed extractor from the environment
func NewExtractor(ctx context.Context) (*Extractor, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoGeminiKey
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-2.5-flash")
	model.ResponseMIMEType = "application/json"

	return &Extractor{client: client, model: model}, nil
}

// Extract asks the model for a structured event. Nil fields in the result
// are expected and handled downstream; malformed or empty model output is a
// total failure.
func (e *Extractor) Extract(ctx context.Context, text string) (*events.ExtractedEvent, error) {
	now := time.Now()
	prompt := fmt.Sprintf(extractionPrompt, now.Year(), now.Format(time.RFC3339), text)

	resp, err := e.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	raw := firstText(resp)
	if raw == "" {
		return nil, errors.New("gemini returned an empty response")
	}

	var extracted events.ExtractedEvent
	if err := json.Unmarshal([]byte(raw), &extracted); err != nil {
		return nil, fmt.Errorf("gemini returned malformed JSON: %w", err)
	}
	return &extracted, nil
}

// Close releases the underlying API client
func (e *Extractor) Close() error {
	return e.client.Close()
}

func firstText(resp *genai.GenerateContentResponse) string {
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				return string(text)
			}
		}
	}
	return ""
}
