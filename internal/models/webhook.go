package models

// WebhookPayload mirrors the Meta Graph API webhook envelope. Only the text
// message fields the bot reads are mapped; everything else is ignored.
type WebhookPayload struct {
	Entry []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Value WebhookValue `json:"value"`
}

type WebhookValue struct {
	Messages []WebhookMessage `json:"messages"`
}

type WebhookMessage struct {
	From string      `json:"from"`
	Type string      `json:"type"`
	Text WebhookText `json:"text"`
}

type WebhookText struct {
	Body string `json:"body"`
}

// FirstTextMessage returns the first inbound text message in the payload, or
// nil when the payload carries no messages (status callbacks etc).
func (p *WebhookPayload) FirstTextMessage() *WebhookMessage {
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			for i := range change.Value.Messages {
				msg := &change.Value.Messages[i]
				if msg.Text.Body != "" {
					return msg
				}
			}
		}
	}
	return nil
}
