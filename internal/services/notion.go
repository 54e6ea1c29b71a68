package services

import (
	"context"
	"fmt"
	"time"

	"donna/internal/models"

	"github.com/jomei/notionapi"
)

// NotionSyncer creates pages in each user's own Notion database. Credentials
// come from the profile, so the client is built per call rather than shared.
type NotionSyncer struct{}

// NewNotionSyncer creates a Notion syncer
func NewNotionSyncer() *NotionSyncer {
	return &NotionSyncer{}
}

// SyncEvent creates one page with Title/Deadline/Priority properties in the
// user's configured database
func (s *NotionSyncer) SyncEvent(profile *models.Profile, title string, deadline time.Time, priority string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := notionapi.NewClient(notionapi.Token(profile.NotionAPIKey))
	start := notionapi.Date(deadline)

	_, err := client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(profile.NotionDatabaseID),
		},
		Properties: notionapi.Properties{
			"Title": notionapi.TitleProperty{
				Title: []notionapi.RichText{
					{Text: &notionapi.Text{Content: title}},
				},
			},
			"Deadline": notionapi.DateProperty{
				Date: &notionapi.DateObject{Start: &start},
			},
			"Priority": notionapi.SelectProperty{
				Select: notionapi.Option{Name: priority},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create Notion page: %w", err)
	}
	return nil
}
