package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventContentCreated     = "content.created"
	EventContentUpdated     = "content.updated"
	EventContentPublished   = "content.published"
	EventContentUnpublished = "content.unpublished"
	EventContentDeleted     = "content.deleted"
)

// Webhook subscribes an external URL to content events. CollectionIDs holds
// collection UUIDs; an empty list means all collections (wildcard).
type Webhook struct {
	ID            int64       `json:"-"`
	UUID          uuid.UUID   `json:"id"`
	ProjectID     int64       `json:"-"`
	Name          string      `json:"name"`
	URL           string      `json:"url"`
	Secret        string      `json:"-"`
	Events        []string    `json:"events"`
	Sources       []string    `json:"sources"`
	CollectionIDs []uuid.UUID `json:"collection_ids"`
	Enabled       bool        `json:"enabled"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}
