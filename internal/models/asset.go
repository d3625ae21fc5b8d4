package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Asset struct {
	ID            int64           `json:"-"`
	UUID          uuid.UUID       `json:"id"`
	ProjectID     int64           `json:"-"`
	Filename      string          `json:"filename"`
	MimeType      string          `json:"mime_type"`
	Size          int64           `json:"size"`
	Path          string          `json:"path"`
	ThumbnailPath *string         `json:"thumbnail_path,omitempty"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
