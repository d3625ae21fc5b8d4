package models

import (
	"time"

	"github.com/google/uuid"
)

type EntryStatus string

const (
	EntryDraft     EntryStatus = "draft"
	EntryPublished EntryStatus = "published"
)

type ContentEntry struct {
	ID                 int64       `json:"-"`
	UUID               uuid.UUID   `json:"id"`
	ProjectID          int64       `json:"-"`
	CollectionID       int64       `json:"-"`
	Locale             string      `json:"locale"`
	Status             EntryStatus `json:"status"`
	PublishedAt        *time.Time  `json:"published_at,omitempty"`
	TranslationGroupID *uuid.UUID  `json:"translation_group_id,omitempty"`
	CreatedBy          *int64      `json:"-"`
	UpdatedBy          *int64      `json:"-"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
	DeletedAt          *time.Time  `json:"deleted_at,omitempty"`
}
