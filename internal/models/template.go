package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ProjectTemplate stores a portable template document: the full schema of a
// project (and optionally demo content) with all relation targets expressed
// by slug instead of live ids.
type ProjectTemplate struct {
	ID          int64           `json:"-"`
	UUID        uuid.UUID       `json:"id"`
	Slug        string          `json:"slug"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	HasDemoData bool            `json:"has_demo_data"`
	Data        json.RawMessage `json:"data"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CollectionTemplate is the single-collection counterpart.
type CollectionTemplate struct {
	ID          int64           `json:"-"`
	UUID        uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Data        json.RawMessage `json:"data"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
