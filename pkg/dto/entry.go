package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateEntryRequest struct {
	Locale string         `json:"locale"`
	Fields map[string]any `json:"fields"`
}

type UpdateEntryRequest struct {
	Fields map[string]any `json:"fields"`
}

// EntryResponse carries entry metadata plus the serialized field document.
type EntryResponse struct {
	ID          uuid.UUID      `json:"id"`
	Locale      string         `json:"locale"`
	Status      string         `json:"status"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Fields      map[string]any `json:"fields"`
}
