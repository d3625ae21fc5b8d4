package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateCollectionRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	IsSingleton bool   `json:"is_singleton"`
}

type UpdateCollectionRequest struct {
	Name        *string `json:"name"`
	IsSingleton *bool   `json:"is_singleton"`
}

type CollectionResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Order       int       `json:"order"`
	IsSingleton bool      `json:"is_singleton"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
