package models

import (
	"time"

	"github.com/google/uuid"
)

type Collection struct {
	ID          int64      `json:"-"`
	UUID        uuid.UUID  `json:"id"`
	ProjectID   int64      `json:"-"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Order       int        `json:"order"`
	IsSingleton bool       `json:"is_singleton"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}
