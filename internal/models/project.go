package models

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID        int64     `json:"-"`
	UUID      uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	OwnerID   int64     `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
