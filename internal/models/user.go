package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           int64     `json:"-"`
	UUID         uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
