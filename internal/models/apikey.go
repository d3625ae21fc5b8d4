package models

import (
	"time"

	"github.com/google/uuid"
)

type ProjectAPIKey struct {
	ID         int64      `json:"-"`
	UUID       uuid.UUID  `json:"id"`
	ProjectID  int64      `json:"-"`
	Name       string     `json:"name"`
	KeyHash    string     `json:"-"`
	KeyPrefix  string     `json:"key_prefix"`
	CreatedBy  int64      `json:"-"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
