package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dimitrije/strata-api/internal/database"
	"github.com/dimitrije/strata-api/internal/models"
)

var (
	ErrAPIKeyNotFound = errors.New("api key not found")
	ErrAPIKeyRevoked  = errors.New("api key has been revoked")
	ErrAPIKeyExpired  = errors.New("api key has expired")
)

const (
	apiKeyPrefix    = "str_"
	apiKeyRandomLen = 32
)

type APIKeyService struct {
	db *database.DB
}

func NewAPIKeyService(db *database.DB) *APIKeyService {
	return &APIKeyService{db: db}
}

// GenerateAPIKey builds a key of the form str_<project_prefix>_<random hex>.
// Only the sha256 hash is stored.
func (s *APIKeyService) GenerateAPIKey(projectUUID uuid.UUID) (plainKey, keyHash, keyPrefix string) {
	projectPrefix := projectUUID.String()[:8]
	projectPrefix = projectPrefix[:4] + projectPrefix[5:8]

	randomBytes := make([]byte, apiKeyRandomLen)
	_, _ = rand.Read(randomBytes)
	randomPart := hex.EncodeToString(randomBytes)

	plainKey = apiKeyPrefix + projectPrefix + "_" + randomPart
	keyPrefix = apiKeyPrefix + projectPrefix + "..."

	hash := sha256.Sum256([]byte(plainKey))
	keyHash = hex.EncodeToString(hash[:])

	return plainKey, keyHash, keyPrefix
}

func (s *APIKeyService) Create(ctx context.Context, project *models.Project, name string, createdBy int64, expiresAt *time.Time) (*models.ProjectAPIKey, string, error) {
	plainKey, keyHash, keyPrefix := s.GenerateAPIKey(project.UUID)

	var apiKey models.ProjectAPIKey
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO project_api_keys (project_id, name, key_hash, key_prefix, created_by, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, uuid, project_id, name, key_hash, key_prefix, created_by, expires_at, revoked_at, last_used_at, created_at
	`, project.ID, name, keyHash, keyPrefix, createdBy, expiresAt).Scan(
		&apiKey.ID, &apiKey.UUID, &apiKey.ProjectID, &apiKey.Name, &apiKey.KeyHash,
		&apiKey.KeyPrefix, &apiKey.CreatedBy, &apiKey.ExpiresAt,
		&apiKey.RevokedAt, &apiKey.LastUsedAt, &apiKey.CreatedAt,
	)
	if err != nil {
		return nil, "", err
	}

	return &apiKey, plainKey, nil
}

// ValidateAndGetProject checks a presented key and returns the project id it
// grants access to.
func (s *APIKeyService) ValidateAndGetProject(ctx context.Context, key string) (int64, error) {
	hash := sha256.Sum256([]byte(key))
	keyHash := hex.EncodeToString(hash[:])

	var (
		id        int64
		projectID int64
		expiresAt *time.Time
		revokedAt *time.Time
	)
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, project_id, expires_at, revoked_at
		FROM project_api_keys WHERE key_hash = $1
	`, keyHash).Scan(&id, &projectID, &expiresAt, &revokedAt)
	if err != nil {
		return 0, ErrAPIKeyNotFound
	}

	if revokedAt != nil {
		return 0, ErrAPIKeyRevoked
	}
	if expiresAt != nil && expiresAt.Before(time.Now()) {
		return 0, ErrAPIKeyExpired
	}

	_, _ = s.db.Pool.Exec(ctx, `UPDATE project_api_keys SET last_used_at = NOW() WHERE id = $1`, id)

	return projectID, nil
}

func (s *APIKeyService) ListByProject(ctx context.Context, projectID int64) ([]models.ProjectAPIKey, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, uuid, project_id, name, key_hash, key_prefix, created_by, expires_at, revoked_at, last_used_at, created_at
		FROM project_api_keys WHERE project_id = $1
		ORDER BY created_at DESC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []models.ProjectAPIKey
	for rows.Next() {
		var k models.ProjectAPIKey
		if err := rows.Scan(
			&k.ID, &k.UUID, &k.ProjectID, &k.Name, &k.KeyHash, &k.KeyPrefix,
			&k.CreatedBy, &k.ExpiresAt, &k.RevokedAt, &k.LastUsedAt, &k.CreatedAt,
		); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *APIKeyService) Revoke(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE project_api_keys SET revoked_at = NOW() WHERE uuid = $1 AND revoked_at IS NULL
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAPIKeyNotFound
	}
	return nil
}
