package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dimitrije/strata-api/internal/database"
	"github.com/dimitrije/strata-api/internal/models"
)

var ErrAssetNotFound = errors.New("asset not found")

type AssetService struct {
	db *database.DB
}

func NewAssetService(db *database.DB) *AssetService {
	return &AssetService{db: db}
}

const assetColumns = `id, uuid, project_id, filename, mime_type, size, path, thumbnail_path, metadata, created_at`

func scanAsset(row pgx.Row) (*models.Asset, error) {
	var a models.Asset
	err := row.Scan(
		&a.ID, &a.UUID, &a.ProjectID, &a.Filename, &a.MimeType, &a.Size,
		&a.Path, &a.ThumbnailPath, &a.Metadata, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Register records an asset's metadata. The file itself lives behind the
// storage layer; only the path is tracked here.
func (s *AssetService) Register(ctx context.Context, projectID int64, filename, mimeType string, size int64, path string, thumbnailPath *string, metadata json.RawMessage) (*models.Asset, error) {
	asset, err := scanAsset(s.db.Pool.QueryRow(ctx, `
		INSERT INTO assets (project_id, filename, mime_type, size, path, thumbnail_path, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+assetColumns+`
	`, projectID, filename, mimeType, size, path, thumbnailPath, metadata))
	if err != nil {
		return nil, err
	}
	return asset, nil
}

func (s *AssetService) GetByUUID(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	asset, err := scanAsset(s.db.Pool.QueryRow(ctx, `
		SELECT `+assetColumns+` FROM assets WHERE uuid = $1
	`, id))
	if err == pgx.ErrNoRows {
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, err
	}
	return asset, nil
}

func (s *AssetService) ListByProject(ctx context.Context, projectID int64) ([]models.Asset, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+assetColumns+` FROM assets WHERE project_id = $1 ORDER BY created_at DESC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []models.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, *a)
	}
	return assets, rows.Err()
}

func (s *AssetService) Delete(ctx context.Context, id int64) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM assets WHERE id = $1`, id)
	return err
}
