package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dimitrije/strata-api/internal/database"
	"github.com/dimitrije/strata-api/internal/models"
)

var (
	ErrCollectionNotFound  = errors.New("collection not found")
	ErrCollectionSlugTaken = errors.New("collection slug already in use")
)

type CollectionService struct {
	db *database.DB
}

func NewCollectionService(db *database.DB) *CollectionService {
	return &CollectionService{db: db}
}

const collectionColumns = `id, uuid, project_id, name, slug, sort_order, is_singleton, created_at, updated_at, deleted_at`

func scanCollection(row pgx.Row) (*models.Collection, error) {
	var c models.Collection
	err := row.Scan(
		&c.ID, &c.UUID, &c.ProjectID, &c.Name, &c.Slug, &c.Order,
		&c.IsSingleton, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CollectionService) Create(ctx context.Context, projectID int64, name, slug string, isSingleton bool) (*models.Collection, error) {
	collection, err := scanCollection(s.db.Pool.QueryRow(ctx, `
		INSERT INTO collections (project_id, name, slug, is_singleton, sort_order)
		VALUES ($1, $2, $3, $4,
			(SELECT COALESCE(MAX(sort_order), 0) + 1 FROM collections WHERE project_id = $1 AND deleted_at IS NULL))
		RETURNING `+collectionColumns+`
	`, projectID, name, slug, isSingleton))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrCollectionSlugTaken
		}
		return nil, err
	}
	return collection, nil
}

func (s *CollectionService) GetByUUID(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	collection, err := scanCollection(s.db.Pool.QueryRow(ctx, `
		SELECT `+collectionColumns+` FROM collections
		WHERE uuid = $1 AND deleted_at IS NULL
	`, id))
	if err == pgx.ErrNoRows {
		return nil, ErrCollectionNotFound
	}
	if err != nil {
		return nil, err
	}
	return collection, nil
}

func (s *CollectionService) GetByID(ctx context.Context, id int64) (*models.Collection, error) {
	collection, err := scanCollection(s.db.Pool.QueryRow(ctx, `
		SELECT `+collectionColumns+` FROM collections
		WHERE id = $1 AND deleted_at IS NULL
	`, id))
	if err == pgx.ErrNoRows {
		return nil, ErrCollectionNotFound
	}
	if err != nil {
		return nil, err
	}
	return collection, nil
}

func (s *CollectionService) GetBySlug(ctx context.Context, projectID int64, slug string) (*models.Collection, error) {
	collection, err := scanCollection(s.db.Pool.QueryRow(ctx, `
		SELECT `+collectionColumns+` FROM collections
		WHERE project_id = $1 AND slug = $2 AND deleted_at IS NULL
	`, projectID, slug))
	if err == pgx.ErrNoRows {
		return nil, ErrCollectionNotFound
	}
	if err != nil {
		return nil, err
	}
	return collection, nil
}

func (s *CollectionService) ListByProject(ctx context.Context, projectID int64) ([]models.Collection, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+collectionColumns+` FROM collections
		WHERE project_id = $1 AND deleted_at IS NULL
		ORDER BY sort_order ASC, id ASC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var collections []models.Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		collections = append(collections, *c)
	}
	return collections, rows.Err()
}

func (s *CollectionService) Update(ctx context.Context, id int64, name *string, isSingleton *bool) (*models.Collection, error) {
	collection, err := scanCollection(s.db.Pool.QueryRow(ctx, `
		UPDATE collections
		SET name = COALESCE($1::VARCHAR, name),
			is_singleton = COALESCE($2::BOOLEAN, is_singleton),
			updated_at = NOW()
		WHERE id = $3 AND deleted_at IS NULL
		RETURNING `+collectionColumns+`
	`, name, isSingleton, id))
	if err == pgx.ErrNoRows {
		return nil, ErrCollectionNotFound
	}
	if err != nil {
		return nil, err
	}
	return collection, nil
}

// SoftDelete trashes a collection. Its slug is freed for reuse because the
// uniqueness index only covers live rows.
func (s *CollectionService) SoftDelete(ctx context.Context, id int64) error {
	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE collections SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCollectionNotFound
	}
	return nil
}

// ForceDelete removes a collection and, via cascades, its fields, entries and
// all their value rows.
func (s *CollectionService) ForceDelete(ctx context.Context, id int64) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM collections WHERE id = $1`, id)
	return err
}
