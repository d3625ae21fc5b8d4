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
	ErrProjectNotFound = errors.New("project not found")
	ErrProjectSlugTaken = errors.New("project slug already in use")
)

type ProjectService struct {
	db *database.DB
}

func NewProjectService(db *database.DB) *ProjectService {
	return &ProjectService{db: db}
}

func (s *ProjectService) Create(ctx context.Context, name, slug string, ownerID int64) (*models.Project, error) {
	var project models.Project
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO projects (name, slug, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, uuid, name, slug, owner_id, created_at, updated_at
	`, name, slug, ownerID).Scan(
		&project.ID, &project.UUID, &project.Name, &project.Slug,
		&project.OwnerID, &project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrProjectSlugTaken
		}
		return nil, err
	}
	return &project, nil
}

func (s *ProjectService) GetByUUID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, uuid, name, slug, owner_id, created_at, updated_at
		FROM projects WHERE uuid = $1
	`, id).Scan(
		&project.ID, &project.UUID, &project.Name, &project.Slug,
		&project.OwnerID, &project.CreatedAt, &project.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *ProjectService) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	var project models.Project
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, uuid, name, slug, owner_id, created_at, updated_at
		FROM projects WHERE id = $1
	`, id).Scan(
		&project.ID, &project.UUID, &project.Name, &project.Slug,
		&project.OwnerID, &project.CreatedAt, &project.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// GetOwned resolves a project by uuid only when it belongs to the given
// user. Used by the management handlers as the access check.
func (s *ProjectService) GetOwned(ctx context.Context, projectID, userID uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := s.db.Pool.QueryRow(ctx, `
		SELECT p.id, p.uuid, p.name, p.slug, p.owner_id, p.created_at, p.updated_at
		FROM projects p
		JOIN users u ON u.id = p.owner_id
		WHERE p.uuid = $1 AND u.uuid = $2
	`, projectID, userID).Scan(
		&project.ID, &project.UUID, &project.Name, &project.Slug,
		&project.OwnerID, &project.CreatedAt, &project.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// OwnedByID is the internal-id counterpart of GetOwned, used when a child
// row already carries the project's internal id.
func (s *ProjectService) OwnedByID(ctx context.Context, projectID int64, userID uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := s.db.Pool.QueryRow(ctx, `
		SELECT p.id, p.uuid, p.name, p.slug, p.owner_id, p.created_at, p.updated_at
		FROM projects p
		JOIN users u ON u.id = p.owner_id
		WHERE p.id = $1 AND u.uuid = $2
	`, projectID, userID).Scan(
		&project.ID, &project.UUID, &project.Name, &project.Slug,
		&project.OwnerID, &project.CreatedAt, &project.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *ProjectService) ListByOwner(ctx context.Context, ownerID int64) ([]models.Project, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, uuid, name, slug, owner_id, created_at, updated_at
		FROM projects WHERE owner_id = $1
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.UUID, &p.Name, &p.Slug, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *ProjectService) Update(ctx context.Context, id int64, name string) (*models.Project, error) {
	var project models.Project
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE projects SET name = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, uuid, name, slug, owner_id, created_at, updated_at
	`, name, id).Scan(
		&project.ID, &project.UUID, &project.Name, &project.Slug,
		&project.OwnerID, &project.CreatedAt, &project.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *ProjectService) Delete(ctx context.Context, id int64) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	return err
}
