package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dimitrije/strata-api/internal/content"
	"github.com/dimitrije/strata-api/internal/database"
	"github.com/dimitrije/strata-api/internal/models"
	"github.com/dimitrije/strata-api/internal/schema"
)

var (
	ErrFieldNotFound    = errors.New("field not found")
	ErrFieldNameTaken   = errors.New("field name already in use")
	ErrGroupNesting     = errors.New("group fields cannot contain group fields")
	ErrParentNotGroup   = errors.New("parent field is not a group")
)

type FieldService struct {
	db *database.DB
}

func NewFieldService(db *database.DB) *FieldService {
	return &FieldService{db: db}
}

const fieldColumns = `id, uuid, project_id, collection_id, parent_field_id, type, label, name,
	description, placeholder, options, validations, sort_order, created_at, updated_at, deleted_at`

func scanFieldRow(row pgx.Row) (*models.Field, error) {
	var f models.Field
	err := row.Scan(
		&f.ID, &f.UUID, &f.ProjectID, &f.CollectionID, &f.ParentFieldID,
		&f.Type, &f.Label, &f.Name, &f.Description, &f.Placeholder,
		&f.Options, &f.Validations, &f.Order, &f.CreatedAt, &f.UpdatedAt, &f.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

type CreateFieldParams struct {
	ProjectID     int64
	CollectionID  int64
	ParentFieldID *int64
	Type          models.FieldType
	Label         string
	Name          string
	Description   *string
	Placeholder   *string
	Options       json.RawMessage
	Validations   json.RawMessage
}

func (s *FieldService) Create(ctx context.Context, p CreateFieldParams) (*models.Field, error) {
	if p.ParentFieldID != nil {
		parent, err := s.GetByID(ctx, *p.ParentFieldID)
		if err != nil {
			return nil, err
		}
		if !parent.IsGroup() {
			return nil, ErrParentNotGroup
		}
		// Group nesting is one level deep.
		if p.Type == models.FieldGroup {
			return nil, ErrGroupNesting
		}
	}

	if p.Options == nil {
		p.Options = json.RawMessage("{}")
	}
	if p.Validations == nil {
		p.Validations = json.RawMessage("{}")
	}

	field, err := scanFieldRow(s.db.Pool.QueryRow(ctx, `
		INSERT INTO fields (project_id, collection_id, parent_field_id, type, label, name,
			description, placeholder, options, validations, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			(SELECT COALESCE(MAX(sort_order), 0) + 1 FROM fields
			 WHERE collection_id = $2 AND parent_field_id IS NOT DISTINCT FROM $3 AND deleted_at IS NULL))
		RETURNING `+fieldColumns+`
	`, p.ProjectID, p.CollectionID, p.ParentFieldID, p.Type, p.Label, p.Name,
		p.Description, p.Placeholder, p.Options, p.Validations))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrFieldNameTaken
		}
		return nil, err
	}
	return field, nil
}

func (s *FieldService) GetByID(ctx context.Context, id int64) (*models.Field, error) {
	field, err := scanFieldRow(s.db.Pool.QueryRow(ctx, `
		SELECT `+fieldColumns+` FROM fields WHERE id = $1 AND deleted_at IS NULL
	`, id))
	if err == pgx.ErrNoRows {
		return nil, ErrFieldNotFound
	}
	if err != nil {
		return nil, err
	}
	return field, nil
}

func (s *FieldService) GetByUUID(ctx context.Context, id uuid.UUID) (*models.Field, error) {
	field, err := scanFieldRow(s.db.Pool.QueryRow(ctx, `
		SELECT `+fieldColumns+` FROM fields WHERE uuid = $1 AND deleted_at IS NULL
	`, id))
	if err == pgx.ErrNoRows {
		return nil, ErrFieldNotFound
	}
	if err != nil {
		return nil, err
	}
	return field, nil
}

// ResolveTree returns the collection's ordered field tree: top-level fields
// with children attached to their group parents.
func (s *FieldService) ResolveTree(ctx context.Context, collectionID int64) ([]schema.FieldNode, error) {
	return content.LoadFieldTree(ctx, s.db.Pool, collectionID)
}

func (s *FieldService) Update(ctx context.Context, id int64, label *string, options, validations json.RawMessage) (*models.Field, error) {
	field, err := scanFieldRow(s.db.Pool.QueryRow(ctx, `
		UPDATE fields
		SET label = COALESCE($1::VARCHAR, label),
			options = COALESCE($2::JSONB, options),
			validations = COALESCE($3::JSONB, validations),
			updated_at = NOW()
		WHERE id = $4 AND deleted_at IS NULL
		RETURNING `+fieldColumns+`
	`, label, options, validations, id))
	if err == pgx.ErrNoRows {
		return nil, ErrFieldNotFound
	}
	if err != nil {
		return nil, err
	}
	return field, nil
}

func (s *FieldService) Reorder(ctx context.Context, id int64, order int) error {
	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE fields SET sort_order = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL
	`, order, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrFieldNotFound
	}
	return nil
}

// SoftDelete trashes a field and, for group fields, its children. Value rows
// stay in place; the serializer skips orphaned values.
func (s *FieldService) SoftDelete(ctx context.Context, id int64) error {
	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE fields SET deleted_at = NOW()
		WHERE (id = $1 OR parent_field_id = $1) AND deleted_at IS NULL
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrFieldNotFound
	}
	return nil
}
