package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/dimitrije/strata-api/internal/database"
	"github.com/dimitrije/strata-api/internal/models"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email: fmt.Sprintf("user%d@example.com", f.counter),
		Name:  fmt.Sprintf("Test User %d", f.counter),
	}

	for _, opt := range opts {
		opt(user)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, name, password_hash)
		VALUES ($1, $2, 'x')
		RETURNING id, uuid, email, name, password_hash, created_at, updated_at
	`, user.Email, user.Name).Scan(
		&user.ID, &user.UUID, &user.Email, &user.Name, &user.PasswordHash,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// CreateProject creates a test project owned by the given user
func (f *Fixtures) CreateProject(t *testing.T, owner *models.User) *models.Project {
	t.Helper()
	f.counter++

	project := &models.Project{
		Name:    fmt.Sprintf("Test Project %d", f.counter),
		Slug:    fmt.Sprintf("test-project-%d", f.counter),
		OwnerID: owner.ID,
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO projects (name, slug, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, uuid, name, slug, owner_id, created_at, updated_at
	`, project.Name, project.Slug, project.OwnerID).Scan(
		&project.ID, &project.UUID, &project.Name, &project.Slug,
		&project.OwnerID, &project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	return project
}

// CreateCollection creates a test collection in a project
func (f *Fixtures) CreateCollection(t *testing.T, project *models.Project, slug string) *models.Collection {
	t.Helper()
	f.counter++

	col := &models.Collection{
		ProjectID: project.ID,
		Name:      slug,
		Slug:      slug,
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO collections (project_id, name, slug, sort_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id, uuid, project_id, name, slug, sort_order, is_singleton, created_at, updated_at, deleted_at
	`, col.ProjectID, col.Name, col.Slug, f.counter).Scan(
		&col.ID, &col.UUID, &col.ProjectID, &col.Name, &col.Slug,
		&col.Order, &col.IsSingleton, &col.CreatedAt, &col.UpdatedAt, &col.DeletedAt,
	)
	if err != nil {
		t.Fatalf("failed to create collection: %v", err)
	}

	return col
}

// CreateField creates a test field in a collection
func (f *Fixtures) CreateField(t *testing.T, collection *models.Collection, name string, fieldType models.FieldType, opts ...FieldOption) *models.Field {
	t.Helper()
	f.counter++

	field := &models.Field{
		ProjectID:    collection.ProjectID,
		CollectionID: collection.ID,
		Type:         fieldType,
		Label:        name,
		Name:         name,
		Options:      json.RawMessage(`{}`),
		Validations:  json.RawMessage(`{}`),
	}

	for _, opt := range opts {
		opt(field)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO fields (project_id, collection_id, parent_field_id, type, label, name, options, validations, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, uuid, project_id, collection_id, parent_field_id, type, label, name,
			description, placeholder, options, validations, sort_order, created_at, updated_at, deleted_at
	`, field.ProjectID, field.CollectionID, field.ParentFieldID, field.Type,
		field.Label, field.Name, field.Options, field.Validations, f.counter).Scan(
		&field.ID, &field.UUID, &field.ProjectID, &field.CollectionID, &field.ParentFieldID,
		&field.Type, &field.Label, &field.Name, &field.Description, &field.Placeholder,
		&field.Options, &field.Validations, &field.Order, &field.CreatedAt, &field.UpdatedAt, &field.DeletedAt,
	)
	if err != nil {
		t.Fatalf("failed to create field: %v", err)
	}

	return field
}

// FieldOption configures a test field
type FieldOption func(*models.Field)

// WithOptions sets the field's options blob
func WithOptions(options string) FieldOption {
	return func(f *models.Field) {
		f.Options = json.RawMessage(options)
	}
}

// WithParent nests the field under a group field
func WithParent(parent *models.Field) FieldOption {
	return func(f *models.Field) {
		f.ParentFieldID = &parent.ID
	}
}
