package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dimitrije/strata-api/internal/content"
	"github.com/dimitrije/strata-api/internal/database"
	"github.com/dimitrije/strata-api/internal/models"
)

var (
	ErrEntryNotFound    = errors.New("entry not found")
	ErrSingletonExists  = errors.New("singleton collection already has an entry")
	ErrEntryNotTrashed  = errors.New("entry is not trashed")
)

type EntryService struct {
	db         *database.DB
	serializer *content.Serializer
}

func NewEntryService(db *database.DB, serializer *content.Serializer) *EntryService {
	return &EntryService{db: db, serializer: serializer}
}

const entryColumns = `id, uuid, project_id, collection_id, locale, status, published_at,
	translation_group_id, created_by, updated_by, created_at, updated_at, deleted_at`

func scanEntryRow(row pgx.Row) (*models.ContentEntry, error) {
	var e models.ContentEntry
	err := row.Scan(
		&e.ID, &e.UUID, &e.ProjectID, &e.CollectionID, &e.Locale, &e.Status, &e.PublishedAt,
		&e.TranslationGroupID, &e.CreatedBy, &e.UpdatedBy, &e.CreatedAt, &e.UpdatedAt, &e.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a new entry and writes its field values in one transaction.
// A failure anywhere rolls back the whole write.
func (s *EntryService) Create(ctx context.Context, collection *models.Collection, locale string, input map[string]any, userID *int64) (*models.ContentEntry, error) {
	if locale == "" {
		locale = "en"
	}

	if collection.IsSingleton {
		var count int
		err := s.db.Pool.QueryRow(ctx, `
			SELECT COUNT(*) FROM content_entries WHERE collection_id = $1 AND deleted_at IS NULL
		`, collection.ID).Scan(&count)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrSingletonExists
		}
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	entry, err := scanEntryRow(tx.QueryRow(ctx, `
		INSERT INTO content_entries (project_id, collection_id, locale, status, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING `+entryColumns+`
	`, collection.ProjectID, collection.ID, locale, models.EntryDraft, userID))
	if err != nil {
		return nil, err
	}

	tree, err := content.LoadFieldTree(ctx, tx, collection.ID)
	if err != nil {
		return nil, err
	}
	if err := content.ReplaceEntryValues(ctx, tx, entry, tree, input); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit entry write: %w", err)
	}
	return entry, nil
}

// UpdateValues replaces an entry's value set atomically.
func (s *EntryService) UpdateValues(ctx context.Context, entry *models.ContentEntry, input map[string]any, userID *int64) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE content_entries SET updated_by = $1, updated_at = NOW() WHERE id = $2
	`, userID, entry.ID); err != nil {
		return err
	}

	tree, err := content.LoadFieldTree(ctx, tx, entry.CollectionID)
	if err != nil {
		return err
	}
	if err := content.ReplaceEntryValues(ctx, tx, entry, tree, input); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit entry write: %w", err)
	}
	return nil
}

func (s *EntryService) GetByUUID(ctx context.Context, id uuid.UUID) (*models.ContentEntry, error) {
	entry, err := scanEntryRow(s.db.Pool.QueryRow(ctx, `
		SELECT `+entryColumns+` FROM content_entries WHERE uuid = $1 AND deleted_at IS NULL
	`, id))
	if err == pgx.ErrNoRows {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *EntryService) ListByCollection(ctx context.Context, collectionID int64, publishedOnly bool) ([]models.ContentEntry, error) {
	query := `
		SELECT ` + entryColumns + ` FROM content_entries
		WHERE collection_id = $1 AND deleted_at IS NULL`
	if publishedOnly {
		query += ` AND status = 'published'`
	}
	query += ` ORDER BY id ASC`

	rows, err := s.db.Pool.Query(ctx, query, collectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.ContentEntry
	for rows.Next() {
		e, err := scanEntryRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (s *EntryService) Publish(ctx context.Context, id int64) (*models.ContentEntry, error) {
	entry, err := scanEntryRow(s.db.Pool.QueryRow(ctx, `
		UPDATE content_entries
		SET status = 'published', published_at = COALESCE(published_at, NOW()), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+entryColumns+`
	`, id))
	if err == pgx.ErrNoRows {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *EntryService) Unpublish(ctx context.Context, id int64) (*models.ContentEntry, error) {
	entry, err := scanEntryRow(s.db.Pool.QueryRow(ctx, `
		UPDATE content_entries
		SET status = 'draft', published_at = NULL, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+entryColumns+`
	`, id))
	if err == pgx.ErrNoRows {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *EntryService) Trash(ctx context.Context, id int64) error {
	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE content_entries SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// ForceDelete hard-deletes an entry; value rows, group instances and join
// rows go with it via cascades.
func (s *EntryService) ForceDelete(ctx context.Context, id int64) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM content_entries WHERE id = $1`, id)
	return err
}

// Serialize produces the public nested document for one entry.
func (s *EntryService) Serialize(ctx context.Context, entry *models.ContentEntry) (map[string]any, error) {
	return s.serializer.SerializeEntry(ctx, entry)
}
