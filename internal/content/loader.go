package content

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dimitrije/strata-api/internal/models"
	"github.com/dimitrije/strata-api/internal/schema"
)

// Querier is satisfied by both the pool and a transaction.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const fieldColumns = `id, uuid, project_id, collection_id, parent_field_id, type, label, name,
	description, placeholder, options, validations, sort_order, created_at, updated_at, deleted_at`

const entryColumns = `id, uuid, project_id, collection_id, locale, status, published_at,
	translation_group_id, created_by, updated_by, created_at, updated_at, deleted_at`

// LoadFieldTree loads a collection's live fields and resolves them into the
// ordered tree.
func LoadFieldTree(ctx context.Context, q Querier, collectionID int64) ([]schema.FieldNode, error) {
	rows, err := q.Query(ctx, `
		SELECT `+fieldColumns+`
		FROM fields
		WHERE collection_id = $1 AND deleted_at IS NULL
		ORDER BY sort_order ASC, id ASC
	`, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load fields: %w", err)
	}
	defer rows.Close()

	var fields []models.Field
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return schema.ResolveFieldTree(fields), nil
}

func scanField(row pgx.Row) (models.Field, error) {
	var f models.Field
	err := row.Scan(
		&f.ID, &f.UUID, &f.ProjectID, &f.CollectionID, &f.ParentFieldID,
		&f.Type, &f.Label, &f.Name, &f.Description, &f.Placeholder,
		&f.Options, &f.Validations, &f.Order, &f.CreatedAt, &f.UpdatedAt, &f.DeletedAt,
	)
	if err != nil {
		return f, fmt.Errorf("failed to scan field: %w", err)
	}
	return f, nil
}

// LoadEntryValues loads all value rows of one entry in stored order.
func LoadEntryValues(ctx context.Context, q Querier, entryID int64) ([]models.FieldValue, error) {
	rows, err := q.Query(ctx, `
		SELECT id, uuid, project_id, collection_id, entry_id, field_id, group_id, field_type, sort_order,
			text_value, number_value, boolean_value,
			date_value, date_value_end, datetime_value, datetime_value_end, json_value
		FROM content_field_values
		WHERE entry_id = $1
		ORDER BY sort_order ASC, id ASC
	`, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load field values: %w", err)
	}
	defer rows.Close()

	var values []models.FieldValue
	for rows.Next() {
		var v models.FieldValue
		if err := rows.Scan(
			&v.ID, &v.UUID, &v.ProjectID, &v.CollectionID, &v.EntryID, &v.FieldID, &v.GroupID,
			&v.FieldType, &v.SortOrder,
			&v.TextValue, &v.NumberValue, &v.BooleanValue,
			&v.DateValue, &v.DateValueEnd, &v.DatetimeValue, &v.DatetimeValueEnd, &v.JSONValue,
		); err != nil {
			return nil, fmt.Errorf("failed to scan field value: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// LoadEntryGroups loads an entry's group instances in stored order.
func LoadEntryGroups(ctx context.Context, q Querier, entryID int64) ([]models.FieldGroupInstance, error) {
	rows, err := q.Query(ctx, `
		SELECT id, uuid, project_id, collection_id, entry_id, field_id, sort_order
		FROM content_field_groups
		WHERE entry_id = $1
		ORDER BY sort_order ASC, id ASC
	`, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group instances: %w", err)
	}
	defer rows.Close()

	var groups []models.FieldGroupInstance
	for rows.Next() {
		var g models.FieldGroupInstance
		if err := rows.Scan(&g.ID, &g.UUID, &g.ProjectID, &g.CollectionID, &g.EntryID, &g.FieldID, &g.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan group instance: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func scanEntry(row pgx.Row) (models.ContentEntry, error) {
	var e models.ContentEntry
	err := row.Scan(
		&e.ID, &e.UUID, &e.ProjectID, &e.CollectionID, &e.Locale, &e.Status, &e.PublishedAt,
		&e.TranslationGroupID, &e.CreatedBy, &e.UpdatedBy, &e.CreatedAt, &e.UpdatedAt, &e.DeletedAt,
	)
	if err != nil {
		return e, fmt.Errorf("failed to scan entry: %w", err)
	}
	return e, nil
}
