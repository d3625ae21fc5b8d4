package content

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dimitrije/strata-api/internal/models"
	"github.com/dimitrije/strata-api/internal/schema"
)

// ReplaceEntryValues rewrites the complete value set of one entry inside the
// caller's transaction. The entry's existing value rows, group instances and
// join rows are dropped and rebuilt from input, so a failure anywhere leaves
// the previous state intact when the caller rolls back.
//
// input is keyed by field name. Fields absent from input store nothing;
// explicit nulls store nothing either. Zero, false and empty string are real
// values.
func ReplaceEntryValues(ctx context.Context, tx pgx.Tx, entry *models.ContentEntry, tree []schema.FieldNode, input map[string]any) error {
	if _, err := tx.Exec(ctx, `DELETE FROM content_field_values WHERE entry_id = $1`, entry.ID); err != nil {
		return fmt.Errorf("failed to clear field values: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM content_field_groups WHERE entry_id = $1`, entry.ID); err != nil {
		return fmt.Errorf("failed to clear group instances: %w", err)
	}

	for _, node := range tree {
		v, ok := input[node.Field.Name]
		if !ok || v == nil {
			continue
		}
		if err := writeField(ctx, tx, entry, node, nil, v); err != nil {
			return fmt.Errorf("field %q: %w", node.Field.Name, err)
		}
	}
	return nil
}

func writeField(ctx context.Context, tx pgx.Tx, entry *models.ContentEntry, node schema.FieldNode, groupID *int64, v any) error {
	switch node.Field.Type {
	case models.FieldGroup:
		return writeGroup(ctx, tx, entry, node, v)

	case models.FieldRelation:
		return writeRelation(ctx, tx, entry, node, groupID, v)

	case models.FieldMedia:
		return writeMedia(ctx, tx, entry, node, groupID, v)

	default:
		if node.Options.Repeatable {
			list, ok := v.([]any)
			if !ok {
				list = []any{v}
			}
			for i, item := range list {
				if err := writeScalar(ctx, tx, entry, node, groupID, i, item); err != nil {
					return err
				}
			}
			return nil
		}
		return writeScalar(ctx, tx, entry, node, groupID, 0, v)
	}
}

func writeScalar(ctx context.Context, tx pgx.Tx, entry *models.ContentEntry, node schema.FieldNode, groupID *int64, sortOrder int, v any) error {
	row, err := EncodeScalar(node.Field.Type, node.Options, v)
	if err != nil {
		return err
	}
	if row == nil {
		return nil
	}
	_, err = insertValueRow(ctx, tx, entry, node.Field.ID, groupID, node.Field.Type, sortOrder, row)
	return err
}

// writeGroup creates one group instance per repetition and recursively writes
// each child value against it. A non-repeatable group gets exactly one
// instance.
func writeGroup(ctx context.Context, tx pgx.Tx, entry *models.ContentEntry, node schema.FieldNode, v any) error {
	var instances []any
	if node.Options.Repeatable {
		list, ok := v.([]any)
		if !ok {
			return fmt.Errorf("repeatable group expects an array, got %T", v)
		}
		instances = list
	} else {
		instances = []any{v}
	}

	for i, instance := range instances {
		values, ok := instance.(map[string]any)
		if !ok {
			return fmt.Errorf("group instance %d: expected an object, got %T", i, instance)
		}

		var instanceID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO content_field_groups (project_id, collection_id, entry_id, field_id, sort_order)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, entry.ProjectID, entry.CollectionID, entry.ID, node.Field.ID, i).Scan(&instanceID)
		if err != nil {
			return fmt.Errorf("failed to create group instance: %w", err)
		}

		for _, child := range node.Children {
			cv, ok := values[child.Field.Name]
			if !ok || cv == nil {
				continue
			}
			if err := writeField(ctx, tx, entry, child, &instanceID, cv); err != nil {
				return fmt.Errorf("child %q: %w", child.Field.Name, err)
			}
		}
	}
	return nil
}

// writeRelation stores an anchor value row plus one ordered join row per
// selected entry. Targets are addressed by entry uuid; unknown or deleted
// targets are skipped, not errors.
func writeRelation(ctx context.Context, tx pgx.Tx, entry *models.ContentEntry, node schema.FieldNode, groupID *int64, v any) error {
	refs := asUUIDList(v)
	if refs == nil {
		return nil
	}

	valueID, err := insertValueRow(ctx, tx, entry, node.Field.ID, groupID, models.FieldRelation, 0, &models.FieldValue{})
	if err != nil {
		return err
	}

	pos := 0
	for _, ref := range refs {
		var relatedID int64
		err := tx.QueryRow(ctx, `
			SELECT id FROM content_entries WHERE uuid = $1 AND deleted_at IS NULL
		`, ref).Scan(&relatedID)
		if err == pgx.ErrNoRows {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to resolve related entry %s: %w", ref, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO content_relation_field_relations (value_id, related_entry_id, sort_order)
			VALUES ($1, $2, $3)
		`, valueID, relatedID, pos); err != nil {
			return fmt.Errorf("failed to link related entry: %w", err)
		}
		pos++
	}
	return nil
}

func writeMedia(ctx context.Context, tx pgx.Tx, entry *models.ContentEntry, node schema.FieldNode, groupID *int64, v any) error {
	refs := asUUIDList(v)
	if refs == nil {
		return nil
	}

	valueID, err := insertValueRow(ctx, tx, entry, node.Field.ID, groupID, models.FieldMedia, 0, &models.FieldValue{})
	if err != nil {
		return err
	}

	pos := 0
	for _, ref := range refs {
		var assetID int64
		err := tx.QueryRow(ctx, `SELECT id FROM assets WHERE uuid = $1`, ref).Scan(&assetID)
		if err == pgx.ErrNoRows {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to resolve asset %s: %w", ref, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO content_media_relations (value_id, asset_id, sort_order)
			VALUES ($1, $2, $3)
		`, valueID, assetID, pos); err != nil {
			return fmt.Errorf("failed to link asset: %w", err)
		}
		pos++
	}
	return nil
}

func insertValueRow(ctx context.Context, tx pgx.Tx, entry *models.ContentEntry, fieldID int64, groupID *int64, ft models.FieldType, sortOrder int, row *models.FieldValue) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO content_field_values (
			project_id, collection_id, entry_id, field_id, group_id, field_type, sort_order,
			text_value, number_value, boolean_value,
			date_value, date_value_end, datetime_value, datetime_value_end, json_value
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`, entry.ProjectID, entry.CollectionID, entry.ID, fieldID, groupID, ft, sortOrder,
		row.TextValue, row.NumberValue, row.BooleanValue,
		row.DateValue, row.DateValueEnd, row.DatetimeValue, row.DatetimeValueEnd, row.JSONValue,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert value row: %w", err)
	}
	return id, nil
}

// asUUIDList normalizes a relation/media submission to uuid strings. A bare
// string is a single selection.
func asUUIDList(v any) []uuid.UUID {
	var raw []any
	switch val := v.(type) {
	case []any:
		raw = val
	case string:
		raw = []any{val}
	default:
		return nil
	}

	refs := make([]uuid.UUID, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			continue
		}
		id, err := uuid.Parse(s)
		if err != nil {
			continue
		}
		refs = append(refs, id)
	}
	return refs
}
