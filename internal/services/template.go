package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dimitrije/strata-api/internal/content"
	"github.com/dimitrije/strata-api/internal/database"
	"github.com/dimitrije/strata-api/internal/models"
	"github.com/dimitrije/strata-api/internal/schema"
	"github.com/dimitrije/strata-api/internal/template"
	"github.com/dimitrije/strata-api/pkg/dto"
)

var (
	ErrTemplateNotFound  = errors.New("template not found")
	ErrTemplateSlugTaken = errors.New("template slug already in use")
)

type TemplateService struct {
	db *database.DB
}

func NewTemplateService(db *database.DB) *TemplateService {
	return &TemplateService{db: db}
}

// ExportProject builds the portable document for a project and persists it as
// a reusable template row.
func (s *TemplateService) ExportProject(ctx context.Context, project *models.Project, name, slug, description string, includeContent bool) (*models.ProjectTemplate, error) {
	data, err := s.loadProjectData(ctx, project.ID, includeContent)
	if err != nil {
		return nil, err
	}

	doc := template.BuildProjectTemplate(data, name, slug, description, includeContent)
	blob, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode template document: %w", err)
	}

	var t models.ProjectTemplate
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO project_templates (slug, name, description, has_demo_data, data)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, uuid, slug, name, description, has_demo_data, data, created_at, updated_at
	`, doc.Slug, doc.Name, doc.Description, doc.HasDemoData, blob).Scan(
		&t.ID, &t.UUID, &t.Slug, &t.Name, &t.Description, &t.HasDemoData,
		&t.Data, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrTemplateSlugTaken
		}
		return nil, err
	}
	return &t, nil
}

// ExportCollection builds the document for a single collection. The slug map
// spans the whole project so in-project relation targets externalize; targets
// outside it keep their numeric id.
func (s *TemplateService) ExportCollection(ctx context.Context, collection *models.Collection, name, description string, includeContent bool) (*models.CollectionTemplate, error) {
	data, err := s.loadProjectData(ctx, collection.ProjectID, includeContent)
	if err != nil {
		return nil, err
	}

	slugByID := make(map[int64]string, len(data.Collections))
	for _, c := range data.Collections {
		slugByID[c.ID] = c.Slug
	}

	doc := template.BuildCollectionTemplate(collection, data.Trees[collection.ID], slugByID, data, includeContent)
	if name != "" {
		doc.Name = name
	}
	doc.Description = description
	blob, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode template document: %w", err)
	}

	var t models.CollectionTemplate
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO collection_templates (name, description, data)
		VALUES ($1, $2, $3)
		RETURNING id, uuid, name, description, data, created_at, updated_at
	`, doc.Name, description, blob).Scan(
		&t.ID, &t.UUID, &t.Name, &t.Description, &t.Data, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TemplateService) GetByUUID(ctx context.Context, id uuid.UUID) (*models.ProjectTemplate, error) {
	var t models.ProjectTemplate
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, uuid, slug, name, description, has_demo_data, data, created_at, updated_at
		FROM project_templates WHERE uuid = $1
	`, id).Scan(
		&t.ID, &t.UUID, &t.Slug, &t.Name, &t.Description, &t.HasDemoData,
		&t.Data, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TemplateService) List(ctx context.Context) ([]models.ProjectTemplate, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, uuid, slug, name, description, has_demo_data, data, created_at, updated_at
		FROM project_templates ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []models.ProjectTemplate
	for rows.Next() {
		var t models.ProjectTemplate
		if err := rows.Scan(
			&t.ID, &t.UUID, &t.Slug, &t.Name, &t.Description, &t.HasDemoData,
			&t.Data, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (s *TemplateService) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM project_templates WHERE uuid = $1`, id)
	return err
}

// Apply rehydrates a template document into a project: collections first,
// then fields with relation slugs internalized against the fresh ids, then
// demo entries with symbolic relation references rewired.
func (s *TemplateService) Apply(ctx context.Context, project *models.Project, doc *dto.TemplateDocument) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	idBySlug := make(map[string]int64, len(doc.Collections))
	collectionBySlug := make(map[string]*models.Collection, len(doc.Collections))
	for i, c := range doc.Collections {
		var collection models.Collection
		err := tx.QueryRow(ctx, `
			INSERT INTO collections (project_id, name, slug, is_singleton, sort_order)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, uuid, project_id, name, slug, sort_order, is_singleton, created_at, updated_at, deleted_at
		`, project.ID, c.Name, c.Slug, c.IsSingleton, i+1).Scan(
			&collection.ID, &collection.UUID, &collection.ProjectID, &collection.Name,
			&collection.Slug, &collection.Order, &collection.IsSingleton,
			&collection.CreatedAt, &collection.UpdatedAt, &collection.DeletedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrCollectionSlugTaken
			}
			return err
		}
		idBySlug[c.Slug] = collection.ID
		collectionBySlug[c.Slug] = &collection
	}

	for _, c := range doc.Collections {
		collectionID := idBySlug[c.Slug]
		for order, f := range c.Fields {
			fieldID, err := insertTemplateField(ctx, tx, project.ID, collectionID, nil, &f, order+1, idBySlug)
			if err != nil {
				return err
			}
			for childOrder, child := range f.Children {
				if _, err := insertTemplateField(ctx, tx, project.ID, collectionID, &fieldID, &child, childOrder+1, idBySlug); err != nil {
					return err
				}
			}
		}
	}

	if len(doc.DemoData) > 0 {
		if err := s.applyDemoData(ctx, tx, collectionBySlug, doc.DemoData); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit template apply: %w", err)
	}
	return nil
}

func insertTemplateField(ctx context.Context, tx pgx.Tx, projectID, collectionID int64, parentID *int64, f *dto.TemplateField, order int, idBySlug map[string]int64) (int64, error) {
	opts := schema.DecodeOptions(f.Options)
	schema.InternalizeRelationTarget(&opts, idBySlug)
	options := schema.EncodeOptions(opts)

	validations := f.Validations
	if validations == nil {
		validations = json.RawMessage("{}")
	}

	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO fields (project_id, collection_id, parent_field_id, type, label, name,
			description, placeholder, options, validations, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`, projectID, collectionID, parentID, f.Type, f.Label, f.Name,
		f.Description, f.Placeholder, options, validations, order).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create field %q: %w", f.Name, err)
	}
	return id, nil
}

// applyDemoData creates all entries first so every symbolic id has a real
// target, then writes field values with relation references rewired.
func (s *TemplateService) applyDemoData(ctx context.Context, tx pgx.Tx, collectionBySlug map[string]*models.Collection, demoData []dto.TemplateDemoData) error {
	type pendingEntry struct {
		entry      *models.ContentEntry
		collection *models.Collection
		fields     map[string]any
	}

	uuidBySymbolic := make(map[string]uuid.UUID)
	var pending []pendingEntry

	for _, block := range demoData {
		collection, ok := collectionBySlug[block.Collection]
		if !ok {
			continue
		}
		for _, e := range block.Entries {
			status := models.EntryStatus(e.Status)
			if status != models.EntryPublished {
				status = models.EntryDraft
			}
			locale := e.Locale
			if locale == "" {
				locale = "en"
			}

			entry, err := scanEntryRow(tx.QueryRow(ctx, `
				INSERT INTO content_entries (project_id, collection_id, locale, status, published_at)
				VALUES ($1, $2, $3, $4, CASE WHEN $4 = 'published' THEN NOW() END)
				RETURNING `+entryColumns+`
			`, collection.ProjectID, collection.ID, locale, status))
			if err != nil {
				return err
			}
			uuidBySymbolic[e.ID] = entry.UUID
			pending = append(pending, pendingEntry{entry: entry, collection: collection, fields: e.Fields})
		}
	}

	for _, p := range pending {
		tree, err := content.LoadFieldTree(ctx, tx, p.collection.ID)
		if err != nil {
			return err
		}
		input := rewireRelations(tree, p.fields, uuidBySymbolic)
		if err := content.ReplaceEntryValues(ctx, tx, p.entry, tree, input); err != nil {
			return err
		}
	}
	return nil
}

// rewireRelations swaps symbolic entry references for the fresh entry uuids.
// References that never got a target are dropped.
func rewireRelations(tree []schema.FieldNode, fields map[string]any, uuidBySymbolic map[string]uuid.UUID) map[string]any {
	input := make(map[string]any, len(fields))
	for k, v := range fields {
		input[k] = v
	}

	for _, node := range tree {
		if node.Field.Type != models.FieldRelation {
			continue
		}
		v, ok := input[node.Field.Name]
		if !ok {
			continue
		}

		var refs []any
		switch val := v.(type) {
		case []any:
			refs = val
		case string:
			refs = []any{val}
		default:
			continue
		}

		rewired := make([]any, 0, len(refs))
		for _, ref := range refs {
			sym, ok := ref.(string)
			if !ok {
				continue
			}
			if id, ok := uuidBySymbolic[sym]; ok {
				rewired = append(rewired, id.String())
			}
		}
		input[node.Field.Name] = rewired
	}
	return input
}

// loadProjectData gathers everything the builder needs in one pass.
func (s *TemplateService) loadProjectData(ctx context.Context, projectID int64, includeContent bool) (*template.ProjectData, error) {
	data := &template.ProjectData{
		Trees:     make(map[int64][]schema.FieldNode),
		Entries:   make(map[int64][]models.ContentEntry),
		Values:    make(map[int64][]models.FieldValue),
		Groups:    make(map[int64][]models.FieldGroupInstance),
		Relations: make(map[int64][]models.EntryRelation),
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+collectionColumns+` FROM collections
		WHERE project_id = $1 AND deleted_at IS NULL
		ORDER BY sort_order ASC, id ASC
	`, projectID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		data.Collections = append(data.Collections, *c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, c := range data.Collections {
		tree, err := content.LoadFieldTree(ctx, s.db.Pool, c.ID)
		if err != nil {
			return nil, err
		}
		data.Trees[c.ID] = tree
	}

	if !includeContent {
		return data, nil
	}

	for _, c := range data.Collections {
		entries, err := s.loadEntries(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		data.Entries[c.ID] = entries

		for _, e := range entries {
			values, err := content.LoadEntryValues(ctx, s.db.Pool, e.ID)
			if err != nil {
				return nil, err
			}
			data.Values[e.ID] = values

			groups, err := content.LoadEntryGroups(ctx, s.db.Pool, e.ID)
			if err != nil {
				return nil, err
			}
			data.Groups[e.ID] = groups

			for _, v := range values {
				if v.FieldType != models.FieldRelation {
					continue
				}
				relations, err := s.loadRelations(ctx, v.ID)
				if err != nil {
					return nil, err
				}
				data.Relations[v.ID] = relations
			}
		}
	}
	return data, nil
}

func (s *TemplateService) loadEntries(ctx context.Context, collectionID int64) ([]models.ContentEntry, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+entryColumns+` FROM content_entries
		WHERE collection_id = $1 AND deleted_at IS NULL
		ORDER BY id ASC
	`, collectionID)
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

func (s *TemplateService) loadRelations(ctx context.Context, valueID int64) ([]models.EntryRelation, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, value_id, related_entry_id, sort_order
		FROM content_relation_field_relations
		WHERE value_id = $1
		ORDER BY sort_order ASC, id ASC
	`, valueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var relations []models.EntryRelation
	for rows.Next() {
		var r models.EntryRelation
		if err := rows.Scan(&r.ID, &r.ValueID, &r.RelatedEntryID, &r.SortOrder); err != nil {
			return nil, err
		}
		relations = append(relations, r)
	}
	return relations, rows.Err()
}
