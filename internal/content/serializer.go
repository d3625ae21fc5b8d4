package content

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/dimitrije/strata-api/internal/models"
	"github.com/dimitrije/strata-api/internal/schema"
)

// DefaultRelationDepth bounds recursive relation resolution. Relation graphs
// may be cyclic, so the budget plus a visited set is load-bearing, not
// cosmetic.
const DefaultRelationDepth = 3

// AssetProjection is the compact public shape of an asset inside serialized
// content. The raw asset row is never exposed.
type AssetProjection struct {
	ID           uuid.UUID       `json:"id"`
	Filename     string          `json:"filename"`
	MimeType     string          `json:"mime_type"`
	Size         int64           `json:"size"`
	HumanSize    string          `json:"human_size"`
	URL          string          `json:"url"`
	ThumbnailURL *string         `json:"thumbnail_url,omitempty"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
}

// Serializer reconstructs the nested public representation of an entry's
// field values. It is a pure reader.
type Serializer struct {
	q            Querier
	assetBaseURL string
	maxDepth     int
}

func NewSerializer(q Querier, assetBaseURL string) *Serializer {
	return &Serializer{q: q, assetBaseURL: assetBaseURL, maxDepth: DefaultRelationDepth}
}

// WithDepth returns a copy with a different relation resolution budget.
// Depth 0 serializes relations as stubs only.
func (s *Serializer) WithDepth(depth int) *Serializer {
	clone := *s
	clone.maxDepth = depth
	return &clone
}

// SerializeEntry produces the field-name-keyed document of one entry.
// Password-typed fields and fields marked hiddenInAPI never appear. Values
// whose field has been deleted since write are skipped.
func (s *Serializer) SerializeEntry(ctx context.Context, entry *models.ContentEntry) (map[string]any, error) {
	visited := map[int64]bool{}
	return s.serialize(ctx, entry, s.maxDepth, visited)
}

func (s *Serializer) serialize(ctx context.Context, entry *models.ContentEntry, depth int, visited map[int64]bool) (map[string]any, error) {
	visited[entry.ID] = true
	defer delete(visited, entry.ID)

	tree, err := LoadFieldTree(ctx, s.q, entry.CollectionID)
	if err != nil {
		return nil, err
	}
	values, err := LoadEntryValues(ctx, s.q, entry.ID)
	if err != nil {
		return nil, err
	}
	groups, err := LoadEntryGroups(ctx, s.q, entry.ID)
	if err != nil {
		return nil, err
	}

	topByField := make(map[int64][]models.FieldValue)
	byInstance := make(map[int64]map[int64][]models.FieldValue)
	for _, v := range values {
		if v.GroupID == nil {
			topByField[v.FieldID] = append(topByField[v.FieldID], v)
			continue
		}
		if byInstance[*v.GroupID] == nil {
			byInstance[*v.GroupID] = make(map[int64][]models.FieldValue)
		}
		byInstance[*v.GroupID][v.FieldID] = append(byInstance[*v.GroupID][v.FieldID], v)
	}

	groupsByField := make(map[int64][]models.FieldGroupInstance)
	for _, g := range groups {
		groupsByField[g.FieldID] = append(groupsByField[g.FieldID], g)
	}

	out := make(map[string]any, len(tree))
	for _, node := range tree {
		if suppressed(node) {
			continue
		}

		if node.Field.IsGroup() {
			instances := groupsByField[node.Field.ID]
			if node.Options.Repeatable {
				if len(instances) == 0 {
					continue
				}
				arr := make([]any, 0, len(instances))
				for _, instance := range instances {
					obj, err := s.serializeInstance(ctx, node, byInstance[instance.ID], depth, visited)
					if err != nil {
						return nil, err
					}
					arr = append(arr, obj)
				}
				out[node.Field.Name] = arr
				continue
			}

			obj := map[string]any{}
			if len(instances) > 0 {
				obj, err = s.serializeInstance(ctx, node, byInstance[instances[0].ID], depth, visited)
				if err != nil {
					return nil, err
				}
			}
			out[node.Field.Name] = obj
			continue
		}

		rows := topByField[node.Field.ID]
		if len(rows) == 0 {
			continue
		}
		val, err := s.resolveValue(ctx, node, rows, depth, visited)
		if err != nil {
			return nil, err
		}
		out[node.Field.Name] = val
	}
	return out, nil
}

func (s *Serializer) serializeInstance(ctx context.Context, group schema.FieldNode, valuesByField map[int64][]models.FieldValue, depth int, visited map[int64]bool) (map[string]any, error) {
	obj := make(map[string]any, len(group.Children))
	for _, child := range group.Children {
		if suppressed(child) {
			continue
		}
		rows := valuesByField[child.Field.ID]
		if len(rows) == 0 {
			continue
		}
		val, err := s.resolveValue(ctx, child, rows, depth, visited)
		if err != nil {
			return nil, err
		}
		obj[child.Field.Name] = val
	}
	return obj, nil
}

func (s *Serializer) resolveValue(ctx context.Context, node schema.FieldNode, rows []models.FieldValue, depth int, visited map[int64]bool) (any, error) {
	switch node.Field.Type {
	case models.FieldRelation:
		return s.resolveRelation(ctx, node, rows[0], depth, visited)

	case models.FieldMedia:
		return s.resolveMedia(ctx, rows[0])

	default:
		if node.Options.Repeatable {
			arr := make([]any, 0, len(rows))
			for i := range rows {
				arr = append(arr, DecodeScalar(node.Field.Type, node.Options, &rows[i]))
			}
			return arr, nil
		}
		return DecodeScalar(node.Field.Type, node.Options, &rows[0]), nil
	}
}

// resolveRelation serializes the linked entries behind a relation value. No
// links means null, never an empty array. A single relation with stray extra
// join rows returns the lowest sort_order row.
func (s *Serializer) resolveRelation(ctx context.Context, node schema.FieldNode, anchor models.FieldValue, depth int, visited map[int64]bool) (any, error) {
	rows, err := s.q.Query(ctx, `
		SELECT e.id, e.uuid, e.project_id, e.collection_id, e.locale, e.status, e.published_at,
			e.translation_group_id, e.created_by, e.updated_by, e.created_at, e.updated_at, e.deleted_at
		FROM content_relation_field_relations r
		JOIN content_entries e ON e.id = r.related_entry_id
		WHERE r.value_id = $1 AND e.deleted_at IS NULL
		ORDER BY r.sort_order ASC, r.id ASC
	`, anchor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load related entries: %w", err)
	}
	defer rows.Close()

	var related []models.ContentEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		related = append(related, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(related) == 0 {
		return nil, nil
	}

	multiple := node.Options.Relation != nil && node.Options.Relation.Type == schema.RelationMultiple
	if !multiple {
		return s.serializeRelated(ctx, &related[0], depth, visited)
	}

	arr := make([]any, 0, len(related))
	for i := range related {
		doc, err := s.serializeRelated(ctx, &related[i], depth, visited)
		if err != nil {
			return nil, err
		}
		arr = append(arr, doc)
	}
	return arr, nil
}

func (s *Serializer) serializeRelated(ctx context.Context, entry *models.ContentEntry, depth int, visited map[int64]bool) (any, error) {
	if depth <= 0 || visited[entry.ID] {
		return s.relationStub(ctx, entry)
	}

	fields, err := s.serialize(ctx, entry, depth-1, visited)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":     entry.UUID,
		"locale": entry.Locale,
		"status": string(entry.Status),
		"fields": fields,
	}, nil
}

// relationStub is the truncation marker emitted when the depth budget runs
// out or a cycle closes.
func (s *Serializer) relationStub(ctx context.Context, entry *models.ContentEntry) (map[string]any, error) {
	var slug string
	err := s.q.QueryRow(ctx, `SELECT slug FROM collections WHERE id = $1`, entry.CollectionID).Scan(&slug)
	if err != nil {
		slug = ""
	}
	return map[string]any{
		"id":         entry.UUID,
		"collection": slug,
	}, nil
}

func (s *Serializer) resolveMedia(ctx context.Context, anchor models.FieldValue) (any, error) {
	rows, err := s.q.Query(ctx, `
		SELECT a.id, a.uuid, a.project_id, a.filename, a.mime_type, a.size, a.path, a.thumbnail_path, a.metadata, a.created_at
		FROM content_media_relations m
		JOIN assets a ON a.id = m.asset_id
		WHERE m.value_id = $1
		ORDER BY m.sort_order ASC, m.id ASC
	`, anchor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load media assets: %w", err)
	}
	defer rows.Close()

	var projections []AssetProjection
	for rows.Next() {
		var a models.Asset
		if err := rows.Scan(&a.ID, &a.UUID, &a.ProjectID, &a.Filename, &a.MimeType, &a.Size, &a.Path, &a.ThumbnailPath, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		projections = append(projections, s.projectAsset(&a))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(projections) == 0 {
		return nil, nil
	}
	return projections, nil
}

func (s *Serializer) projectAsset(a *models.Asset) AssetProjection {
	p := AssetProjection{
		ID:        a.UUID,
		Filename:  a.Filename,
		MimeType:  a.MimeType,
		Size:      a.Size,
		HumanSize: HumanSize(a.Size),
		URL:       s.assetBaseURL + "/" + a.Path,
		Metadata:  a.Metadata,
	}
	if a.ThumbnailPath != nil {
		thumb := s.assetBaseURL + "/" + *a.ThumbnailPath
		p.ThumbnailURL = &thumb
	}
	return p
}

// SerializeCollectionSchema flattens a collection's field tree for the public
// schema resource: parents followed by their children, tagged with the parent
// field's uuid so consumers can regroup.
func (s *Serializer) SerializeCollectionSchema(ctx context.Context, collection *models.Collection) (map[string]any, error) {
	tree, err := LoadFieldTree(ctx, s.q, collection.ID)
	if err != nil {
		return nil, err
	}

	uuidByID := make(map[int64]uuid.UUID)
	for _, node := range tree {
		uuidByID[node.Field.ID] = node.Field.UUID
	}

	var fields []map[string]any
	for _, f := range schema.Flatten(tree) {
		entry := map[string]any{
			"id":          f.UUID,
			"type":        f.Type,
			"label":       f.Label,
			"name":        f.Name,
			"options":     f.Options,
			"validations": f.Validations,
			"order":       f.Order,
		}
		if f.ParentFieldID != nil {
			entry["parent_field_id"] = uuidByID[*f.ParentFieldID]
		}
		fields = append(fields, entry)
	}

	return map[string]any{
		"id":           collection.UUID,
		"name":         collection.Name,
		"slug":         collection.Slug,
		"is_singleton": collection.IsSingleton,
		"fields":       fields,
	}, nil
}

func suppressed(node schema.FieldNode) bool {
	return node.Field.Type == models.FieldPassword || node.Options.HiddenInAPI
}

// HumanSize renders a byte count the way the asset browser shows it.
func HumanSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGT"[exp])
}
