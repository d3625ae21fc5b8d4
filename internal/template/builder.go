// Package template builds and rehydrates portable template documents: a full
// schema snapshot of a project or collection, optionally with published demo
// content, with every internal id replaced by a slug or a document-local
// symbolic id.
package template

import (
	"fmt"

	"github.com/dimitrije/strata-api/internal/content"
	"github.com/dimitrije/strata-api/internal/models"
	"github.com/dimitrije/strata-api/internal/schema"
	"github.com/dimitrije/strata-api/pkg/dto"
)

// ProjectData is the pre-loaded input of a build. The builder itself is a
// pure transformation; loading and authorization live with the caller.
type ProjectData struct {
	Collections []models.Collection
	Trees       map[int64][]schema.FieldNode    // by collection id
	Entries     map[int64][]models.ContentEntry // by collection id
	Values      map[int64][]models.FieldValue   // by entry id
	Groups      map[int64][]models.FieldGroupInstance   // by entry id
	Relations   map[int64][]models.EntryRelation // by value id
}

// BuildProjectTemplate produces the document for a whole project.
func BuildProjectTemplate(data *ProjectData, name, slug, description string, includeContent bool) dto.TemplateDocument {
	doc := dto.TemplateDocument{
		Slug:        slug,
		Name:        name,
		Description: description,
	}

	slugByID := make(map[int64]string, len(data.Collections))
	for _, c := range data.Collections {
		slugByID[c.ID] = c.Slug
	}

	for _, c := range data.Collections {
		doc.Collections = append(doc.Collections, buildCollection(&c, data.Trees[c.ID], slugByID))
	}

	if includeContent {
		doc.DemoData = buildDemoData(data)
		doc.HasDemoData = len(doc.DemoData) > 0
	}
	return doc
}

// BuildCollectionTemplate produces the document for a single collection. The
// scope map still covers all project collections so relation targets that
// stay inside the project externalize to slugs; anything else passes through
// as its numeric id.
func BuildCollectionTemplate(collection *models.Collection, tree []schema.FieldNode, slugByID map[int64]string, data *ProjectData, includeContent bool) dto.TemplateDocument {
	doc := dto.TemplateDocument{
		Slug:        collection.Slug,
		Name:        collection.Name,
		Collections: []dto.TemplateCollection{buildCollection(collection, tree, slugByID)},
	}
	if includeContent && data != nil {
		doc.DemoData = buildDemoData(data)
		doc.HasDemoData = len(doc.DemoData) > 0
	}
	return doc
}

func buildCollection(c *models.Collection, tree []schema.FieldNode, slugByID map[int64]string) dto.TemplateCollection {
	out := dto.TemplateCollection{
		Name:        c.Name,
		Slug:        c.Slug,
		IsSingleton: c.IsSingleton,
	}
	for _, node := range tree {
		field := buildField(node, slugByID)
		for _, child := range node.Children {
			field.Children = append(field.Children, buildField(child, slugByID))
		}
		out.Fields = append(out.Fields, field)
	}
	return out
}

func buildField(node schema.FieldNode, slugByID map[int64]string) dto.TemplateField {
	opts := node.Options
	schema.ExternalizeRelationTarget(&opts, slugByID)
	return dto.TemplateField{
		Type:        string(node.Field.Type),
		Label:       node.Field.Label,
		Name:        node.Field.Name,
		Description: node.Field.Description,
		Placeholder: node.Field.Placeholder,
		Options:     schema.EncodeOptions(opts),
		Validations: node.Field.Validations,
	}
}

// buildDemoData snapshots published entries. Symbolic ids are assigned across
// the whole scope first, in collection then entry order, because relation
// targets may cross collections.
func buildDemoData(data *ProjectData) []dto.TemplateDemoData {
	symbolic := make(map[int64]string)
	n := 0
	for _, c := range data.Collections {
		for _, e := range data.Entries[c.ID] {
			if e.Status != models.EntryPublished {
				continue
			}
			n++
			symbolic[e.ID] = fmt.Sprintf("e%d", n)
		}
	}

	var out []dto.TemplateDemoData
	for _, c := range data.Collections {
		var entries []dto.TemplateEntry
		for _, e := range data.Entries[c.ID] {
			if e.Status != models.EntryPublished {
				continue
			}
			entries = append(entries, dto.TemplateEntry{
				ID:     symbolic[e.ID],
				Locale: e.Locale,
				Status: string(e.Status),
				Fields: buildEntryFields(data, &e, data.Trees[c.ID], symbolic),
			})
		}
		if len(entries) > 0 {
			out = append(out, dto.TemplateDemoData{Collection: c.Slug, Entries: entries})
		}
	}
	return out
}

// buildEntryFields resolves one entry's values for demo data. Media is always
// omitted (documents never carry binaries), relation values become symbolic
// ids with unmapped targets dropped, and null results are omitted entirely.
func buildEntryFields(data *ProjectData, entry *models.ContentEntry, tree []schema.FieldNode, symbolic map[int64]string) map[string]any {
	topByField := make(map[int64][]models.FieldValue)
	byInstance := make(map[int64]map[int64][]models.FieldValue)
	for _, v := range data.Values[entry.ID] {
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
	for _, g := range data.Groups[entry.ID] {
		groupsByField[g.FieldID] = append(groupsByField[g.FieldID], g)
	}

	fields := make(map[string]any)
	for _, node := range tree {
		switch node.Field.Type {
		case models.FieldMedia:
			continue

		case models.FieldGroup:
			instances := groupsByField[node.Field.ID]
			if len(instances) == 0 {
				continue
			}
			if node.Options.Repeatable {
				arr := make([]any, 0, len(instances))
				for _, instance := range instances {
					arr = append(arr, demoInstance(node, byInstance[instance.ID]))
				}
				fields[node.Field.Name] = arr
			} else {
				fields[node.Field.Name] = demoInstance(node, byInstance[instances[0].ID])
			}

		case models.FieldRelation:
			rows := topByField[node.Field.ID]
			if len(rows) == 0 {
				continue
			}
			refs := symbolicRefs(data.Relations[rows[0].ID], symbolic)
			if len(refs) == 0 {
				continue
			}
			if node.Options.Relation != nil && node.Options.Relation.Type == schema.RelationSingle {
				fields[node.Field.Name] = refs[0]
			} else {
				fields[node.Field.Name] = refs
			}

		default:
			rows := topByField[node.Field.ID]
			if len(rows) == 0 {
				continue
			}
			if node.Options.Repeatable {
				arr := make([]any, 0, len(rows))
				for i := range rows {
					if v := content.DecodeScalar(node.Field.Type, node.Options, &rows[i]); v != nil {
						arr = append(arr, v)
					}
				}
				if len(arr) > 0 {
					fields[node.Field.Name] = arr
				}
				continue
			}
			if v := content.DecodeScalar(node.Field.Type, node.Options, &rows[0]); v != nil {
				fields[node.Field.Name] = v
			}
		}
	}
	return fields
}

// demoInstance resolves one group repetition with the scalar codec only;
// relation and media children are unsupported inside demo groups.
func demoInstance(group schema.FieldNode, valuesByField map[int64][]models.FieldValue) map[string]any {
	obj := make(map[string]any)
	for _, child := range group.Children {
		if child.Field.Type == models.FieldMedia || child.Field.Type == models.FieldRelation {
			continue
		}
		rows := valuesByField[child.Field.ID]
		if len(rows) == 0 {
			continue
		}
		if child.Options.Repeatable {
			arr := make([]any, 0, len(rows))
			for i := range rows {
				if v := content.DecodeScalar(child.Field.Type, child.Options, &rows[i]); v != nil {
					arr = append(arr, v)
				}
			}
			if len(arr) > 0 {
				obj[child.Field.Name] = arr
			}
			continue
		}
		if v := content.DecodeScalar(child.Field.Type, child.Options, &rows[0]); v != nil {
			obj[child.Field.Name] = v
		}
	}
	return obj
}

func symbolicRefs(relations []models.EntryRelation, symbolic map[int64]string) []string {
	var refs []string
	for _, r := range relations {
		if sym, ok := symbolic[r.RelatedEntryID]; ok {
			refs = append(refs, sym)
		}
	}
	return refs
}
