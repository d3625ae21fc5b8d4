package template

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimitrije/strata-api/internal/models"
	"github.com/dimitrije/strata-api/internal/schema"
	"github.com/dimitrije/strata-api/pkg/dto"
)

func textValue(id, entryID, fieldID int64, text string) models.FieldValue {
	return models.FieldValue{
		ID:        id,
		EntryID:   entryID,
		FieldID:   fieldID,
		FieldType: models.FieldText,
		TextValue: &text,
	}
}

func node(id int64, name string, ft models.FieldType, options string) schema.FieldNode {
	return schema.FieldNode{
		Field: models.Field{
			ID:          id,
			Name:        name,
			Label:       name,
			Type:        ft,
			Options:     json.RawMessage(options),
			Validations: json.RawMessage(`{}`),
		},
		Options: schema.DecodeOptions(json.RawMessage(options)),
	}
}

// blogData builds a two-collection project: authors, and articles with a
// relation pointing at authors plus a media field.
func blogData() *ProjectData {
	authors := models.Collection{ID: 1, Name: "Authors", Slug: "authors"}
	articles := models.Collection{ID: 2, Name: "Articles", Slug: "articles"}

	authorTree := []schema.FieldNode{node(10, "name", models.FieldText, `{}`)}
	articleTree := []schema.FieldNode{
		node(20, "title", models.FieldText, `{}`),
		node(21, "author", models.FieldRelation, `{"relation": {"collection": 1, "type": 1}}`),
		node(22, "cover", models.FieldMedia, `{}`),
	}

	return &ProjectData{
		Collections: []models.Collection{authors, articles},
		Trees: map[int64][]schema.FieldNode{
			1: authorTree,
			2: articleTree,
		},
		Entries: map[int64][]models.ContentEntry{
			1: {
				{ID: 100, CollectionID: 1, Locale: "en", Status: models.EntryPublished},
				{ID: 101, CollectionID: 1, Locale: "en", Status: models.EntryDraft},
			},
			2: {
				{ID: 200, CollectionID: 2, Locale: "en", Status: models.EntryPublished},
			},
		},
		Values: map[int64][]models.FieldValue{
			100: {textValue(1, 100, 10, "Ada")},
			101: {textValue(2, 101, 10, "Draft Author")},
			200: {
				textValue(3, 200, 20, "First Post"),
				{ID: 4, EntryID: 200, FieldID: 21, FieldType: models.FieldRelation},
				{ID: 5, EntryID: 200, FieldID: 22, FieldType: models.FieldMedia},
			},
		},
		Groups: map[int64][]models.FieldGroupInstance{},
		Relations: map[int64][]models.EntryRelation{
			4: {{ID: 1, ValueID: 4, RelatedEntryID: 100, SortOrder: 0}},
		},
	}
}

func TestBuildProjectTemplate_Schema(t *testing.T) {
	doc := BuildProjectTemplate(blogData(), "Blog", "blog", "A starter blog", false)

	assert.Equal(t, "blog", doc.Slug)
	assert.Equal(t, "Blog", doc.Name)
	assert.False(t, doc.HasDemoData)
	assert.Nil(t, doc.DemoData)
	require.Len(t, doc.Collections, 2)
	assert.Equal(t, "authors", doc.Collections[0].Slug)
	assert.Equal(t, "articles", doc.Collections[1].Slug)
}

func TestBuildProjectTemplate_RelationTargetExternalized(t *testing.T) {
	doc := BuildProjectTemplate(blogData(), "Blog", "blog", "", false)

	var authorField *dto.TemplateField
	for i, f := range doc.Collections[1].Fields {
		if f.Name == "author" {
			authorField = &doc.Collections[1].Fields[i]
		}
	}
	require.NotNil(t, authorField)

	var opts struct {
		Relation struct {
			Collection string `json:"collection"`
		} `json:"relation"`
	}
	require.NoError(t, json.Unmarshal(authorField.Options, &opts))
	assert.Equal(t, "authors", opts.Relation.Collection)
}

func TestBuildProjectTemplate_DemoData(t *testing.T) {
	doc := BuildProjectTemplate(blogData(), "Blog", "blog", "", true)

	assert.True(t, doc.HasDemoData)
	require.Len(t, doc.DemoData, 2)

	// Only published entries get symbolic ids, in collection then entry order.
	authors := doc.DemoData[0]
	assert.Equal(t, "authors", authors.Collection)
	require.Len(t, authors.Entries, 1)
	assert.Equal(t, "e1", authors.Entries[0].ID)
	assert.Equal(t, "Ada", authors.Entries[0].Fields["name"])

	articles := doc.DemoData[1]
	require.Len(t, articles.Entries, 1)
	entry := articles.Entries[0]
	assert.Equal(t, "e2", entry.ID)
	assert.Equal(t, "First Post", entry.Fields["title"])

	// Single relation unwraps to one symbolic ref.
	assert.Equal(t, "e1", entry.Fields["author"])

	// Media never appears in a document.
	_, present := entry.Fields["cover"]
	assert.False(t, present)
}

func TestBuildProjectTemplate_RelationToDraftDropped(t *testing.T) {
	data := blogData()
	// Rewire the article's relation at a draft entry; the ref cannot resolve.
	data.Relations[4] = []models.EntryRelation{{ID: 1, ValueID: 4, RelatedEntryID: 101}}

	doc := BuildProjectTemplate(data, "Blog", "blog", "", true)

	articles := doc.DemoData[1]
	_, present := articles.Entries[0].Fields["author"]
	assert.False(t, present)
}

func TestBuildProjectTemplate_MultipleRelationKeepsList(t *testing.T) {
	data := blogData()
	data.Trees[2][1] = node(21, "author", models.FieldRelation, `{"relation": {"collection": 1, "type": 2}}`)

	doc := BuildProjectTemplate(data, "Blog", "blog", "", true)

	articles := doc.DemoData[1]
	assert.Equal(t, []string{"e1"}, articles.Entries[0].Fields["author"])
}

func TestBuildProjectTemplate_Groups(t *testing.T) {
	group := node(30, "seo", models.FieldGroup, `{}`)
	group.Children = []schema.FieldNode{node(31, "seo_title", models.FieldText, `{}`)}

	groupID := int64(70)
	data := &ProjectData{
		Collections: []models.Collection{{ID: 1, Name: "Pages", Slug: "pages"}},
		Trees:       map[int64][]schema.FieldNode{1: {group}},
		Entries: map[int64][]models.ContentEntry{
			1: {{ID: 100, CollectionID: 1, Locale: "en", Status: models.EntryPublished}},
		},
		Values: map[int64][]models.FieldValue{
			100: {{ID: 1, EntryID: 100, FieldID: 31, GroupID: &groupID, FieldType: models.FieldText, TextValue: ptr("Landing")}},
		},
		Groups: map[int64][]models.FieldGroupInstance{
			100: {{ID: groupID, EntryID: 100, FieldID: 30}},
		},
		Relations: map[int64][]models.EntryRelation{},
	}

	doc := BuildProjectTemplate(data, "Site", "site", "", true)

	entry := doc.DemoData[0].Entries[0]
	assert.Equal(t, map[string]any{"seo_title": "Landing"}, entry.Fields["seo"])
}

func TestBuildCollectionTemplate(t *testing.T) {
	data := blogData()
	articles := &data.Collections[1]
	slugByID := map[int64]string{1: "authors", 2: "articles"}

	doc := BuildCollectionTemplate(articles, data.Trees[2], slugByID, nil, false)

	assert.Equal(t, "articles", doc.Slug)
	require.Len(t, doc.Collections, 1)
	assert.Len(t, doc.Collections[0].Fields, 3)
	assert.False(t, doc.HasDemoData)
}

func TestBuildProjectTemplate_DocumentRoundTrips(t *testing.T) {
	doc := BuildProjectTemplate(blogData(), "Blog", "blog", "", true)

	blob, err := json.Marshal(doc)
	require.NoError(t, err)

	var decoded dto.TemplateDocument
	require.NoError(t, json.Unmarshal(blob, &decoded))
	assert.Equal(t, doc.Slug, decoded.Slug)
	require.Len(t, decoded.DemoData, 2)
	assert.Equal(t, "e1", decoded.DemoData[0].Entries[0].ID)
}

func ptr(s string) *string {
	return &s
}
