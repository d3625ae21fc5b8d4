package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimitrije/strata-api/internal/models"
)

func field(id int64, name string, ft models.FieldType, order int, parent *int64) models.Field {
	return models.Field{
		ID:            id,
		Name:          name,
		Type:          ft,
		Order:         order,
		ParentFieldID: parent,
		Options:       json.RawMessage(`{}`),
	}
}

func TestResolveFieldTree(t *testing.T) {
	groupID := int64(2)
	fields := []models.Field{
		field(3, "body", models.FieldLongtext, 3, nil),
		field(1, "title", models.FieldText, 1, nil),
		field(2, "seo", models.FieldGroup, 2, nil),
		field(5, "seo_description", models.FieldText, 2, &groupID),
		field(4, "seo_title", models.FieldText, 1, &groupID),
	}

	tree := ResolveFieldTree(fields)

	require.Len(t, tree, 3)
	assert.Equal(t, "title", tree[0].Field.Name)
	assert.Equal(t, "seo", tree[1].Field.Name)
	assert.Equal(t, "body", tree[2].Field.Name)

	require.Len(t, tree[1].Children, 2)
	assert.Equal(t, "seo_title", tree[1].Children[0].Field.Name)
	assert.Equal(t, "seo_description", tree[1].Children[1].Field.Name)
}

func TestResolveFieldTree_ChildrenNeverTopLevel(t *testing.T) {
	groupID := int64(1)
	fields := []models.Field{
		field(1, "meta", models.FieldGroup, 1, nil),
		field(2, "keywords", models.FieldText, 1, &groupID),
	}

	tree := ResolveFieldTree(fields)

	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "keywords", tree[0].Children[0].Field.Name)
}

func TestResolveFieldTree_OrphanChildDropped(t *testing.T) {
	missingParent := int64(99)
	fields := []models.Field{
		field(1, "title", models.FieldText, 1, nil),
		field(2, "stray", models.FieldText, 2, &missingParent),
	}

	tree := ResolveFieldTree(fields)

	require.Len(t, tree, 1)
	assert.Equal(t, "title", tree[0].Field.Name)
}

func TestFlatten(t *testing.T) {
	groupID := int64(2)
	fields := []models.Field{
		field(1, "title", models.FieldText, 1, nil),
		field(2, "seo", models.FieldGroup, 2, nil),
		field(3, "seo_title", models.FieldText, 1, &groupID),
	}

	flat := Flatten(ResolveFieldTree(fields))

	require.Len(t, flat, 3)
	assert.Equal(t, "title", flat[0].Name)
	assert.Equal(t, "seo", flat[1].Name)
	assert.Equal(t, "seo_title", flat[2].Name)
}

func TestFindNode(t *testing.T) {
	tree := ResolveFieldTree([]models.Field{
		field(1, "title", models.FieldText, 1, nil),
		field(2, "body", models.FieldLongtext, 2, nil),
	})

	node, ok := FindNode(tree, "body")
	require.True(t, ok)
	assert.Equal(t, int64(2), node.Field.ID)

	_, ok = FindNode(tree, "missing")
	assert.False(t, ok)
}

func TestExternalizeRelationTarget(t *testing.T) {
	opts := FieldOptions{
		Relation: &RelationOptions{Collection: CollectionRef{ID: 7}, Type: RelationSingle},
	}

	ExternalizeRelationTarget(&opts, map[int64]string{7: "authors"})
	assert.Equal(t, "authors", opts.Relation.Collection.Slug)
	assert.Equal(t, int64(0), opts.Relation.Collection.ID)
}

func TestExternalizeRelationTarget_UnknownTargetKept(t *testing.T) {
	opts := FieldOptions{
		Relation: &RelationOptions{Collection: CollectionRef{ID: 404}},
	}

	ExternalizeRelationTarget(&opts, map[int64]string{7: "authors"})
	assert.Equal(t, int64(404), opts.Relation.Collection.ID)
	assert.Empty(t, opts.Relation.Collection.Slug)
}

func TestInternalizeRelationTarget(t *testing.T) {
	opts := FieldOptions{
		Relation: &RelationOptions{Collection: CollectionRef{Slug: "authors"}},
	}

	InternalizeRelationTarget(&opts, map[string]int64{"authors": 12})
	assert.Equal(t, int64(12), opts.Relation.Collection.ID)
	assert.Empty(t, opts.Relation.Collection.Slug)

	// Unknown slug passes through untouched.
	opts.Relation.Collection = CollectionRef{Slug: "missing"}
	InternalizeRelationTarget(&opts, map[string]int64{"authors": 12})
	assert.Equal(t, "missing", opts.Relation.Collection.Slug)
}

func TestInternalizeRelationTarget_NoRelation(t *testing.T) {
	opts := FieldOptions{}
	InternalizeRelationTarget(&opts, map[string]int64{"authors": 12})
	assert.Nil(t, opts.Relation)
}
