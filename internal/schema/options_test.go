package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionRef_UnmarshalNumber(t *testing.T) {
	var ref CollectionRef
	require.NoError(t, json.Unmarshal([]byte(`42`), &ref))
	assert.Equal(t, int64(42), ref.ID)
	assert.Empty(t, ref.Slug)
}

func TestCollectionRef_UnmarshalSlug(t *testing.T) {
	var ref CollectionRef
	require.NoError(t, json.Unmarshal([]byte(`"articles"`), &ref))
	assert.Equal(t, int64(0), ref.ID)
	assert.Equal(t, "articles", ref.Slug)
}

func TestCollectionRef_UnmarshalMalformed(t *testing.T) {
	ref := CollectionRef{ID: 7}
	require.NoError(t, json.Unmarshal([]byte(`{"weird": true}`), &ref))
	assert.True(t, ref.IsZero())
}

func TestCollectionRef_MarshalPrefersSlug(t *testing.T) {
	data, err := json.Marshal(CollectionRef{ID: 3, Slug: "articles"})
	require.NoError(t, err)
	assert.Equal(t, `"articles"`, string(data))

	data, err = json.Marshal(CollectionRef{ID: 3})
	require.NoError(t, err)
	assert.Equal(t, `3`, string(data))
}

func TestDecodeOptions(t *testing.T) {
	opts := DecodeOptions(json.RawMessage(`{
		"repeatable": true,
		"multiple": true,
		"mode": "range",
		"includeTime": true,
		"relation": {"collection": 9, "type": 2},
		"enumeration": {"list": ["a", "b"]},
		"editor": {"outputFormat": "json"},
		"customKey": {"nested": 1}
	}`))

	assert.True(t, opts.Repeatable)
	assert.True(t, opts.Multiple)
	assert.True(t, opts.IncludeTime)
	assert.True(t, opts.IsRange())
	require.NotNil(t, opts.Relation)
	assert.Equal(t, int64(9), opts.Relation.Collection.ID)
	assert.Equal(t, RelationMultiple, opts.Relation.Type)
	require.NotNil(t, opts.Enumeration)
	assert.Equal(t, []string{"a", "b"}, opts.Enumeration.List)
	require.NotNil(t, opts.Editor)
	assert.Equal(t, "json", opts.Editor.OutputFormat)
}

func TestDecodeOptions_Malformed(t *testing.T) {
	opts := DecodeOptions(json.RawMessage(`not json`))
	assert.False(t, opts.Repeatable)
	assert.Nil(t, opts.Relation)

	opts = DecodeOptions(nil)
	assert.False(t, opts.Multiple)
}

func TestEncodeOptions_RoundTripPreservesUnknownKeys(t *testing.T) {
	original := json.RawMessage(`{"repeatable": true, "customKey": {"nested": 1}, "another": "x"}`)
	opts := DecodeOptions(original)
	encoded := EncodeOptions(opts)

	var out map[string]any
	require.NoError(t, json.Unmarshal(encoded, &out))
	assert.Equal(t, true, out["repeatable"])
	assert.Equal(t, map[string]any{"nested": float64(1)}, out["customKey"])
	assert.Equal(t, "x", out["another"])
}

func TestEncodeOptions_ClearedFlagStaysCleared(t *testing.T) {
	opts := DecodeOptions(json.RawMessage(`{"repeatable": true, "hiddenInAPI": true}`))
	opts.Repeatable = false

	var out map[string]any
	require.NoError(t, json.Unmarshal(EncodeOptions(opts), &out))
	_, present := out["repeatable"]
	assert.False(t, present)
	assert.Equal(t, true, out["hiddenInAPI"])
}

func TestEncodeOptions_RelationBySlug(t *testing.T) {
	opts := FieldOptions{
		Relation: &RelationOptions{
			Collection: CollectionRef{Slug: "authors"},
			Type:       RelationSingle,
		},
	}

	var out struct {
		Relation struct {
			Collection string `json:"collection"`
			Type       int    `json:"type"`
		} `json:"relation"`
	}
	require.NoError(t, json.Unmarshal(EncodeOptions(opts), &out))
	assert.Equal(t, "authors", out.Relation.Collection)
	assert.Equal(t, RelationSingle, out.Relation.Type)
}
