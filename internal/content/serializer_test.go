package content

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimitrije/strata-api/internal/models"
)

var fieldRowColumns = []string{
	"id", "uuid", "project_id", "collection_id", "parent_field_id", "type", "label", "name",
	"description", "placeholder", "options", "validations", "sort_order", "created_at", "updated_at", "deleted_at",
}

var valueRowColumns = []string{
	"id", "uuid", "project_id", "collection_id", "entry_id", "field_id", "group_id", "field_type", "sort_order",
	"text_value", "number_value", "boolean_value",
	"date_value", "date_value_end", "datetime_value", "datetime_value_end", "json_value",
}

var groupRowColumns = []string{
	"id", "uuid", "project_id", "collection_id", "entry_id", "field_id", "sort_order",
}

func setupSerializer(t *testing.T) (*Serializer, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })
	return NewSerializer(mock, "https://cdn.example.com/assets"), mock
}

func addFieldRow(rows *pgxmock.Rows, id int64, ft models.FieldType, name string, options string, parent *int64) {
	now := time.Now()
	rows.AddRow(
		id, uuid.New(), int64(1), int64(10), parent, ft, name, name,
		(*string)(nil), (*string)(nil), json.RawMessage(options), json.RawMessage(`{}`), int(id), now, now, (*time.Time)(nil),
	)
}

func textValueRow(rows *pgxmock.Rows, id, fieldID int64, groupID *int64, text string) {
	v := text
	rows.AddRow(
		id, uuid.New(), int64(1), int64(10), int64(100), fieldID, groupID, models.FieldText, 0,
		&v, (*float64)(nil), (*bool)(nil),
		(*time.Time)(nil), (*time.Time)(nil), (*time.Time)(nil), (*time.Time)(nil), json.RawMessage(nil),
	)
}

func testEntry() *models.ContentEntry {
	return &models.ContentEntry{
		ID:           100,
		UUID:         uuid.New(),
		ProjectID:    1,
		CollectionID: 10,
		Locale:       "en",
		Status:       models.EntryPublished,
	}
}

func TestSerializeEntry_HidesSuppressedAndOrphanedValues(t *testing.T) {
	s, mock := setupSerializer(t)

	fields := pgxmock.NewRows(fieldRowColumns)
	addFieldRow(fields, 1, models.FieldText, "title", `{}`, nil)
	addFieldRow(fields, 2, models.FieldPassword, "secret", `{}`, nil)
	addFieldRow(fields, 3, models.FieldText, "internal", `{"hiddenInAPI": true}`, nil)
	mock.ExpectQuery(`FROM fields`).WithArgs(int64(10)).WillReturnRows(fields)

	values := pgxmock.NewRows(valueRowColumns)
	textValueRow(values, 1, 1, nil, "Hello")
	textValueRow(values, 2, 2, nil, "hunter2")
	textValueRow(values, 3, 3, nil, "do not show")
	// Value whose field was deleted after write.
	textValueRow(values, 4, 99, nil, "orphan")
	mock.ExpectQuery(`FROM content_field_values`).WithArgs(int64(100)).WillReturnRows(values)

	mock.ExpectQuery(`FROM content_field_groups`).WithArgs(int64(100)).WillReturnRows(pgxmock.NewRows(groupRowColumns))

	doc, err := s.SerializeEntry(context.Background(), testEntry())

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "Hello"}, doc)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSerializeEntry_MissingValueOmitsKey(t *testing.T) {
	s, mock := setupSerializer(t)

	fields := pgxmock.NewRows(fieldRowColumns)
	addFieldRow(fields, 1, models.FieldText, "title", `{}`, nil)
	addFieldRow(fields, 2, models.FieldText, "subtitle", `{}`, nil)
	mock.ExpectQuery(`FROM fields`).WithArgs(int64(10)).WillReturnRows(fields)

	values := pgxmock.NewRows(valueRowColumns)
	textValueRow(values, 1, 1, nil, "Hello")
	mock.ExpectQuery(`FROM content_field_values`).WithArgs(int64(100)).WillReturnRows(values)

	mock.ExpectQuery(`FROM content_field_groups`).WithArgs(int64(100)).WillReturnRows(pgxmock.NewRows(groupRowColumns))

	doc, err := s.SerializeEntry(context.Background(), testEntry())

	require.NoError(t, err)
	_, present := doc["subtitle"]
	assert.False(t, present)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSerializeEntry_RepeatableField(t *testing.T) {
	s, mock := setupSerializer(t)

	fields := pgxmock.NewRows(fieldRowColumns)
	addFieldRow(fields, 1, models.FieldText, "tags", `{"repeatable": true}`, nil)
	mock.ExpectQuery(`FROM fields`).WithArgs(int64(10)).WillReturnRows(fields)

	values := pgxmock.NewRows(valueRowColumns)
	textValueRow(values, 1, 1, nil, "go")
	textValueRow(values, 2, 1, nil, "cms")
	mock.ExpectQuery(`FROM content_field_values`).WithArgs(int64(100)).WillReturnRows(values)

	mock.ExpectQuery(`FROM content_field_groups`).WithArgs(int64(100)).WillReturnRows(pgxmock.NewRows(groupRowColumns))

	doc, err := s.SerializeEntry(context.Background(), testEntry())

	require.NoError(t, err)
	assert.Equal(t, []any{"go", "cms"}, doc["tags"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSerializeEntry_Groups(t *testing.T) {
	s, mock := setupSerializer(t)

	groupFieldID := int64(1)
	fields := pgxmock.NewRows(fieldRowColumns)
	addFieldRow(fields, 1, models.FieldGroup, "seo", `{}`, nil)
	addFieldRow(fields, 2, models.FieldText, "seo_title", `{}`, &groupFieldID)
	addFieldRow(fields, 3, models.FieldGroup, "blocks", `{"repeatable": true}`, nil)
	mock.ExpectQuery(`FROM fields`).WithArgs(int64(10)).WillReturnRows(fields)

	instanceID := int64(50)
	values := pgxmock.NewRows(valueRowColumns)
	textValueRow(values, 1, 2, &instanceID, "SEO Title")
	mock.ExpectQuery(`FROM content_field_values`).WithArgs(int64(100)).WillReturnRows(values)

	groups := pgxmock.NewRows(groupRowColumns).
		AddRow(instanceID, uuid.New(), int64(1), int64(10), int64(100), int64(1), 0)
	mock.ExpectQuery(`FROM content_field_groups`).WithArgs(int64(100)).WillReturnRows(groups)

	doc, err := s.SerializeEntry(context.Background(), testEntry())

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"seo_title": "SEO Title"}, doc["seo"])
	// Repeatable group with no instances is omitted entirely.
	_, present := doc["blocks"]
	assert.False(t, present)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSerializeEntry_NonRepeatableGroupWithoutInstance(t *testing.T) {
	s, mock := setupSerializer(t)

	fields := pgxmock.NewRows(fieldRowColumns)
	addFieldRow(fields, 1, models.FieldGroup, "seo", `{}`, nil)
	mock.ExpectQuery(`FROM fields`).WithArgs(int64(10)).WillReturnRows(fields)

	mock.ExpectQuery(`FROM content_field_values`).WithArgs(int64(100)).WillReturnRows(pgxmock.NewRows(valueRowColumns))
	mock.ExpectQuery(`FROM content_field_groups`).WithArgs(int64(100)).WillReturnRows(pgxmock.NewRows(groupRowColumns))

	doc, err := s.SerializeEntry(context.Background(), testEntry())

	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, doc["seo"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSerializeEntry_RelationWithoutLinksIsNull(t *testing.T) {
	s, mock := setupSerializer(t)

	fields := pgxmock.NewRows(fieldRowColumns)
	addFieldRow(fields, 1, models.FieldRelation, "author", `{"relation": {"collection": 2, "type": 1}}`, nil)
	mock.ExpectQuery(`FROM fields`).WithArgs(int64(10)).WillReturnRows(fields)

	values := pgxmock.NewRows(valueRowColumns).AddRow(
		int64(1), uuid.New(), int64(1), int64(10), int64(100), int64(1), (*int64)(nil), models.FieldRelation, 0,
		(*string)(nil), (*float64)(nil), (*bool)(nil),
		(*time.Time)(nil), (*time.Time)(nil), (*time.Time)(nil), (*time.Time)(nil), json.RawMessage(nil),
	)
	mock.ExpectQuery(`FROM content_field_values`).WithArgs(int64(100)).WillReturnRows(values)
	mock.ExpectQuery(`FROM content_field_groups`).WithArgs(int64(100)).WillReturnRows(pgxmock.NewRows(groupRowColumns))

	mock.ExpectQuery(`FROM content_relation_field_relations`).WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "uuid", "project_id", "collection_id", "locale", "status", "published_at",
			"translation_group_id", "created_by", "updated_by", "created_at", "updated_at", "deleted_at",
		}))

	doc, err := s.SerializeEntry(context.Background(), testEntry())

	require.NoError(t, err)
	val, present := doc["author"]
	assert.True(t, present)
	assert.Nil(t, val)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSerializeEntry_RelationDepthExhaustedReturnsStub(t *testing.T) {
	s, mock := setupSerializer(t)
	s = s.WithDepth(0)

	relatedUUID := uuid.New()
	now := time.Now()

	fields := pgxmock.NewRows(fieldRowColumns)
	addFieldRow(fields, 1, models.FieldRelation, "author", `{"relation": {"collection": 2, "type": 1}}`, nil)
	mock.ExpectQuery(`FROM fields`).WithArgs(int64(10)).WillReturnRows(fields)

	values := pgxmock.NewRows(valueRowColumns).AddRow(
		int64(1), uuid.New(), int64(1), int64(10), int64(100), int64(1), (*int64)(nil), models.FieldRelation, 0,
		(*string)(nil), (*float64)(nil), (*bool)(nil),
		(*time.Time)(nil), (*time.Time)(nil), (*time.Time)(nil), (*time.Time)(nil), json.RawMessage(nil),
	)
	mock.ExpectQuery(`FROM content_field_values`).WithArgs(int64(100)).WillReturnRows(values)
	mock.ExpectQuery(`FROM content_field_groups`).WithArgs(int64(100)).WillReturnRows(pgxmock.NewRows(groupRowColumns))

	related := pgxmock.NewRows([]string{
		"id", "uuid", "project_id", "collection_id", "locale", "status", "published_at",
		"translation_group_id", "created_by", "updated_by", "created_at", "updated_at", "deleted_at",
	}).AddRow(
		int64(200), relatedUUID, int64(1), int64(20), "en", models.EntryPublished, (*time.Time)(nil),
		(*uuid.UUID)(nil), (*int64)(nil), (*int64)(nil), now, now, (*time.Time)(nil),
	)
	mock.ExpectQuery(`FROM content_relation_field_relations`).WithArgs(int64(1)).WillReturnRows(related)

	mock.ExpectQuery(`SELECT slug FROM collections`).WithArgs(int64(20)).
		WillReturnRows(pgxmock.NewRows([]string{"slug"}).AddRow("authors"))

	doc, err := s.SerializeEntry(context.Background(), testEntry())

	require.NoError(t, err)
	stub, ok := doc["author"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, relatedUUID, stub["id"])
	assert.Equal(t, "authors", stub["collection"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "512 B", HumanSize(512))
	assert.Equal(t, "1.0 KB", HumanSize(1024))
	assert.Equal(t, "1.5 MB", HumanSize(1536*1024))
	assert.Equal(t, "2.0 GB", HumanSize(2*1024*1024*1024))
}
