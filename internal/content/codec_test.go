package content

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimitrije/strata-api/internal/models"
	"github.com/dimitrije/strata-api/internal/schema"
)

func TestEncodeScalar_NilStoresNothing(t *testing.T) {
	row, err := EncodeScalar(models.FieldText, schema.FieldOptions{}, nil)
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestEncodeScalar_Text(t *testing.T) {
	row, err := EncodeScalar(models.FieldText, schema.FieldOptions{}, "hello")
	require.NoError(t, err)
	require.NotNil(t, row)
	require.NotNil(t, row.TextValue)
	assert.Equal(t, "hello", *row.TextValue)
	assert.Nil(t, row.NumberValue)
}

func TestEncodeScalar_Number(t *testing.T) {
	row, err := EncodeScalar(models.FieldNumber, schema.FieldOptions{}, 42.5)
	require.NoError(t, err)
	require.NotNil(t, row.NumberValue)
	assert.Equal(t, 42.5, *row.NumberValue)

	row, err = EncodeScalar(models.FieldNumber, schema.FieldOptions{}, "17")
	require.NoError(t, err)
	assert.Equal(t, 17.0, *row.NumberValue)

	_, err = EncodeScalar(models.FieldNumber, schema.FieldOptions{}, "not a number")
	assert.Error(t, err)
}

func TestEncodeScalar_Boolean(t *testing.T) {
	row, err := EncodeScalar(models.FieldBoolean, schema.FieldOptions{}, true)
	require.NoError(t, err)
	require.NotNil(t, row.BooleanValue)
	assert.True(t, *row.BooleanValue)

	_, err = EncodeScalar(models.FieldBoolean, schema.FieldOptions{}, "yes")
	assert.Error(t, err)
}

func TestEncodeScalar_Date(t *testing.T) {
	row, err := EncodeScalar(models.FieldDate, schema.FieldOptions{}, "2024-03-01")
	require.NoError(t, err)
	require.NotNil(t, row.DateValue)
	assert.Nil(t, row.DatetimeValue)
	assert.Equal(t, "2024-03-01", row.DateValue.Format("2006-01-02"))
}

func TestEncodeScalar_DateWithIncludeTime(t *testing.T) {
	opts := schema.DecodeOptions(json.RawMessage(`{"includeTime": true}`))
	row, err := EncodeScalar(models.FieldDate, opts, "2024-03-01T10:30:00Z")
	require.NoError(t, err)
	assert.Nil(t, row.DateValue)
	require.NotNil(t, row.DatetimeValue)
}

func TestEncodeScalar_DatetimeAlwaysUsesDatetimeColumn(t *testing.T) {
	row, err := EncodeScalar(models.FieldDatetime, schema.FieldOptions{}, "2024-03-01T10:30:00Z")
	require.NoError(t, err)
	assert.Nil(t, row.DateValue)
	require.NotNil(t, row.DatetimeValue)
}

func TestEncodeScalar_EmptyDateStoresNothing(t *testing.T) {
	row, err := EncodeScalar(models.FieldDate, schema.FieldOptions{}, "")
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestEncodeScalar_DateRange(t *testing.T) {
	opts := schema.DecodeOptions(json.RawMessage(`{"mode": "range"}`))
	row, err := EncodeScalar(models.FieldDate, opts, map[string]any{
		"start": "2024-03-01",
		"end":   "2024-03-10",
	})
	require.NoError(t, err)
	require.NotNil(t, row.DateValue)
	require.NotNil(t, row.DateValueEnd)
}

func TestEncodeScalar_EmptyRangeStoresNothing(t *testing.T) {
	opts := schema.DecodeOptions(json.RawMessage(`{"mode": "range"}`))

	row, err := EncodeScalar(models.FieldDate, opts, map[string]any{})
	require.NoError(t, err)
	assert.Nil(t, row)

	row, err = EncodeScalar(models.FieldDate, opts, map[string]any{"start": nil, "end": ""})
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestEncodeScalar_OpenEndedRange(t *testing.T) {
	opts := schema.DecodeOptions(json.RawMessage(`{"mode": "range"}`))
	row, err := EncodeScalar(models.FieldDate, opts, map[string]any{"start": "2024-03-01"})
	require.NoError(t, err)
	require.NotNil(t, row)
	require.NotNil(t, row.DateValue)
	assert.Nil(t, row.DateValueEnd)
}

func TestEncodeScalar_EnumerationWrapsSingle(t *testing.T) {
	row, err := EncodeScalar(models.FieldEnumeration, schema.FieldOptions{}, "red")
	require.NoError(t, err)
	assert.JSONEq(t, `["red"]`, string(row.JSONValue))

	row, err = EncodeScalar(models.FieldEnumeration, schema.FieldOptions{}, []any{"red", "blue"})
	require.NoError(t, err)
	assert.JSONEq(t, `["red","blue"]`, string(row.JSONValue))
}

func TestEncodeScalar_JSON(t *testing.T) {
	row, err := EncodeScalar(models.FieldJSON, schema.FieldOptions{}, map[string]any{"a": 1.0})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(row.JSONValue))
}

func TestEncodeScalar_UnknownTypeFallsBackToText(t *testing.T) {
	row, err := EncodeScalar(models.FieldType("hologram"), schema.FieldOptions{}, 3.5)
	require.NoError(t, err)
	require.NotNil(t, row.TextValue)
	assert.Equal(t, "3.5", *row.TextValue)
}

func TestDecodeScalar_NilRow(t *testing.T) {
	assert.Nil(t, DecodeScalar(models.FieldText, schema.FieldOptions{}, nil))
}

func TestDecodeScalar_RoundTripText(t *testing.T) {
	row, err := EncodeScalar(models.FieldText, schema.FieldOptions{}, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", DecodeScalar(models.FieldText, schema.FieldOptions{}, row))
}

func TestDecodeScalar_RoundTripNumber(t *testing.T) {
	row, err := EncodeScalar(models.FieldNumber, schema.FieldOptions{}, 12.25)
	require.NoError(t, err)
	assert.Equal(t, 12.25, DecodeScalar(models.FieldNumber, schema.FieldOptions{}, row))
}

func TestDecodeScalar_RoundTripDate(t *testing.T) {
	row, err := EncodeScalar(models.FieldDate, schema.FieldOptions{}, "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", DecodeScalar(models.FieldDate, schema.FieldOptions{}, row))
}

func TestDecodeScalar_RoundTripDatetime(t *testing.T) {
	row, err := EncodeScalar(models.FieldDatetime, schema.FieldOptions{}, "2024-03-01T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T10:30:00Z", DecodeScalar(models.FieldDatetime, schema.FieldOptions{}, row))
}

func TestDecodeScalar_DateRange(t *testing.T) {
	opts := schema.DecodeOptions(json.RawMessage(`{"mode": "range"}`))
	row, err := EncodeScalar(models.FieldDate, opts, map[string]any{
		"start": "2024-03-01",
		"end":   "2024-03-10",
	})
	require.NoError(t, err)

	decoded, ok := DecodeScalar(models.FieldDate, opts, row).(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2024-03-01", decoded["start"])
	assert.Equal(t, "2024-03-10", decoded["end"])
}

func TestDecodeScalar_OpenRangeHasNilEnd(t *testing.T) {
	opts := schema.DecodeOptions(json.RawMessage(`{"mode": "range"}`))
	row, err := EncodeScalar(models.FieldDate, opts, map[string]any{"start": "2024-03-01"})
	require.NoError(t, err)

	decoded := DecodeScalar(models.FieldDate, opts, row).(map[string]any)
	assert.Equal(t, "2024-03-01", decoded["start"])
	assert.Nil(t, decoded["end"])
}

func TestDecodeScalar_EnumerationUnwrapsSingle(t *testing.T) {
	row, err := EncodeScalar(models.FieldEnumeration, schema.FieldOptions{}, "red")
	require.NoError(t, err)
	assert.Equal(t, "red", DecodeScalar(models.FieldEnumeration, schema.FieldOptions{}, row))
}

func TestDecodeScalar_EnumerationMultipleKeepsList(t *testing.T) {
	opts := schema.DecodeOptions(json.RawMessage(`{"multiple": true}`))

	row, err := EncodeScalar(models.FieldEnumeration, opts, "red")
	require.NoError(t, err)
	assert.Equal(t, []any{"red"}, DecodeScalar(models.FieldEnumeration, opts, row))

	row, err = EncodeScalar(models.FieldEnumeration, opts, []any{"red", "blue"})
	require.NoError(t, err)
	assert.Equal(t, []any{"red", "blue"}, DecodeScalar(models.FieldEnumeration, opts, row))
}

func TestDecodeScalar_RichtextHTML(t *testing.T) {
	doc := `<p>hello</p>`
	row, err := EncodeScalar(models.FieldRichtext, schema.FieldOptions{}, doc)
	require.NoError(t, err)
	assert.Equal(t, doc, DecodeScalar(models.FieldRichtext, schema.FieldOptions{}, row))
}

func TestDecodeScalar_RichtextStructured(t *testing.T) {
	opts := schema.DecodeOptions(json.RawMessage(`{"editor": {"outputFormat": "json"}}`))
	doc := `{"type": "doc", "content": []}`

	row, err := EncodeScalar(models.FieldRichtext, opts, doc)
	require.NoError(t, err)

	decoded, ok := DecodeScalar(models.FieldRichtext, opts, row).(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "doc", decoded["type"])
}

func TestDecodeScalar_RichtextStructuredFallsBackToText(t *testing.T) {
	opts := schema.DecodeOptions(json.RawMessage(`{"editor": {"outputFormat": "json"}}`))
	row, err := EncodeScalar(models.FieldRichtext, opts, "plain, not json")
	require.NoError(t, err)
	assert.Equal(t, "plain, not json", DecodeScalar(models.FieldRichtext, opts, row))
}

func TestDecodeScalar_RoundTripJSON(t *testing.T) {
	value := map[string]any{"nested": []any{1.0, 2.0}}
	row, err := EncodeScalar(models.FieldJSON, schema.FieldOptions{}, value)
	require.NoError(t, err)
	assert.Equal(t, value, DecodeScalar(models.FieldJSON, schema.FieldOptions{}, row))
}

func TestDecodeScalar_UnknownTypeReadsText(t *testing.T) {
	row, err := EncodeScalar(models.FieldType("hologram"), schema.FieldOptions{}, "beam")
	require.NoError(t, err)
	assert.Equal(t, "beam", DecodeScalar(models.FieldType("hologram"), schema.FieldOptions{}, row))
}

func TestFieldValuesMatch(t *testing.T) {
	assert.True(t, FieldValuesMatch(models.FieldNumber, 1, 1.0))
	assert.True(t, FieldValuesMatch(models.FieldNumber, "2.5", 2.5))
	assert.False(t, FieldValuesMatch(models.FieldNumber, 1.0, 1.1))

	assert.True(t, FieldValuesMatch(models.FieldBoolean, true, true))
	assert.False(t, FieldValuesMatch(models.FieldBoolean, true, "true"))

	assert.True(t, FieldValuesMatch(models.FieldEnumeration, []any{"a", "b"}, []any{"b", "a"}))
	assert.False(t, FieldValuesMatch(models.FieldEnumeration, []any{"a"}, []any{"a", "a"}))
	assert.True(t, FieldValuesMatch(models.FieldEnumeration, "a", []any{"a"}))

	assert.True(t, FieldValuesMatch(models.FieldText, "x", "x"))
	assert.False(t, FieldValuesMatch(models.FieldText, "x", "y"))

	assert.True(t, FieldValuesMatch(models.FieldText, nil, nil))
	assert.False(t, FieldValuesMatch(models.FieldText, nil, "x"))
}

func TestToTimeAcceptsCommonLayouts(t *testing.T) {
	for _, input := range []string{"2024-03-01", "2024-03-01T10:30:00Z", "2024-03-01 10:30:00"} {
		parsed, err := toTime(input)
		require.NoError(t, err, input)
		require.NotNil(t, parsed, input)
	}

	native := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	parsed, err := toTime(native)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(native))

	_, err = toTime("03/01/2024")
	assert.Error(t, err)
}
