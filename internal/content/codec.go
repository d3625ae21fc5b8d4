package content

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/dimitrije/strata-api/internal/models"
	"github.com/dimitrije/strata-api/internal/schema"
)

const (
	dateLayout = "2006-01-02"
)

// EncodeScalar maps a submitted value onto the storage columns of a value
// row, dispatched by field type. It returns nil when nothing should be
// stored: a nil value, or a range value with neither bound set. Relation,
// media and group fields never reach this path.
//
// Unknown field types degrade to text storage so new types keep working
// against an older server.
func EncodeScalar(ft models.FieldType, opts schema.FieldOptions, v any) (*models.FieldValue, error) {
	if v == nil {
		return nil, nil
	}

	row := &models.FieldValue{FieldType: ft}

	switch ft {
	case models.FieldNumber:
		n, err := toFloat(v)
		if err != nil {
			return nil, fmt.Errorf("field type number: %w", err)
		}
		row.NumberValue = &n

	case models.FieldBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("field type boolean: got %T", v)
		}
		row.BooleanValue = &b

	case models.FieldDate, models.FieldDatetime:
		if opts.IsRange() {
			start, end, ok := rangeBounds(v)
			if !ok {
				return nil, nil
			}
			if opts.IncludeTime || ft == models.FieldDatetime {
				row.DatetimeValue = start
				row.DatetimeValueEnd = end
			} else {
				row.DateValue = start
				row.DateValueEnd = end
			}
			return row, nil
		}
		t, err := toTime(v)
		if err != nil {
			return nil, fmt.Errorf("field type %s: %w", ft, err)
		}
		if t == nil {
			return nil, nil
		}
		if opts.IncludeTime || ft == models.FieldDatetime {
			row.DatetimeValue = t
		} else {
			row.DateValue = t
		}

	case models.FieldEnumeration:
		// Single-select is normalized to a one-element array on disk.
		list, ok := v.([]any)
		if !ok {
			list = []any{v}
		}
		data, err := json.Marshal(list)
		if err != nil {
			return nil, fmt.Errorf("field type enumeration: %w", err)
		}
		row.JSONValue = data

	case models.FieldJSON:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("field type json: %w", err)
		}
		row.JSONValue = data

	default:
		s := toString(v)
		row.TextValue = &s
	}

	return row, nil
}

// DecodeScalar is the read-side inverse of EncodeScalar: given a stored row
// and the field's declared type and options, reproduce the value the codec
// accepted on write.
func DecodeScalar(ft models.FieldType, opts schema.FieldOptions, row *models.FieldValue) any {
	if row == nil {
		return nil
	}

	switch ft {
	case models.FieldNumber:
		if row.NumberValue == nil {
			return nil
		}
		return *row.NumberValue

	case models.FieldBoolean:
		if row.BooleanValue == nil {
			return nil
		}
		return *row.BooleanValue

	case models.FieldDate, models.FieldDatetime:
		includeTime := opts.IncludeTime || ft == models.FieldDatetime
		if opts.IsRange() {
			if includeTime {
				return map[string]any{
					"start": formatTime(row.DatetimeValue, true),
					"end":   formatTime(row.DatetimeValueEnd, true),
				}
			}
			return map[string]any{
				"start": formatTime(row.DateValue, false),
				"end":   formatTime(row.DateValueEnd, false),
			}
		}
		if includeTime {
			return formatTime(row.DatetimeValue, true)
		}
		return formatTime(row.DateValue, false)

	case models.FieldEnumeration:
		var list []any
		if err := json.Unmarshal(row.JSONValue, &list); err != nil {
			return nil
		}
		if !opts.Multiple && len(list) == 1 {
			return list[0]
		}
		return list

	case models.FieldJSON:
		var out any
		if err := json.Unmarshal(row.JSONValue, &out); err != nil {
			return nil
		}
		return out

	case models.FieldRichtext:
		if row.TextValue == nil {
			return nil
		}
		if opts.Editor != nil && opts.Editor.OutputFormat != "" && opts.Editor.OutputFormat != "html" {
			var doc any
			if err := json.Unmarshal([]byte(*row.TextValue), &doc); err == nil {
				return doc
			}
		}
		return *row.TextValue

	default:
		if row.TextValue == nil {
			return nil
		}
		return *row.TextValue
	}
}

// FieldValuesMatch compares two decoded values with type-aware equality:
// numbers as floats, enumerations as sets, everything else as strings.
// Nil only equals nil.
func FieldValuesMatch(ft models.FieldType, a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch ft {
	case models.FieldNumber:
		fa, errA := toFloat(a)
		fb, errB := toFloat(b)
		if errA != nil || errB != nil {
			return false
		}
		return math.Abs(fa-fb) < 1e-9

	case models.FieldBoolean:
		ba, okA := a.(bool)
		bb, okB := b.(bool)
		return okA && okB && ba == bb

	case models.FieldEnumeration:
		return sameSet(asList(a), asList(b))

	default:
		return toString(a) == toString(b)
	}
}

func asList(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	return []any{v}
}

func sameSet(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, v := range a {
		seen[toString(v)]++
	}
	for _, v := range b {
		seen[toString(v)]--
		if seen[toString(v)] < 0 {
			return false
		}
	}
	return true
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		return strconv.ParseFloat(n, 64)
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// toTime parses a submitted temporal value. Empty strings are treated as
// absent, not as an error.
func toTime(v any) (*time.Time, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return &t, nil
	case string:
		if t == "" {
			return nil, nil
		}
		for _, layout := range []string{time.RFC3339, dateLayout, "2006-01-02 15:04:05"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return &parsed, nil
			}
		}
		return nil, fmt.Errorf("unparseable time value %q", t)
	default:
		return nil, fmt.Errorf("not a time value: %T", v)
	}
}

// rangeBounds extracts start/end from a submitted range value. A range with
// neither bound set reports ok=false so no row gets written.
func rangeBounds(v any) (start, end *time.Time, ok bool) {
	m, isMap := v.(map[string]any)
	if !isMap {
		return nil, nil, false
	}
	start, _ = toTime(m["start"])
	end, _ = toTime(m["end"])
	if start == nil && end == nil {
		return nil, nil, false
	}
	return start, end, true
}

func formatTime(t *time.Time, includeTime bool) any {
	if t == nil {
		return nil
	}
	if includeTime {
		return t.Format(time.RFC3339)
	}
	return t.Format(dateLayout)
}
