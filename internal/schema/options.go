package schema

import (
	"encoding/json"
)

const (
	ModeSingle = "single"
	ModeRange  = "range"

	RelationSingle   = 1
	RelationMultiple = 2
)

// FieldOptions is the decoded form of a field's options blob. The shape is
// type-specific and open-ended, so known keys get typed fields and everything
// else survives untouched in raw for round-tripping.
type FieldOptions struct {
	Repeatable  bool
	Multiple    bool
	HiddenInAPI bool
	IncludeTime bool
	Mode        string
	Relation    *RelationOptions
	Enumeration *EnumerationOptions
	Editor      *EditorOptions

	raw map[string]json.RawMessage
}

type RelationOptions struct {
	Collection CollectionRef `json:"collection"`
	Type       int           `json:"type"`
}

type EnumerationOptions struct {
	List []string `json:"list"`
}

type EditorOptions struct {
	OutputFormat string `json:"outputFormat"`
}

// CollectionRef is an id-or-slug union: live fields reference their target
// collection by numeric id, portable template documents by slug.
type CollectionRef struct {
	ID   int64
	Slug string
}

func (r *CollectionRef) UnmarshalJSON(data []byte) error {
	var id int64
	if err := json.Unmarshal(data, &id); err == nil {
		r.ID = id
		r.Slug = ""
		return nil
	}
	var slug string
	if err := json.Unmarshal(data, &slug); err == nil {
		r.ID = 0
		r.Slug = slug
		return nil
	}
	// Malformed refs are tolerated as empty, never an error.
	r.ID = 0
	r.Slug = ""
	return nil
}

func (r CollectionRef) MarshalJSON() ([]byte, error) {
	if r.Slug != "" {
		return json.Marshal(r.Slug)
	}
	return json.Marshal(r.ID)
}

func (r CollectionRef) IsZero() bool {
	return r.ID == 0 && r.Slug == ""
}

// DecodeOptions parses an options blob. Malformed input yields zero options
// rather than an error; unknown keys are preserved for EncodeOptions.
func DecodeOptions(data json.RawMessage) FieldOptions {
	var opts FieldOptions
	if len(data) == 0 {
		return opts
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return opts
	}

	if v, ok := raw["repeatable"]; ok {
		_ = json.Unmarshal(v, &opts.Repeatable)
	}
	if v, ok := raw["multiple"]; ok {
		_ = json.Unmarshal(v, &opts.Multiple)
	}
	if v, ok := raw["hiddenInAPI"]; ok {
		_ = json.Unmarshal(v, &opts.HiddenInAPI)
	}
	if v, ok := raw["includeTime"]; ok {
		_ = json.Unmarshal(v, &opts.IncludeTime)
	}
	if v, ok := raw["mode"]; ok {
		_ = json.Unmarshal(v, &opts.Mode)
	}
	if v, ok := raw["relation"]; ok {
		var rel RelationOptions
		if err := json.Unmarshal(v, &rel); err == nil {
			opts.Relation = &rel
		}
	}
	if v, ok := raw["enumeration"]; ok {
		var enum EnumerationOptions
		if err := json.Unmarshal(v, &enum); err == nil {
			opts.Enumeration = &enum
		}
	}
	if v, ok := raw["editor"]; ok {
		var ed EditorOptions
		if err := json.Unmarshal(v, &ed); err == nil {
			opts.Editor = &ed
		}
	}

	opts.raw = raw
	return opts
}

// EncodeOptions renders options back to a blob, writing typed fields over the
// preserved unknown keys.
func EncodeOptions(opts FieldOptions) json.RawMessage {
	out := make(map[string]any, len(opts.raw))
	for k, v := range opts.raw {
		out[k] = v
	}
	for _, k := range []string{"repeatable", "multiple", "hiddenInAPI", "includeTime", "mode", "relation", "enumeration", "editor"} {
		delete(out, k)
	}

	if opts.Repeatable {
		out["repeatable"] = true
	}
	if opts.Multiple {
		out["multiple"] = true
	}
	if opts.HiddenInAPI {
		out["hiddenInAPI"] = true
	}
	if opts.IncludeTime {
		out["includeTime"] = true
	}
	if opts.Mode != "" {
		out["mode"] = opts.Mode
	}
	if opts.Relation != nil {
		out["relation"] = opts.Relation
	}
	if opts.Enumeration != nil {
		out["enumeration"] = opts.Enumeration
	}
	if opts.Editor != nil {
		out["editor"] = opts.Editor
	}

	data, err := json.Marshal(out)
	if err != nil {
		return json.RawMessage("{}")
	}
	return data
}

// IsRange reports whether a date/datetime field stores a start/end pair.
func (o FieldOptions) IsRange() bool {
	return o.Mode == ModeRange
}
