package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// FieldType is the closed set of value types a field can declare. Unknown
// types fall back to text storage so new types degrade instead of failing.
type FieldType string

const (
	FieldText        FieldType = "text"
	FieldLongtext    FieldType = "longtext"
	FieldRichtext    FieldType = "richtext"
	FieldSlug        FieldType = "slug"
	FieldEmail       FieldType = "email"
	FieldPassword    FieldType = "password"
	FieldNumber      FieldType = "number"
	FieldEnumeration FieldType = "enumeration"
	FieldBoolean     FieldType = "boolean"
	FieldColor       FieldType = "color"
	FieldDate        FieldType = "date"
	FieldTime        FieldType = "time"
	FieldDatetime    FieldType = "datetime"
	FieldMedia       FieldType = "media"
	FieldRelation    FieldType = "relation"
	FieldJSON        FieldType = "json"
	FieldGroup       FieldType = "group"
)

var fieldTypes = map[FieldType]bool{
	FieldText: true, FieldLongtext: true, FieldRichtext: true,
	FieldSlug: true, FieldEmail: true, FieldPassword: true,
	FieldNumber: true, FieldEnumeration: true, FieldBoolean: true,
	FieldColor: true, FieldDate: true, FieldTime: true,
	FieldDatetime: true, FieldMedia: true, FieldRelation: true,
	FieldJSON: true, FieldGroup: true,
}

func (t FieldType) Known() bool {
	return fieldTypes[t]
}

type Field struct {
	ID            int64           `json:"-"`
	UUID          uuid.UUID       `json:"id"`
	ProjectID     int64           `json:"-"`
	CollectionID  int64           `json:"-"`
	ParentFieldID *int64          `json:"-"`
	Type          FieldType       `json:"type"`
	Label         string          `json:"label"`
	Name          string          `json:"name"`
	Description   *string         `json:"description,omitempty"`
	Placeholder   *string         `json:"placeholder,omitempty"`
	Options       json.RawMessage `json:"options"`
	Validations   json.RawMessage `json:"validations"`
	Order         int             `json:"order"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     *time.Time      `json:"deleted_at,omitempty"`
}

func (f *Field) IsGroup() bool {
	return f.Type == FieldGroup
}

func (f *Field) IsTopLevel() bool {
	return f.ParentFieldID == nil
}
