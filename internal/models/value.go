package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// FieldValue is one stored value slot for an entry. Exactly one storage
// column (or one date/datetime pair in range mode) is populated, selected by
// FieldType. Relation, media and group fields store no scalar here.
type FieldValue struct {
	ID               int64           `json:"-"`
	UUID             uuid.UUID       `json:"id"`
	ProjectID        int64           `json:"-"`
	CollectionID     int64           `json:"-"`
	EntryID          int64           `json:"-"`
	FieldID          int64           `json:"-"`
	GroupID          *int64          `json:"-"`
	FieldType        FieldType       `json:"field_type"`
	SortOrder        int             `json:"sort_order"`
	TextValue        *string         `json:"text_value,omitempty"`
	NumberValue      *float64        `json:"number_value,omitempty"`
	BooleanValue     *bool           `json:"boolean_value,omitempty"`
	DateValue        *time.Time      `json:"date_value,omitempty"`
	DateValueEnd     *time.Time      `json:"date_value_end,omitempty"`
	DatetimeValue    *time.Time      `json:"datetime_value,omitempty"`
	DatetimeValueEnd *time.Time      `json:"datetime_value_end,omitempty"`
	JSONValue        json.RawMessage `json:"json_value,omitempty"`
}

// FieldGroupInstance is one repetition of a group field within one entry.
type FieldGroupInstance struct {
	ID           int64     `json:"-"`
	UUID         uuid.UUID `json:"id"`
	ProjectID    int64     `json:"-"`
	CollectionID int64     `json:"-"`
	EntryID      int64     `json:"-"`
	FieldID      int64     `json:"-"`
	SortOrder    int       `json:"sort_order"`
}

// MediaRelation links a media field value to an asset.
type MediaRelation struct {
	ID        int64 `json:"-"`
	ValueID   int64 `json:"-"`
	AssetID   int64 `json:"-"`
	SortOrder int   `json:"sort_order"`
}

// EntryRelation links a relation field value to another content entry.
type EntryRelation struct {
	ID             int64 `json:"-"`
	ValueID        int64 `json:"-"`
	RelatedEntryID int64 `json:"-"`
	SortOrder      int   `json:"sort_order"`
}
