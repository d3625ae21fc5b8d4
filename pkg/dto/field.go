package dto

import (
	"encoding/json"

	"github.com/google/uuid"
)

type CreateFieldRequest struct {
	Type          string          `json:"type"`
	Label         string          `json:"label"`
	Name          string          `json:"name"`
	Description   *string         `json:"description"`
	Placeholder   *string         `json:"placeholder"`
	Options       json.RawMessage `json:"options"`
	Validations   json.RawMessage `json:"validations"`
	ParentFieldID *string         `json:"parent_field_id"`
}

type UpdateFieldRequest struct {
	Label       *string         `json:"label"`
	Options     json.RawMessage `json:"options"`
	Validations json.RawMessage `json:"validations"`
}

type ReorderFieldRequest struct {
	Order int `json:"order"`
}

// FieldResponse renders a field tree node; Children is set only for group
// fields.
type FieldResponse struct {
	ID          uuid.UUID       `json:"id"`
	Type        string          `json:"type"`
	Label       string          `json:"label"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Placeholder *string         `json:"placeholder,omitempty"`
	Options     json.RawMessage `json:"options"`
	Validations json.RawMessage `json:"validations"`
	Order       int             `json:"order"`
	Children    []FieldResponse `json:"children,omitempty"`
}
