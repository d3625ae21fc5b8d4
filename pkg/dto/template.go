package dto

import (
	"encoding/json"

	"github.com/google/uuid"
)

// TemplateDocument is the persisted, relocatable template shape. Relation
// field options reference collections by slug and demo entries by symbolic
// ids ("e1", "e2", ...), so the document carries no live database ids.
type TemplateDocument struct {
	Slug        string               `json:"slug"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	HasDemoData bool                 `json:"has_demo_data"`
	Collections []TemplateCollection `json:"collections"`
	DemoData    []TemplateDemoData   `json:"demo_data,omitempty"`
}

type TemplateCollection struct {
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	IsSingleton bool            `json:"is_singleton"`
	Fields      []TemplateField `json:"fields"`
}

type TemplateField struct {
	Type        string          `json:"type"`
	Label       string          `json:"label"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Placeholder *string         `json:"placeholder,omitempty"`
	Options     json.RawMessage `json:"options"`
	Validations json.RawMessage `json:"validations"`
	Children    []TemplateField `json:"children,omitempty"`
}

type TemplateDemoData struct {
	Collection string          `json:"collection"`
	Entries    []TemplateEntry `json:"entries"`
}

type TemplateEntry struct {
	ID     string         `json:"id"`
	Locale string         `json:"locale"`
	Status string         `json:"status"`
	Fields map[string]any `json:"fields"`
}

type TemplateSummary struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	HasDemoData bool      `json:"has_demo_data"`
}

type ExportTemplateRequest struct {
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	Description    string `json:"description"`
	IncludeContent bool   `json:"include_content"`
}

type ApplyTemplateRequest struct {
	TemplateID string `json:"template_id"`
}
