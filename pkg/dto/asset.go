package dto

import "encoding/json"

type RegisterAssetRequest struct {
	Filename      string          `json:"filename"`
	MimeType      string          `json:"mime_type"`
	Size          int64           `json:"size"`
	Path          string          `json:"path"`
	ThumbnailPath *string         `json:"thumbnail_path"`
	Metadata      json.RawMessage `json:"metadata"`
}
