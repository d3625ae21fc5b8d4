// Package webhook matches content events against webhook subscriptions and
// delivers the serialized payloads.
package webhook

import (
	"github.com/google/uuid"

	"github.com/dimitrije/strata-api/internal/models"
)

// Event is one content change, carrying the serialized entry document as the
// payload consumers receive verbatim.
type Event struct {
	Name           string         `json:"event"`
	Source         string         `json:"source"`
	ProjectID      int64          `json:"-"`
	CollectionUUID uuid.UUID      `json:"collection_id"`
	CollectionSlug string         `json:"collection"`
	EntryUUID      uuid.UUID      `json:"entry_id"`
	ContentEntry   map[string]any `json:"content_entry"`
}

// Matches reports whether a webhook subscribes to an event: the event name
// must be listed, the source must be listed (empty list = any source), and
// the collection must be listed (empty list = all collections).
func Matches(w *models.Webhook, e *Event) bool {
	if !contains(w.Events, e.Name) {
		return false
	}
	if len(w.Sources) > 0 && !contains(w.Sources, e.Source) {
		return false
	}
	if len(w.CollectionIDs) == 0 {
		return true
	}
	for _, id := range w.CollectionIDs {
		if id == e.CollectionUUID {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
