package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"

	"github.com/dimitrije/strata-api/internal/content"
	"github.com/dimitrije/strata-api/internal/middleware"
	"github.com/dimitrije/strata-api/internal/models"
	"github.com/dimitrije/strata-api/internal/services"
	"github.com/dimitrije/strata-api/pkg/dto"
)

// ContentHandler serves the public read-only Content API, authenticated with
// project API keys. Only published entries are visible here.
type ContentHandler struct {
	collectionService *services.CollectionService
	entryService      *services.EntryService
	serializer        *content.Serializer
}

func NewContentHandler(
	collectionService *services.CollectionService,
	entryService *services.EntryService,
	serializer *content.Serializer,
) *ContentHandler {
	return &ContentHandler{
		collectionService: collectionService,
		entryService:      entryService,
		serializer:        serializer,
	}
}

func (h *ContentHandler) ListCollections(c *drift.Context) {
	projectID := middleware.GetAPIKeyProjectID(c)
	if projectID == 0 {
		c.Unauthorized("not authenticated")
		return
	}

	collections, err := h.collectionService.ListByProject(context.Background(), projectID)
	if err != nil {
		c.InternalServerError("failed to list collections")
		return
	}

	response := make([]dto.CollectionResponse, len(collections))
	for i := range collections {
		response[i] = collectionResponse(&collections[i])
	}
	_ = c.JSON(200, response)
}

func (h *ContentHandler) GetCollection(c *drift.Context) {
	collection, ok := h.resolveCollection(c)
	if !ok {
		return
	}

	schema, err := h.serializer.SerializeCollectionSchema(context.Background(), collection)
	if err != nil {
		c.InternalServerError("failed to load collection schema")
		return
	}
	_ = c.JSON(200, schema)
}

func (h *ContentHandler) ListEntries(c *drift.Context) {
	collection, ok := h.resolveCollection(c)
	if !ok {
		return
	}

	ctx := context.Background()

	entries, err := h.entryService.ListByCollection(ctx, collection.ID, true)
	if err != nil {
		c.InternalServerError("failed to list entries")
		return
	}

	response := make([]dto.EntryResponse, 0, len(entries))
	for i := range entries {
		fields, err := h.entryService.Serialize(ctx, &entries[i])
		if err != nil {
			c.InternalServerError("failed to serialize entries")
			return
		}
		response = append(response, entryResponse(&entries[i], fields))
	}
	_ = c.JSON(200, response)
}

func (h *ContentHandler) GetEntry(c *drift.Context) {
	collection, ok := h.resolveCollection(c)
	if !ok {
		return
	}

	entryID, err := uuid.Parse(c.Param("entryId"))
	if err != nil {
		c.BadRequest("invalid entry id")
		return
	}

	ctx := context.Background()

	entry, err := h.entryService.GetByUUID(ctx, entryID)
	if err != nil || entry.CollectionID != collection.ID || entry.Status != models.EntryPublished {
		c.NotFound("entry not found")
		return
	}

	fields, err := h.entryService.Serialize(ctx, entry)
	if err != nil {
		c.InternalServerError("failed to serialize entry")
		return
	}
	_ = c.JSON(200, entryResponse(entry, fields))
}

func (h *ContentHandler) resolveCollection(c *drift.Context) (*models.Collection, bool) {
	projectID := middleware.GetAPIKeyProjectID(c)
	if projectID == 0 {
		c.Unauthorized("not authenticated")
		return nil, false
	}

	slug := c.Param("slug")
	if slug == "" {
		c.BadRequest("collection slug is required")
		return nil, false
	}

	collection, err := h.collectionService.GetBySlug(context.Background(), projectID, slug)
	if err != nil {
		c.NotFound("collection not found")
		return nil, false
	}
	return collection, true
}
