package handlers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"

	"github.com/dimitrije/strata-api/internal/middleware"
	"github.com/dimitrije/strata-api/internal/models"
	"github.com/dimitrije/strata-api/internal/services"
	"github.com/dimitrije/strata-api/internal/sse"
	"github.com/dimitrije/strata-api/internal/webhook"
	"github.com/dimitrije/strata-api/pkg/dto"
)

// sourceDashboard marks events coming from the authenticated management API.
const sourceDashboard = "dashboard"

type EntryHandler struct {
	entryService      *services.EntryService
	collectionService *services.CollectionService
	projectService    *services.ProjectService
	userService       *services.UserService
	dispatcher        *webhook.Dispatcher
	hub               *sse.Hub
}

func NewEntryHandler(
	entryService *services.EntryService,
	collectionService *services.CollectionService,
	projectService *services.ProjectService,
	userService *services.UserService,
	dispatcher *webhook.Dispatcher,
	hub *sse.Hub,
) *EntryHandler {
	return &EntryHandler{
		entryService:      entryService,
		collectionService: collectionService,
		projectService:    projectService,
		userService:       userService,
		dispatcher:        dispatcher,
		hub:               hub,
	}
}

func (h *EntryHandler) Create(c *drift.Context) {
	collection, userID, ok := h.resolveCollection(c)
	if !ok {
		return
	}

	var req dto.CreateEntryRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	ctx := context.Background()

	user, err := h.userService.GetByUUID(ctx, userID)
	if err != nil {
		c.Unauthorized("user not found")
		return
	}

	entry, err := h.entryService.Create(ctx, collection, req.Locale, req.Fields, &user.ID)
	if err != nil {
		if errors.Is(err, services.ErrSingletonExists) {
			c.BadRequest("singleton collection already has an entry")
			return
		}
		c.InternalServerError("failed to create entry")
		return
	}

	fields := h.emit(ctx, models.EventContentCreated, collection, entry)
	_ = c.JSON(201, entryResponse(entry, fields))
}

func (h *EntryHandler) List(c *drift.Context) {
	collection, _, ok := h.resolveCollection(c)
	if !ok {
		return
	}

	ctx := context.Background()

	publishedOnly := c.QueryParam("status") == "published"
	entries, err := h.entryService.ListByCollection(ctx, collection.ID, publishedOnly)
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

func (h *EntryHandler) Get(c *drift.Context) {
	entry, _, ok := h.resolveEntry(c)
	if !ok {
		return
	}

	fields, err := h.entryService.Serialize(context.Background(), entry)
	if err != nil {
		c.InternalServerError("failed to serialize entry")
		return
	}
	_ = c.JSON(200, entryResponse(entry, fields))
}

func (h *EntryHandler) Update(c *drift.Context) {
	entry, userID, ok := h.resolveEntry(c)
	if !ok {
		return
	}

	var req dto.UpdateEntryRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	ctx := context.Background()

	user, err := h.userService.GetByUUID(ctx, userID)
	if err != nil {
		c.Unauthorized("user not found")
		return
	}

	if err := h.entryService.UpdateValues(ctx, entry, req.Fields, &user.ID); err != nil {
		c.InternalServerError("failed to update entry")
		return
	}

	collection, err := h.collectionService.GetByID(ctx, entry.CollectionID)
	if err != nil {
		c.InternalServerError("failed to load collection")
		return
	}

	fields := h.emit(ctx, models.EventContentUpdated, collection, entry)
	_ = c.JSON(200, entryResponse(entry, fields))
}

func (h *EntryHandler) Publish(c *drift.Context) {
	entry, _, ok := h.resolveEntry(c)
	if !ok {
		return
	}

	ctx := context.Background()

	published, err := h.entryService.Publish(ctx, entry.ID)
	if err != nil {
		if errors.Is(err, services.ErrEntryNotFound) {
			c.NotFound("entry not found")
			return
		}
		c.InternalServerError("failed to publish entry")
		return
	}

	collection, err := h.collectionService.GetByID(ctx, published.CollectionID)
	if err != nil {
		c.InternalServerError("failed to load collection")
		return
	}

	fields := h.emit(ctx, models.EventContentPublished, collection, published)
	_ = c.JSON(200, entryResponse(published, fields))
}

func (h *EntryHandler) Unpublish(c *drift.Context) {
	entry, _, ok := h.resolveEntry(c)
	if !ok {
		return
	}

	ctx := context.Background()

	unpublished, err := h.entryService.Unpublish(ctx, entry.ID)
	if err != nil {
		if errors.Is(err, services.ErrEntryNotFound) {
			c.NotFound("entry not found")
			return
		}
		c.InternalServerError("failed to unpublish entry")
		return
	}

	collection, err := h.collectionService.GetByID(ctx, unpublished.CollectionID)
	if err != nil {
		c.InternalServerError("failed to load collection")
		return
	}

	fields := h.emit(ctx, models.EventContentUnpublished, collection, unpublished)
	_ = c.JSON(200, entryResponse(unpublished, fields))
}

func (h *EntryHandler) Delete(c *drift.Context) {
	entry, _, ok := h.resolveEntry(c)
	if !ok {
		return
	}

	ctx := context.Background()

	collection, err := h.collectionService.GetByID(ctx, entry.CollectionID)
	if err != nil {
		c.InternalServerError("failed to load collection")
		return
	}

	// Serialize before the rows disappear so the deleted event still carries
	// the final document.
	fields, _ := h.entryService.Serialize(ctx, entry)

	if c.QueryParam("force") == "true" {
		err = h.entryService.ForceDelete(ctx, entry.ID)
	} else {
		err = h.entryService.Trash(ctx, entry.ID)
	}
	if err != nil {
		if errors.Is(err, services.ErrEntryNotFound) {
			c.NotFound("entry not found")
			return
		}
		c.InternalServerError("failed to delete entry")
		return
	}

	h.emitPrepared(ctx, models.EventContentDeleted, collection, entry, fields)
	_ = c.JSON(200, map[string]string{"message": "entry deleted"})
}

func entryResponse(entry *models.ContentEntry, fields map[string]any) dto.EntryResponse {
	return dto.EntryResponse{
		ID:          entry.UUID,
		Locale:      entry.Locale,
		Status:      string(entry.Status),
		PublishedAt: entry.PublishedAt,
		CreatedAt:   entry.CreatedAt,
		UpdatedAt:   entry.UpdatedAt,
		Fields:      fields,
	}
}

// emit serializes the entry and fans the event out to webhooks and SSE
// clients, returning the document so handlers can reuse it in the response.
func (h *EntryHandler) emit(ctx context.Context, event string, collection *models.Collection, entry *models.ContentEntry) map[string]any {
	fields, err := h.entryService.Serialize(ctx, entry)
	if err != nil {
		fields = map[string]any{}
	}
	h.emitPrepared(ctx, event, collection, entry, fields)
	return fields
}

func (h *EntryHandler) emitPrepared(ctx context.Context, event string, collection *models.Collection, entry *models.ContentEntry, fields map[string]any) {
	h.dispatcher.Dispatch(webhook.Event{
		Name:           event,
		Source:         sourceDashboard,
		ProjectID:      entry.ProjectID,
		CollectionUUID: collection.UUID,
		CollectionSlug: collection.Slug,
		EntryUUID:      entry.UUID,
		ContentEntry:   fields,
	})

	if project, err := h.projectService.GetByID(ctx, entry.ProjectID); err == nil {
		h.hub.BroadcastEntryChanged(project.UUID, sse.EntryChangedEvent{
			EntryID:      entry.UUID,
			CollectionID: collection.UUID,
			ProjectID:    project.UUID,
			Event:        event,
		})
	}
}

func (h *EntryHandler) resolveCollection(c *drift.Context) (*models.Collection, uuid.UUID, bool) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return nil, uuid.Nil, false
	}

	collectionID, err := uuid.Parse(c.Param("collectionId"))
	if err != nil {
		c.BadRequest("invalid collection id")
		return nil, uuid.Nil, false
	}

	ctx := context.Background()

	collection, err := h.collectionService.GetByUUID(ctx, collectionID)
	if err != nil {
		c.NotFound("collection not found")
		return nil, uuid.Nil, false
	}
	if _, err := h.projectService.OwnedByID(ctx, collection.ProjectID, userID); err != nil {
		c.NotFound("collection not found")
		return nil, uuid.Nil, false
	}
	return collection, userID, true
}

func (h *EntryHandler) resolveEntry(c *drift.Context) (*models.ContentEntry, uuid.UUID, bool) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return nil, uuid.Nil, false
	}

	entryID, err := uuid.Parse(c.Param("entryId"))
	if err != nil {
		c.BadRequest("invalid entry id")
		return nil, uuid.Nil, false
	}

	ctx := context.Background()

	entry, err := h.entryService.GetByUUID(ctx, entryID)
	if err != nil {
		c.NotFound("entry not found")
		return nil, uuid.Nil, false
	}
	if _, err := h.projectService.OwnedByID(ctx, entry.ProjectID, userID); err != nil {
		c.NotFound("entry not found")
		return nil, uuid.Nil, false
	}
	return entry, userID, true
}
