package handlers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"

	"github.com/dimitrije/strata-api/internal/middleware"
	"github.com/dimitrije/strata-api/internal/models"
	"github.com/dimitrije/strata-api/internal/services"
	"github.com/dimitrije/strata-api/pkg/dto"
)

type CollectionHandler struct {
	collectionService *services.CollectionService
	projectService    *services.ProjectService
}

func NewCollectionHandler(
	collectionService *services.CollectionService,
	projectService *services.ProjectService,
) *CollectionHandler {
	return &CollectionHandler{
		collectionService: collectionService,
		projectService:    projectService,
	}
}

func collectionResponse(col *models.Collection) dto.CollectionResponse {
	return dto.CollectionResponse{
		ID:          col.UUID,
		Name:        col.Name,
		Slug:        col.Slug,
		Order:       col.Order,
		IsSingleton: col.IsSingleton,
		CreatedAt:   col.CreatedAt,
		UpdatedAt:   col.UpdatedAt,
	}
}

func (h *CollectionHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		c.BadRequest("invalid project id")
		return
	}

	ctx := context.Background()

	project, err := h.projectService.GetOwned(ctx, projectID, userID)
	if err != nil {
		c.NotFound("project not found")
		return
	}

	var req dto.CreateCollectionRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == "" || req.Slug == "" {
		c.BadRequest("name and slug are required")
		return
	}

	collection, err := h.collectionService.Create(ctx, project.ID, req.Name, req.Slug, req.IsSingleton)
	if err != nil {
		if errors.Is(err, services.ErrCollectionSlugTaken) {
			c.BadRequest("slug already in use")
			return
		}
		c.InternalServerError("failed to create collection")
		return
	}

	_ = c.JSON(201, collectionResponse(collection))
}

func (h *CollectionHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		c.BadRequest("invalid project id")
		return
	}

	ctx := context.Background()

	project, err := h.projectService.GetOwned(ctx, projectID, userID)
	if err != nil {
		c.NotFound("project not found")
		return
	}

	collections, err := h.collectionService.ListByProject(ctx, project.ID)
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

func (h *CollectionHandler) Get(c *drift.Context) {
	collection, ok := h.resolveOwned(c)
	if !ok {
		return
	}
	_ = c.JSON(200, collectionResponse(collection))
}

func (h *CollectionHandler) Update(c *drift.Context) {
	collection, ok := h.resolveOwned(c)
	if !ok {
		return
	}

	var req dto.UpdateCollectionRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	updated, err := h.collectionService.Update(context.Background(), collection.ID, req.Name, req.IsSingleton)
	if err != nil {
		if errors.Is(err, services.ErrCollectionNotFound) {
			c.NotFound("collection not found")
			return
		}
		c.InternalServerError("failed to update collection")
		return
	}
	_ = c.JSON(200, collectionResponse(updated))
}

func (h *CollectionHandler) Delete(c *drift.Context) {
	collection, ok := h.resolveOwned(c)
	if !ok {
		return
	}

	ctx := context.Background()

	if c.QueryParam("force") == "true" {
		if err := h.collectionService.ForceDelete(ctx, collection.ID); err != nil {
			c.InternalServerError("failed to delete collection")
			return
		}
	} else {
		if err := h.collectionService.SoftDelete(ctx, collection.ID); err != nil {
			c.InternalServerError("failed to delete collection")
			return
		}
	}

	_ = c.JSON(200, map[string]string{"message": "collection deleted"})
}

func (h *CollectionHandler) resolveOwned(c *drift.Context) (*models.Collection, bool) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return nil, false
	}

	collectionID, err := uuid.Parse(c.Param("collectionId"))
	if err != nil {
		c.BadRequest("invalid collection id")
		return nil, false
	}

	ctx := context.Background()

	collection, err := h.collectionService.GetByUUID(ctx, collectionID)
	if err != nil {
		c.NotFound("collection not found")
		return nil, false
	}

	if _, err := h.projectService.OwnedByID(ctx, collection.ProjectID, userID); err != nil {
		c.NotFound("collection not found")
		return nil, false
	}
	return collection, true
}
