package handlers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"

	"github.com/dimitrije/strata-api/internal/middleware"
	"github.com/dimitrije/strata-api/internal/models"
	"github.com/dimitrije/strata-api/internal/schema"
	"github.com/dimitrije/strata-api/internal/services"
	"github.com/dimitrije/strata-api/pkg/dto"
)

type FieldHandler struct {
	fieldService      *services.FieldService
	collectionService *services.CollectionService
	projectService    *services.ProjectService
}

func NewFieldHandler(
	fieldService *services.FieldService,
	collectionService *services.CollectionService,
	projectService *services.ProjectService,
) *FieldHandler {
	return &FieldHandler{
		fieldService:      fieldService,
		collectionService: collectionService,
		projectService:    projectService,
	}
}

func fieldResponse(node *schema.FieldNode) dto.FieldResponse {
	f := &node.Field
	resp := dto.FieldResponse{
		ID:          f.UUID,
		Type:        string(f.Type),
		Label:       f.Label,
		Name:        f.Name,
		Description: f.Description,
		Placeholder: f.Placeholder,
		Options:     f.Options,
		Validations: f.Validations,
		Order:       f.Order,
	}
	for i := range node.Children {
		resp.Children = append(resp.Children, fieldResponse(&node.Children[i]))
	}
	return resp
}

func (h *FieldHandler) Create(c *drift.Context) {
	collection, ok := h.resolveCollection(c)
	if !ok {
		return
	}

	var req dto.CreateFieldRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == "" || req.Type == "" {
		c.BadRequest("name and type are required")
		return
	}
	if req.Label == "" {
		req.Label = req.Name
	}

	ctx := context.Background()

	params := services.CreateFieldParams{
		ProjectID:    collection.ProjectID,
		CollectionID: collection.ID,
		Type:         models.FieldType(req.Type),
		Label:        req.Label,
		Name:         req.Name,
		Description:  req.Description,
		Placeholder:  req.Placeholder,
		Options:      req.Options,
		Validations:  req.Validations,
	}

	if req.ParentFieldID != nil {
		parentUUID, err := uuid.Parse(*req.ParentFieldID)
		if err != nil {
			c.BadRequest("invalid parent field id")
			return
		}
		parent, err := h.fieldService.GetByUUID(ctx, parentUUID)
		if err != nil {
			c.NotFound("parent field not found")
			return
		}
		if parent.CollectionID != collection.ID {
			c.BadRequest("parent field belongs to another collection")
			return
		}
		params.ParentFieldID = &parent.ID
	}

	field, err := h.fieldService.Create(ctx, params)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFieldNameTaken):
			c.BadRequest("field name already in use")
		case errors.Is(err, services.ErrParentNotGroup):
			c.BadRequest("parent field is not a group")
		case errors.Is(err, services.ErrGroupNesting):
			c.BadRequest("group fields cannot contain group fields")
		default:
			c.InternalServerError("failed to create field")
		}
		return
	}

	node := schema.FieldNode{Field: *field, Options: schema.DecodeOptions(field.Options)}
	_ = c.JSON(201, fieldResponse(&node))
}

func (h *FieldHandler) List(c *drift.Context) {
	collection, ok := h.resolveCollection(c)
	if !ok {
		return
	}

	tree, err := h.fieldService.ResolveTree(context.Background(), collection.ID)
	if err != nil {
		c.InternalServerError("failed to load fields")
		return
	}

	response := make([]dto.FieldResponse, len(tree))
	for i := range tree {
		response[i] = fieldResponse(&tree[i])
	}
	_ = c.JSON(200, response)
}

func (h *FieldHandler) Update(c *drift.Context) {
	field, ok := h.resolveField(c)
	if !ok {
		return
	}

	var req dto.UpdateFieldRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	updated, err := h.fieldService.Update(context.Background(), field.ID, req.Label, req.Options, req.Validations)
	if err != nil {
		if errors.Is(err, services.ErrFieldNotFound) {
			c.NotFound("field not found")
			return
		}
		c.InternalServerError("failed to update field")
		return
	}

	node := schema.FieldNode{Field: *updated, Options: schema.DecodeOptions(updated.Options)}
	_ = c.JSON(200, fieldResponse(&node))
}

func (h *FieldHandler) Reorder(c *drift.Context) {
	field, ok := h.resolveField(c)
	if !ok {
		return
	}

	var req dto.ReorderFieldRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if err := h.fieldService.Reorder(context.Background(), field.ID, req.Order); err != nil {
		if errors.Is(err, services.ErrFieldNotFound) {
			c.NotFound("field not found")
			return
		}
		c.InternalServerError("failed to reorder field")
		return
	}
	_ = c.JSON(200, map[string]string{"message": "field reordered"})
}

func (h *FieldHandler) Delete(c *drift.Context) {
	field, ok := h.resolveField(c)
	if !ok {
		return
	}

	if err := h.fieldService.SoftDelete(context.Background(), field.ID); err != nil {
		if errors.Is(err, services.ErrFieldNotFound) {
			c.NotFound("field not found")
			return
		}
		c.InternalServerError("failed to delete field")
		return
	}
	_ = c.JSON(200, map[string]string{"message": "field deleted"})
}

func (h *FieldHandler) resolveCollection(c *drift.Context) (*models.Collection, bool) {
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

func (h *FieldHandler) resolveField(c *drift.Context) (*models.Field, bool) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return nil, false
	}

	fieldID, err := uuid.Parse(c.Param("fieldId"))
	if err != nil {
		c.BadRequest("invalid field id")
		return nil, false
	}

	ctx := context.Background()

	field, err := h.fieldService.GetByUUID(ctx, fieldID)
	if err != nil {
		c.NotFound("field not found")
		return nil, false
	}
	if _, err := h.projectService.OwnedByID(ctx, field.ProjectID, userID); err != nil {
		c.NotFound("field not found")
		return nil, false
	}
	return field, true
}
