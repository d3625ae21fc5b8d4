package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"

	"github.com/dimitrije/strata-api/internal/middleware"
	"github.com/dimitrije/strata-api/internal/services"
	"github.com/dimitrije/strata-api/pkg/dto"
)

type TemplateHandler struct {
	templateService   *services.TemplateService
	projectService    *services.ProjectService
	collectionService *services.CollectionService
}

func NewTemplateHandler(
	templateService *services.TemplateService,
	projectService *services.ProjectService,
	collectionService *services.CollectionService,
) *TemplateHandler {
	return &TemplateHandler{
		templateService:   templateService,
		projectService:    projectService,
		collectionService: collectionService,
	}
}

func (h *TemplateHandler) ExportProject(c *drift.Context) {
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

	var req dto.ExportTemplateRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == "" {
		req.Name = project.Name
	}
	if req.Slug == "" {
		req.Slug = project.Slug
	}

	template, err := h.templateService.ExportProject(ctx, project, req.Name, req.Slug, req.Description, req.IncludeContent)
	if err != nil {
		if errors.Is(err, services.ErrTemplateSlugTaken) {
			c.BadRequest("template slug already in use")
			return
		}
		c.InternalServerError("failed to export project")
		return
	}
	_ = c.JSON(201, template)
}

func (h *TemplateHandler) ExportCollection(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	collectionID, err := uuid.Parse(c.Param("collectionId"))
	if err != nil {
		c.BadRequest("invalid collection id")
		return
	}

	ctx := context.Background()

	collection, err := h.collectionService.GetByUUID(ctx, collectionID)
	if err != nil {
		c.NotFound("collection not found")
		return
	}
	if _, err := h.projectService.OwnedByID(ctx, collection.ProjectID, userID); err != nil {
		c.NotFound("collection not found")
		return
	}

	var req dto.ExportTemplateRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	template, err := h.templateService.ExportCollection(ctx, collection, req.Name, req.Description, req.IncludeContent)
	if err != nil {
		c.InternalServerError("failed to export collection")
		return
	}
	_ = c.JSON(201, template)
}

func (h *TemplateHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	templates, err := h.templateService.List(context.Background())
	if err != nil {
		c.InternalServerError("failed to list templates")
		return
	}

	response := make([]dto.TemplateSummary, len(templates))
	for i, t := range templates {
		response[i] = dto.TemplateSummary{
			ID:          t.UUID,
			Slug:        t.Slug,
			Name:        t.Name,
			Description: t.Description,
			HasDemoData: t.HasDemoData,
		}
	}
	_ = c.JSON(200, response)
}

func (h *TemplateHandler) Get(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	templateID, err := uuid.Parse(c.Param("templateId"))
	if err != nil {
		c.BadRequest("invalid template id")
		return
	}

	template, err := h.templateService.GetByUUID(context.Background(), templateID)
	if err != nil {
		c.NotFound("template not found")
		return
	}
	_ = c.JSON(200, template)
}

func (h *TemplateHandler) Delete(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	templateID, err := uuid.Parse(c.Param("templateId"))
	if err != nil {
		c.BadRequest("invalid template id")
		return
	}

	if err := h.templateService.Delete(context.Background(), templateID); err != nil {
		c.InternalServerError("failed to delete template")
		return
	}
	_ = c.JSON(200, map[string]string{"message": "template deleted"})
}

// Apply installs a stored template's schema and demo content into a project.
func (h *TemplateHandler) Apply(c *drift.Context) {
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

	var req dto.ApplyTemplateRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	templateID, err := uuid.Parse(req.TemplateID)
	if err != nil {
		c.BadRequest("invalid template id")
		return
	}

	template, err := h.templateService.GetByUUID(ctx, templateID)
	if err != nil {
		c.NotFound("template not found")
		return
	}

	var doc dto.TemplateDocument
	if err := json.Unmarshal(template.Data, &doc); err != nil {
		c.InternalServerError("template document is corrupt")
		return
	}

	if err := h.templateService.Apply(ctx, project, &doc); err != nil {
		if errors.Is(err, services.ErrCollectionSlugTaken) {
			c.BadRequest("project already has a collection with a template slug")
			return
		}
		c.InternalServerError("failed to apply template")
		return
	}
	_ = c.JSON(200, map[string]string{"message": "template applied"})
}
