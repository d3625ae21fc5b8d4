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

type ProjectHandler struct {
	projectService *services.ProjectService
	userService    *services.UserService
}

func NewProjectHandler(projectService *services.ProjectService, userService *services.UserService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		userService:    userService,
	}
}

func projectResponse(p *models.Project) dto.ProjectResponse {
	return dto.ProjectResponse{
		ID:        p.UUID,
		Name:      p.Name,
		Slug:      p.Slug,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (h *ProjectHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateProjectRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == "" || req.Slug == "" {
		c.BadRequest("name and slug are required")
		return
	}

	ctx := context.Background()

	user, err := h.userService.GetByUUID(ctx, userID)
	if err != nil {
		c.Unauthorized("user not found")
		return
	}

	project, err := h.projectService.Create(ctx, req.Name, req.Slug, user.ID)
	if err != nil {
		if errors.Is(err, services.ErrProjectSlugTaken) {
			c.BadRequest("slug already in use")
			return
		}
		c.InternalServerError("failed to create project")
		return
	}

	_ = c.JSON(201, projectResponse(project))
}

func (h *ProjectHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	ctx := context.Background()

	user, err := h.userService.GetByUUID(ctx, userID)
	if err != nil {
		c.Unauthorized("user not found")
		return
	}

	projects, err := h.projectService.ListByOwner(ctx, user.ID)
	if err != nil {
		c.InternalServerError("failed to list projects")
		return
	}

	response := make([]dto.ProjectResponse, len(projects))
	for i := range projects {
		response[i] = projectResponse(&projects[i])
	}
	_ = c.JSON(200, response)
}

func (h *ProjectHandler) Get(c *drift.Context) {
	project, ok := h.resolveOwned(c)
	if !ok {
		return
	}
	_ = c.JSON(200, projectResponse(project))
}

func (h *ProjectHandler) Update(c *drift.Context) {
	project, ok := h.resolveOwned(c)
	if !ok {
		return
	}

	var req dto.UpdateProjectRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	updated, err := h.projectService.Update(context.Background(), project.ID, req.Name)
	if err != nil {
		c.InternalServerError("failed to update project")
		return
	}
	_ = c.JSON(200, projectResponse(updated))
}

func (h *ProjectHandler) Delete(c *drift.Context) {
	project, ok := h.resolveOwned(c)
	if !ok {
		return
	}

	if err := h.projectService.Delete(context.Background(), project.ID); err != nil {
		c.InternalServerError("failed to delete project")
		return
	}
	_ = c.JSON(200, map[string]string{"message": "project deleted"})
}

// resolveOwned parses the projectId path param and verifies ownership,
// writing the error response itself on failure.
func (h *ProjectHandler) resolveOwned(c *drift.Context) (*models.Project, bool) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return nil, false
	}

	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		c.BadRequest("invalid project id")
		return nil, false
	}

	project, err := h.projectService.GetOwned(context.Background(), projectID, userID)
	if err != nil {
		c.NotFound("project not found")
		return nil, false
	}
	return project, true
}
