package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"

	"github.com/dimitrije/strata-api/internal/middleware"
	"github.com/dimitrije/strata-api/internal/services"
	"github.com/dimitrije/strata-api/pkg/dto"
)

type AssetHandler struct {
	assetService   *services.AssetService
	projectService *services.ProjectService
}

func NewAssetHandler(assetService *services.AssetService, projectService *services.ProjectService) *AssetHandler {
	return &AssetHandler{
		assetService:   assetService,
		projectService: projectService,
	}
}

func (h *AssetHandler) Register(c *drift.Context) {
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

	var req dto.RegisterAssetRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Filename == "" || req.Path == "" {
		c.BadRequest("filename and path are required")
		return
	}

	asset, err := h.assetService.Register(ctx, project.ID, req.Filename, req.MimeType, req.Size, req.Path, req.ThumbnailPath, req.Metadata)
	if err != nil {
		c.InternalServerError("failed to register asset")
		return
	}
	_ = c.JSON(201, asset)
}

func (h *AssetHandler) List(c *drift.Context) {
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

	assets, err := h.assetService.ListByProject(ctx, project.ID)
	if err != nil {
		c.InternalServerError("failed to list assets")
		return
	}
	_ = c.JSON(200, assets)
}

func (h *AssetHandler) Delete(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	assetID, err := uuid.Parse(c.Param("assetId"))
	if err != nil {
		c.BadRequest("invalid asset id")
		return
	}

	ctx := context.Background()

	asset, err := h.assetService.GetByUUID(ctx, assetID)
	if err != nil {
		c.NotFound("asset not found")
		return
	}
	if _, err := h.projectService.OwnedByID(ctx, asset.ProjectID, userID); err != nil {
		c.NotFound("asset not found")
		return
	}

	if err := h.assetService.Delete(ctx, asset.ID); err != nil {
		c.InternalServerError("failed to delete asset")
		return
	}
	_ = c.JSON(200, map[string]string{"message": "asset deleted"})
}
