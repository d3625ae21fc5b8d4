package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"

	"github.com/dimitrije/strata-api/internal/middleware"
	"github.com/dimitrije/strata-api/internal/models"
	"github.com/dimitrije/strata-api/internal/services"
	"github.com/dimitrije/strata-api/pkg/dto"
)

type APIKeyHandler struct {
	apiKeyService  *services.APIKeyService
	projectService *services.ProjectService
	userService    *services.UserService
}

func NewAPIKeyHandler(
	apiKeyService *services.APIKeyService,
	projectService *services.ProjectService,
	userService *services.UserService,
) *APIKeyHandler {
	return &APIKeyHandler{
		apiKeyService:  apiKeyService,
		projectService: projectService,
		userService:    userService,
	}
}

func apiKeyResponse(k *models.ProjectAPIKey, plainKey string) dto.APIKeyResponse {
	return dto.APIKeyResponse{
		ID:        k.UUID,
		Name:      k.Name,
		Key:       plainKey,
		KeyPrefix: k.KeyPrefix,
		ExpiresAt: k.ExpiresAt,
		RevokedAt: k.RevokedAt,
		CreatedAt: k.CreatedAt,
	}
}

func (h *APIKeyHandler) Create(c *drift.Context) {
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

	var req dto.CreateAPIKeyRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	user, err := h.userService.GetByUUID(ctx, userID)
	if err != nil {
		c.Unauthorized("user not found")
		return
	}

	key, plainKey, err := h.apiKeyService.Create(ctx, project, req.Name, user.ID, req.ExpiresAt)
	if err != nil {
		c.InternalServerError("failed to create api key")
		return
	}

	_ = c.JSON(201, apiKeyResponse(key, plainKey))
}

func (h *APIKeyHandler) List(c *drift.Context) {
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

	keys, err := h.apiKeyService.ListByProject(ctx, project.ID)
	if err != nil {
		c.InternalServerError("failed to list api keys")
		return
	}

	response := make([]dto.APIKeyResponse, len(keys))
	for i := range keys {
		response[i] = apiKeyResponse(&keys[i], "")
	}
	_ = c.JSON(200, response)
}

func (h *APIKeyHandler) Revoke(c *drift.Context) {
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

	keyID, err := uuid.Parse(c.Param("keyId"))
	if err != nil {
		c.BadRequest("invalid key id")
		return
	}

	ctx := context.Background()

	if _, err := h.projectService.GetOwned(ctx, projectID, userID); err != nil {
		c.NotFound("project not found")
		return
	}

	if err := h.apiKeyService.Revoke(ctx, keyID); err != nil {
		c.InternalServerError("failed to revoke api key")
		return
	}
	_ = c.JSON(200, map[string]string{"message": "api key revoked"})
}
