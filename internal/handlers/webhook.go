package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"

	"github.com/dimitrije/strata-api/internal/middleware"
	"github.com/dimitrije/strata-api/internal/services"
	"github.com/dimitrije/strata-api/pkg/dto"
)

type WebhookHandler struct {
	webhookService *services.WebhookService
	projectService *services.ProjectService
}

func NewWebhookHandler(webhookService *services.WebhookService, projectService *services.ProjectService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
		projectService: projectService,
	}
}

func (h *WebhookHandler) Create(c *drift.Context) {
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

	var req dto.CreateWebhookRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == "" || req.URL == "" {
		c.BadRequest("name and url are required")
		return
	}
	if len(req.Events) == 0 {
		c.BadRequest("at least one event is required")
		return
	}

	collectionIDs := make([]uuid.UUID, 0, len(req.CollectionIDs))
	for _, raw := range req.CollectionIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.BadRequest("invalid collection id: " + raw)
			return
		}
		collectionIDs = append(collectionIDs, id)
	}

	webhook, err := h.webhookService.Create(ctx, project.ID, services.WebhookParams{
		Name:          req.Name,
		URL:           req.URL,
		Secret:        req.Secret,
		Events:        req.Events,
		Sources:       req.Sources,
		CollectionIDs: collectionIDs,
	})
	if err != nil {
		c.InternalServerError("failed to create webhook")
		return
	}

	_ = c.JSON(201, webhook)
}

func (h *WebhookHandler) List(c *drift.Context) {
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

	webhooks, err := h.webhookService.ListByProject(ctx, project.ID)
	if err != nil {
		c.InternalServerError("failed to list webhooks")
		return
	}
	_ = c.JSON(200, webhooks)
}

func (h *WebhookHandler) Delete(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	webhookID, err := uuid.Parse(c.Param("webhookId"))
	if err != nil {
		c.BadRequest("invalid webhook id")
		return
	}

	ctx := context.Background()

	webhook, err := h.webhookService.GetByUUID(ctx, webhookID)
	if err != nil {
		c.NotFound("webhook not found")
		return
	}
	if _, err := h.projectService.OwnedByID(ctx, webhook.ProjectID, userID); err != nil {
		c.NotFound("webhook not found")
		return
	}

	if err := h.webhookService.Delete(ctx, webhookID); err != nil {
		c.InternalServerError("failed to delete webhook")
		return
	}
	_ = c.JSON(200, map[string]string{"message": "webhook deleted"})
}
