package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"

	"github.com/dimitrije/strata-api/internal/middleware"
	"github.com/dimitrije/strata-api/internal/services"
	"github.com/dimitrije/strata-api/internal/sse"
)

type SSEHandler struct {
	hub            *sse.Hub
	projectService *services.ProjectService
}

func NewSSEHandler(hub *sse.Hub, projectService *services.ProjectService) *SSEHandler {
	return &SSEHandler{
		hub:            hub,
		projectService: projectService,
	}
}

func (h *SSEHandler) Connect(c *drift.Context) {
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

	if _, err := h.projectService.GetOwned(ctx, projectID, userID); err != nil {
		c.NotFound("project not found")
		return
	}

	sseCtx := c.SSE()

	clientID := uuid.New().String()
	client := &sse.Client{
		ID:       clientID,
		UserID:   userID,
		Projects: map[uuid.UUID]bool{projectID: true},
		Send:     make(chan []byte, 256),
	}

	h.hub.Register(client)
	defer h.hub.Unregister(client)

	if err := sseCtx.SendJSON(map[string]string{
		"type":      "connected",
		"client_id": clientID,
	}, "system", ""); err != nil {
		return
	}

	done := make(chan struct{})
	go func() {
		<-c.Request.Context().Done()
		close(done)
	}()

	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			if err := sseCtx.Send(string(msg), "message", ""); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (h *SSEHandler) Subscribe(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	clientID := c.Param("clientId")
	if clientID == "" {
		c.BadRequest("client_id is required")
		return
	}

	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		c.BadRequest("invalid project id")
		return
	}

	if _, err := h.projectService.GetOwned(context.Background(), projectID, userID); err != nil {
		c.NotFound("project not found")
		return
	}

	h.hub.SubscribeToProject(clientID, projectID)

	_ = c.JSON(200, map[string]string{
		"message": fmt.Sprintf("subscribed to project %s", projectID),
	})
}

func (h *SSEHandler) Unsubscribe(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	clientID := c.Param("clientId")
	if clientID == "" {
		c.BadRequest("client_id is required")
		return
	}

	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		c.BadRequest("invalid project id")
		return
	}

	h.hub.UnsubscribeFromProject(clientID, projectID)

	_ = c.JSON(200, map[string]string{
		"message": fmt.Sprintf("unsubscribed from project %s", projectID),
	})
}
