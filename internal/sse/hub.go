package sse

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// EntryChangedEvent notifies dashboard clients that an entry changed.
type EntryChangedEvent struct {
	EntryID      uuid.UUID `json:"entry_id"`
	CollectionID uuid.UUID `json:"collection_id"`
	ProjectID    uuid.UUID `json:"project_id"`
	Event        string    `json:"event"`
}

type Client struct {
	ID       string
	UserID   uuid.UUID
	Projects map[uuid.UUID]bool
	Send     chan []byte
}

type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *ProjectMessage
	mu         sync.RWMutex
}

type ProjectMessage struct {
	ProjectID uuid.UUID
	Event     Event
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *ProjectMessage, 256),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Event)
			for _, client := range h.clients {
				if client.Projects[msg.ProjectID] {
					select {
					case client.Send <- data:
					default:
						// Client buffer full, skip
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) SubscribeToProject(clientID string, projectID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		client.Projects[projectID] = true
	}
}

func (h *Hub) UnsubscribeFromProject(clientID string, projectID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		delete(client.Projects, projectID)
	}
}

// BroadcastEntryChanged pushes an entry change to all clients watching the
// project.
func (h *Hub) BroadcastEntryChanged(projectID uuid.UUID, event EntryChangedEvent) {
	h.broadcast <- &ProjectMessage{
		ProjectID: projectID,
		Event:     Event{Type: "entry." + event.Event, Data: event},
	}
}
