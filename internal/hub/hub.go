package hub

import (
	"encoding/json"
	"sync"

	"github.com/aura-events/concierge-service/internal/log"
)

// Hub tracks live connections and the broadcast groups they belong to.
// Groups are keyed by user identity ("user_<id>") so out-of-band messages
// reach every connection a user currently holds.
type Hub struct {
	clients    map[string]*Client            // clientID -> client
	groups     map[string]map[string]*Client // group -> clientID -> client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *GroupMessage
	mu         sync.RWMutex
}

type GroupMessage struct {
	Group   string
	Message []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		groups:     make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *GroupMessage, 256),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			l := log.L()
			l.Debug().Str(log.FieldConnectionID, client.ID).Msg("client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				for group, members := range h.groups {
					delete(members, client.ID)
					if len(members) == 0 {
						delete(h.groups, group)
					}
				}
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()
			l := log.L()
			l.Debug().Str(log.FieldConnectionID, client.ID).Msg("client unregistered")

		case msg := <-h.broadcast:
			h.mu.RLock()
			if members, ok := h.groups[msg.Group]; ok {
				for _, client := range members {
					select {
					case client.Send <- msg.Message:
					default:
						// Slow or gone: drop silently, delivery is best-effort.
						go h.removeClient(client)
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

// Join adds a connection to a group. Idempotent per connection.
func (h *Hub) Join(group string, client *Client) {
	if group == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.groups[group]; !ok {
		h.groups[group] = make(map[string]*Client)
	}
	h.groups[group][client.ID] = client
	l := log.L()
	l.Info().Str(log.FieldConnectionID, client.ID).Str(log.FieldGroup, group).Msg("client joined group")
}

// Leave removes a connection from a group. No-op if absent.
func (h *Hub) Leave(group string, client *Client) {
	if group == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.groups[group]; ok {
		delete(members, client.ID)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
	l := log.L()
	l.Info().Str(log.FieldConnectionID, client.ID).Str(log.FieldGroup, group).Msg("client left group")
}

// Broadcast delivers a payload to every current member of a group.
// Members that already disconnected silently drop the message.
func (h *Hub) Broadcast(group string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	h.broadcast <- &GroupMessage{
		Group:   group,
		Message: data,
	}
	return nil
}

// GroupSize returns the current member count of a group.
func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if members, ok := h.groups[group]; ok {
		return len(members)
	}
	return 0
}

// ClientCount returns the number of live connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) removeClient(client *Client) {
	h.unregister <- client
}
