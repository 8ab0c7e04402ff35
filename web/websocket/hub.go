// Package websocket pushes order and menu changes to connected dashboards.
package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/allblack/allblack-panel/database/model"
	"github.com/allblack/allblack-panel/logger"

	"github.com/goccy/go-json"
	"go.uber.org/atomic"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeOrderCreated MessageType = "order_created" // a new order was placed
	MessageTypeOrderStatus  MessageType = "order_status"  // an order changed status
	MessageTypeMenuChanged  MessageType = "menu_changed"  // the menu must be reloaded
)

const maxMessageSize = 1024 * 1024

// Message represents a WebSocket message
type Message struct {
	Type    MessageType `json:"type"`
	Payload any         `json:"payload"`
	Time    int64       `json:"time"`
}

// Client is one connection. Customers only receive events about their own
// orders; staff receive everything.
type Client struct {
	ID     string
	UserId int
	Role   model.Role
	Send   chan []byte
	Hub    *Hub
}

func (c *Client) accepts(userId int) bool {
	return c.Role.IsStaff() || userId == 0 || c.UserId == userId
}

type envelope struct {
	data   []byte
	userId int // 0 addresses every client
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	clients map[*Client]bool

	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc

	sent    atomic.Int64
	dropped atomic.Int64
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan envelope, 256),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run owns the client set until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.Send)
			}
			h.clients = make(map[*Client]bool)
			h.mu.Unlock()
			logger.Info("WebSocket hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			logger.Debugf("WebSocket client connected: %s (total: %d)", client.ID, count)

		case client := <-h.unregister:
			h.remove(client)

		case msg := <-h.broadcast:
			h.mu.RLock()
			targets := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				if client.accepts(msg.userId) {
					targets = append(targets, client)
				}
			}
			h.mu.RUnlock()

			for _, client := range targets {
				select {
				case client.Send <- msg.data:
					h.sent.Inc()
				default:
					// slow reader, drop it
					h.dropped.Inc()
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.Send)
		logger.Debugf("WebSocket client disconnected: %s (total: %d)", client.ID, len(h.clients))
	}
}

// Broadcast queues a message for every client interested in userId's
// orders. userId 0 reaches all clients.
func (h *Hub) Broadcast(messageType MessageType, userId int, payload any) {
	if h == nil {
		return
	}
	data, err := json.Marshal(Message{
		Type:    messageType,
		Payload: payload,
		Time:    time.Now().UnixMilli(),
	})
	if err != nil {
		logger.Error("Failed to marshal WebSocket message:", err)
		return
	}
	if len(data) > maxMessageSize {
		logger.Warningf("WebSocket message too large: %d bytes, dropping", len(data))
		return
	}

	select {
	case h.broadcast <- envelope{data: data, userId: userId}:
	case <-time.After(100 * time.Millisecond):
		logger.Warning("WebSocket broadcast channel is full, dropping message")
	case <-h.ctx.Done():
	}
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns how many messages were delivered and how many clients were
// dropped for not keeping up.
func (h *Hub) Stats() (sent int64, dropped int64) {
	return h.sent.Load(), h.dropped.Load()
}

func (h *Hub) Register(client *Client) {
	if h == nil || client == nil {
		return
	}
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

func (h *Hub) Unregister(client *Client) {
	if h == nil || client == nil {
		return
	}
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// Stop gracefully stops the hub and closes all connections
func (h *Hub) Stop() {
	if h != nil && h.cancel != nil {
		h.cancel()
	}
}
