package websocket

import (
	"context"

	"github.com/allblack/allblack-panel/logger"
	"github.com/allblack/allblack-panel/web/global"
	"github.com/allblack/allblack-panel/web/notify"
)

// GetHub returns the hub of the running web server, nil when none runs.
func GetHub() *Hub {
	webServer := global.GetWebServer()
	if webServer == nil {
		return nil
	}
	hub := webServer.GetWSHub()
	if hub == nil {
		return nil
	}
	wsHub, ok := hub.(*Hub)
	if !ok {
		logger.Warning("WebSocket hub type assertion failed")
		return nil
	}
	return wsHub
}

// Sink forwards notify events to the hub's clients.
type Sink struct {
	Hub *Hub
}

func (s Sink) Name() string {
	return "websocket"
}

func (s Sink) Notify(_ context.Context, e notify.Event) error {
	switch e.Type {
	case notify.OrderCreated:
		s.Hub.Broadcast(MessageTypeOrderCreated, e.UserId, payloadOf(e))
	case notify.OrderStatusChanged:
		s.Hub.Broadcast(MessageTypeOrderStatus, e.UserId, payloadOf(e))
	case notify.MenuChanged:
		s.Hub.Broadcast(MessageTypeMenuChanged, 0, map[string]any{"timestamp": e.Timestamp})
	}
	return nil
}

func payloadOf(e notify.Event) any {
	if e.Order != nil {
		return map[string]any{"event": e, "order": e.Order}
	}
	return e
}
