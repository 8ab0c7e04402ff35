package controller

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/allblack/allblack-panel/logger"
	"github.com/allblack/allblack-panel/web/websocket"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     sameOrigin,
}

// sameOrigin accepts requests without an Origin header and those whose
// origin host matches the request host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// WebSocketController upgrades logged-in dashboards to a push channel.
type WebSocketController struct {
	BaseController

	hub *websocket.Hub
}

func NewWebSocketController(g *gin.RouterGroup, hub *websocket.Hub) *WebSocketController {
	w := &WebSocketController{hub: hub}
	g.GET("/ws", w.checkLogin, w.handleWebSocket)
	return w
}

func (w *WebSocketController) handleWebSocket(c *gin.Context) {
	identity := w.identity(c)
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warning("websocket upgrade failed:", err)
		return
	}

	client := &websocket.Client{
		ID:     uuid.NewString(),
		UserId: identity.Id,
		Role:   identity.Role,
		Send:   make(chan []byte, 64),
		Hub:    w.hub,
	}
	w.hub.Register(client)

	go writePump(conn, client)
	readPump(conn, client)
}

// readPump discards client messages and unregisters on the first error.
func readPump(conn *ws.Conn, client *websocket.Client) {
	defer func() {
		client.Hub.Unregister(client)
		conn.Close()
	}()
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(conn *ws.Conn, client *websocket.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()
	for {
		select {
		case msg, ok := <-client.Send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(ws.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(ws.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(ws.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
