package handler

import (
	"net/http"

	"nexthire/chat/internal/relay"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The relay is a development server; any origin may connect.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket authenticates the request and hands the upgraded
// connection to the hub.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	raw := bearer(c)
	if raw == "" {
		errorJSON(c, http.StatusUnauthorized, "Authorization token missing")
		return
	}
	p, err := h.validateToken(raw)
	if err != nil {
		errorJSON(c, http.StatusUnauthorized, "Invalid token or expired")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the response.
		h.Log.Warnw("websocket upgrade failed", "user", p.ID, "error", err)
		return
	}

	client := relay.NewWebSocketClient(h.Hub, conn, p.ID, h.Log)
	select {
	case h.Hub.RegisterCh <- client:
	case <-h.Hub.Done():
		conn.Close()
		return
	}
	client.Run()
}
