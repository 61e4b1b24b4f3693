package handler

import (
	"chatapp/backend/internal/chathub"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func (h *Handler) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origin == h.Config.ClientOrigin
		},
	}
}

// ServeWebSocket upgrades the request and registers the connection with the
// hub under the authenticated user. It runs behind ProtectRoute. A userId query
// parameter, if present, must name that same user.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	user := currentUser(c)
	if q := c.Query("userId"); q != "" && q != user.ID {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "userId does not match the authenticated user"})
		return
	}

	conn, err := h.upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error.
		log.Printf("WARNING: WebSocket upgrade failed for %s: %v", user.ID, err)
		return
	}

	client := chathub.NewWebSocketClient(h.Hub, user.ID, conn)
	if !h.Hub.RequestRegister(client) {
		client.Close(websocket.CloseGoingAway, "server shutdown")
		return
	}
	client.Run()
}
