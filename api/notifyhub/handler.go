package notifyhub

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/moyoez/diary-upload-go/api/middlewares"
)

// HandleNotifyWS upgrades the request to WebSocket and registers the connection with the hub.
// Browser pages outside allowOrigins are refused during the handshake.
func HandleNotifyWS(hub *Hub, allowOrigins []string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return middlewares.OriginAllowed(r.Header.Get("Origin"), r.Host, allowOrigins)
		},
	}
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		hub.Register(conn)
		defer hub.Unregister(conn)

		// Read loop to detect client close and keep connection alive
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}
}
