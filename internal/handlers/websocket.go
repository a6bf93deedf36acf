package handlers

import (
  "context"
  "net/http"
  "slices"

  "github.com/gin-gonic/gin"
  "github.com/gorilla/websocket"

  "github.com/slotter-org/batai-backend/internal/logger"
  "github.com/slotter-org/batai-backend/internal/requestdata"
  "github.com/slotter-org/batai-backend/internal/socket"
)

// WsHandler upgrades the request and subscribes the socket to its owner's
// channel only.
func WsHandler(hub *socket.Hub, log *logger.Logger, allowedOrigins []string) gin.HandlerFunc {
  upgrader := websocket.Upgrader{
    CheckOrigin: func(r *http.Request) bool {
      origin := r.Header.Get("Origin")
      return origin == "" || slices.Contains(allowedOrigins, origin) || slices.Contains(allowedOrigins, "*")
    },
  }
  wsLog := log.With("handler", "WsHandler")
  return func(c *gin.Context) {
    ctx := c.Request.Context()

    owner := requestdata.OwnerFrom(ctx)
    if owner == "" {
      c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
      return
    }
    conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
    if err != nil {
      wsLog.Warn("Failed to upgrade to websocket", "error", err)
      return
    }
    client := socket.NewClient(conn, hub, owner, wsLog)
    hub.Subscribe(client, []string{socket.UserChannel(owner)})

    // Run blocks until the socket closes; the request context dies with the
    // hijacked connection handling, so it is detached here.
    client.Run(context.WithoutCancel(ctx))
  }
}
