package handlers

import (
  "context"

  "github.com/gin-gonic/gin"

  "github.com/slotter-org/batai-backend/internal/errordata"
  "github.com/slotter-org/batai-backend/internal/eventdata"
  "github.com/slotter-org/batai-backend/internal/socket"
)

func respondError(c *gin.Context, err error) {
  errordata.Respond(c, err)
}

// flushEvents broadcasts whatever the request queued, once its write is done.
func flushEvents(ctx context.Context, hub *socket.Hub) {
  if hub == nil {
    return
  }
  ed := eventdata.GetEventData(ctx)
  if ed == nil {
    return
  }
  for _, msg := range ed.Drain() {
    hub.BroadcastGlobal(ctx, msg)
  }
}
