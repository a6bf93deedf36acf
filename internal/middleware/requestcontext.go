package middleware

import (
  "time"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/slotter-org/batai-backend/internal/eventdata"
  "github.com/slotter-org/batai-backend/internal/logger"
  "github.com/slotter-org/batai-backend/internal/requestdata"
)

const RequestIDHeader = "X-Request-ID"

// AttachRequestContext seeds every request with a request id, an empty
// RequestData and an event buffer, and logs the request once it completes.
func AttachRequestContext(log *logger.Logger) gin.HandlerFunc {
  reqLog := log.With("Middleware", "RequestContext")
  return func(c *gin.Context) {
    start := time.Now()
    requestID := c.GetHeader(RequestIDHeader)
    if requestID == "" {
      requestID = uuid.NewString()
    }
    c.Header(RequestIDHeader, requestID)

    ctx := c.Request.Context()
    ctx = requestdata.WithRequestData(ctx, &requestdata.RequestData{RequestID: requestID})
    ctx = eventdata.WithEventData(ctx)
    c.Request = c.Request.WithContext(ctx)
    c.Next()

    reqLog.Info("Request handled",
      "requestID", requestID,
      "method", c.Request.Method,
      "path", c.FullPath(),
      "status", c.Writer.Status(),
      "latency", time.Since(start),
    )
  }
}
