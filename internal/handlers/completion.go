package handlers

import (
  "encoding/json"
  "io"
  "iter"
  "net/http"
  "strings"

  "github.com/gin-contrib/sse"
  "github.com/gin-gonic/gin"

  "github.com/slotter-org/batai-backend/internal/errordata"
  "github.com/slotter-org/batai-backend/internal/logger"
  "github.com/slotter-org/batai-backend/internal/services"
)

const streamFailedMessage = "Failed to stream chat completion"

// Ids stay raw so a non-string id is still seen as "given" and fails the
// ownership check instead of silently disappearing.
type completionRequest struct {
  Messages          json.RawMessage   `json:"messages"`
  ConversationID    json.RawMessage   `json:"conversationId"`
  ChatID            json.RawMessage   `json:"chatId"`
  PromptKey         string            `json:"promptKey"`
}

// conversationID returns conversationId, falling back to chatId. An absent or
// null id is "". Any other non-string value comes back as its raw JSON text,
// which is never a valid uuid.
func (r completionRequest) conversationID() string {
  if id := rawID(r.ConversationID); id != "" {
    return id
  }
  return rawID(r.ChatID)
}

func rawID(raw json.RawMessage) string {
  trimmed := strings.TrimSpace(string(raw))
  if trimmed == "" || trimmed == "null" {
    return ""
  }
  var s string
  if err := json.Unmarshal(raw, &s); err == nil {
    return s
  }
  return trimmed
}

type CompletionHandler struct {
  log                 *logger.Logger
  completionService   services.CompletionService
  maxBodyBytes        int64
}

func NewCompletionHandler(log *logger.Logger, completionService services.CompletionService, maxBodyBytes int) *CompletionHandler {
  return &CompletionHandler{
    log:                log.With("handler", "CompletionHandler"),
    completionService:  completionService,
    maxBodyBytes:       int64(maxBodyBytes),
  }
}

func (ch *CompletionHandler) StreamCompletion(c *gin.Context) {
  ctx := c.Request.Context()

  //1) Read the body once; the raw bytes are echoed on validation errors
  raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, ch.maxBodyBytes))
  if err != nil {
    respondError(c, errordata.BadRequest("Invalid request body").WithDetail("details", err.Error()))
    return
  }
  var req completionRequest
  if err := json.Unmarshal(raw, &req); err != nil {
    // Not an object, or a non-string promptKey. Whatever did decode is still
    // validated below; a missing messages array is rejected there.
    ch.log.Debug("Completion body did not decode cleanly", "error", err)
  }
  conversationID := req.conversationID()

  //2) Validate and resolve
  completion, err := ch.completionService.StartCompletion(ctx, services.CompletionInput{
    Messages:       req.Messages,
    ConversationID: conversationID,
    PromptKey:      req.PromptKey,
    RawBody:        raw,
  })
  if err != nil {
    respondError(c, err)
    return
  }

  //3) Pull the first fragment before committing to a 200
  if ctx.Err() != nil {
    ch.log.Debug("Client went away before the stream started", "error", ctx.Err())
    c.Abort()
    return
  }
  next, stop := iter.Pull2(completion.Stream)
  defer stop()
  first, err, ok := next()
  if ok && err != nil {
    ch.log.Warn("Completion failed before first fragment", "error", err)
    respondError(c, errordata.Upstream(streamFailedMessage, err))
    return
  }

  if wantsEventStream(c.GetHeader("Accept")) {
    ch.relayEvents(c, first, ok, next)
    return
  }
  ch.relayText(c, first, ok, next)
}

func (ch *CompletionHandler) relayText(c *gin.Context, first string, ok bool, next func() (string, error, bool)) {
  c.Header("Content-Type", "text/plain; charset=utf-8")
  c.Header("Cache-Control", "no-cache")
  c.Header("X-Accel-Buffering", "no")
  c.Status(http.StatusOK)
  if ok {
    if _, err := io.WriteString(c.Writer, first); err != nil {
      return
    }
  }
  c.Writer.Flush()
  if !ok {
    return
  }
  fragments := 1
  for {
    if c.Request.Context().Err() != nil {
      ch.log.Debug("Client went away mid-stream", "fragments", fragments)
      return
    }
    frag, err, more := next()
    if !more {
      return
    }
    if err != nil {
      // Headers are gone; all that is left is to cut the stream short.
      ch.log.Warn("Completion failed mid-stream", "fragments", fragments, "error", err)
      return
    }
    if _, err := io.WriteString(c.Writer, frag); err != nil {
      return
    }
    c.Writer.Flush()
    fragments++
  }
}

func (ch *CompletionHandler) relayEvents(c *gin.Context, first string, ok bool, next func() (string, error, bool)) {
  c.Header("Cache-Control", "no-cache")
  c.Header("Connection", "keep-alive")
  c.Header("X-Accel-Buffering", "no")
  c.Status(http.StatusOK)
  frag, err, more := first, error(nil), ok
  fragments := 0
  for more {
    if c.Request.Context().Err() != nil {
      ch.log.Debug("Client went away mid-stream", "fragments", fragments)
      return
    }
    if err != nil {
      ch.log.Warn("Completion failed mid-stream", "fragments", fragments, "error", err)
      c.Render(-1, sse.Event{Event: "error", Data: gin.H{"error": streamFailedMessage, "details": err.Error()}})
      c.Writer.Flush()
      return
    }
    c.Render(-1, sse.Event{Event: "delta", Data: gin.H{"text": frag}})
    c.Writer.Flush()
    fragments++
    frag, err, more = next()
  }
  c.Render(-1, sse.Event{Event: "done", Data: gin.H{"fragments": fragments}})
  c.Writer.Flush()
}

func wantsEventStream(accept string) bool {
  return strings.Contains(strings.ToLower(accept), "text/event-stream")
}
