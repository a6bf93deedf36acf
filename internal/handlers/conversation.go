package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/slotter-org/batai-backend/internal/errordata"
  "github.com/slotter-org/batai-backend/internal/services"
  "github.com/slotter-org/batai-backend/internal/socket"
  "github.com/slotter-org/batai-backend/internal/types"
)

type ConversationHandler struct {
  conversationService   services.ConversationService
  hub                   *socket.Hub
}

func NewConversationHandler(conversationService services.ConversationService, hub *socket.Hub) *ConversationHandler {
  return &ConversationHandler{conversationService: conversationService, hub: hub}
}

func (ch *ConversationHandler) ListConversations(c *gin.Context) {
  summaries, err := ch.conversationService.ListConversations(c.Request.Context())
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"conversations": summaries})
}

func (ch *ConversationHandler) CreateConversation(c *gin.Context) {
  var req struct {
    Title       string      `json:"title"`
  }
  // An empty or missing body is a request for an untitled conversation.
  _ = c.ShouldBindJSON(&req)
  conv, err := ch.conversationService.CreateConversation(c.Request.Context(), req.Title)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"conversation": conv})
  flushEvents(c.Request.Context(), ch.hub)
}

func (ch *ConversationHandler) GetConversation(c *gin.Context) {
  conv, err := ch.conversationService.GetConversation(c.Request.Context(), c.Param("id"))
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"conversation": conv})
}

type saveConversationRequest struct {
  Turns       []types.Turn    `json:"turns"`
  Messages    []types.Turn    `json:"messages"`
  Title       string          `json:"title"`
}

func (ch *ConversationHandler) SaveConversation(c *gin.Context) {
  var req saveConversationRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    respondError(c, errordata.BadRequest("Invalid request body").WithDetail("details", err.Error()))
    return
  }
  turns := req.Turns
  if turns == nil {
    turns = req.Messages
  }
  if turns == nil {
    respondError(c, errordata.BadRequest("turns must be an array"))
    return
  }
  conv, err := ch.conversationService.SaveConversation(c.Request.Context(), c.Param("id"), turns, req.Title)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"conversation": conv})
  flushEvents(c.Request.Context(), ch.hub)
}

func (ch *ConversationHandler) DeleteConversation(c *gin.Context) {
  if err := ch.conversationService.DeleteConversation(c.Request.Context(), c.Param("id")); err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"success": true})
  flushEvents(c.Request.Context(), ch.hub)
}
