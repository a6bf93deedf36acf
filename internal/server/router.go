package server

import (
  "time"

  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"

  "github.com/slotter-org/batai-backend/internal/handlers"
  "github.com/slotter-org/batai-backend/internal/logger"
  "github.com/slotter-org/batai-backend/internal/middleware"
)

type RouterConfig struct {
  Log                   *logger.Logger
  CORSOrigins           []string
  AuthMiddleware        *middleware.AuthMiddleware
  ConversationHandler   *handlers.ConversationHandler
  CompletionHandler     *handlers.CompletionHandler
  PromptHandler         *handlers.PromptHandler
  WsHandler             gin.HandlerFunc
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.New()
  router.Use(gin.Recovery())
  router.Use(middleware.AttachRequestContext(cfg.Log))

  //-----------------------------------------
  // Cors Setup
  //-----------------------------------------
  router.Use(cors.New(cors.Config{
    AllowOrigins:     cfg.CORSOrigins,
    AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "Accept", "X-Requested-With", middleware.RequestIDHeader},
    ExposeHeaders:    []string{middleware.RequestIDHeader},
    AllowCredentials: true,
    MaxAge:           12 * time.Hour,
  }))

  //-----------------------------------------
  // Health Routes
  //-----------------------------------------
  router.GET("/healthz", handlers.Healthz)

  //------------------------------------------
  // Protected Routes
  //------------------------------------------
  api := router.Group("/api")
  api.GET("/ws", cfg.AuthMiddleware.RequireSocketAuth(), cfg.WsHandler)

  protected := api.Group("/")
  protected.Use(cfg.AuthMiddleware.RequireAuth())

  //Conversations
  protected.GET("/conversations", cfg.ConversationHandler.ListConversations)
  protected.POST("/conversations", cfg.ConversationHandler.CreateConversation)
  protected.GET("/conversations/:id", cfg.ConversationHandler.GetConversation)
  protected.PATCH("/conversations/:id", cfg.ConversationHandler.SaveConversation)
  protected.DELETE("/conversations/:id", cfg.ConversationHandler.DeleteConversation)

  //Completions
  protected.POST("/completions", cfg.CompletionHandler.StreamCompletion)

  //Prompts
  protected.GET("/prompts", cfg.PromptHandler.ListPrompts)

  return router
}
