package main

import (
  "context"
  "errors"
  "fmt"
  "net/http"
  "os"
  "os/signal"
  "syscall"
  "time"

  "github.com/joho/godotenv"

  "github.com/slotter-org/batai-backend/internal/config"
  "github.com/slotter-org/batai-backend/internal/db"
  "github.com/slotter-org/batai-backend/internal/handlers"
  "github.com/slotter-org/batai-backend/internal/logger"
  "github.com/slotter-org/batai-backend/internal/middleware"
  "github.com/slotter-org/batai-backend/internal/prompts"
  "github.com/slotter-org/batai-backend/internal/server"
  "github.com/slotter-org/batai-backend/internal/services"
  "github.com/slotter-org/batai-backend/internal/socket"
)

func main() {
  // A missing .env is normal outside local development.
  _ = godotenv.Load()

  // Logger Setup
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
  defer stop()

  // Environment Variables
  cfg, err := config.Load(log)
  if err != nil {
    log.Error("Invalid configuration", "error", err)
    os.Exit(1)
  }
  log.Info("Environment variables loaded for Main :)", "storeDriver", cfg.StoreDriver, "llmDriver", cfg.LLMDriver)

  // Store Setup
  log.Info("Setting Up Conversation Store from Main now...", "driver", cfg.StoreDriver)
  conversationRepo, closeStore, err := db.OpenConversationRepo(ctx, cfg, log)
  if err != nil {
    log.Error("Store init failed", "error", err)
    os.Exit(1)
  }
  defer func() {
    if err := closeStore(); err != nil {
      log.Warn("Failed closing store", "error", err)
    }
  }()
  log.Info("Conversation Store Setup From Main Successful :)")

  // Websocket Setup
  log.Info("Setting Up Websocket Hub From Main Now...")
  wsHub := socket.NewHub(log)

  // Redis PubSub
  var redisPubSub *socket.RedisPubSub
  if cfg.Redis.Address != "" {
    redisPubSub, err = socket.NewRedisPubSub(log, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Channel)
    if err == nil {
      if err = redisPubSub.StartSubscriber(wsHub); err != nil {
        redisPubSub.Stop()
        redisPubSub = nil
      }
    }
    if err != nil {
      if cfg.Redis.Required {
        log.Error("Redis pubsub is required but unavailable", "error", err)
        os.Exit(1)
      }
      log.Warn("Failed to init redis pubsub, events stay local", "error", err)
    } else {
      wsHub.SetRedisPubSub(redisPubSub)
      log.Info("Redis pubsub is active!")
    }
  }
  log.Info("Websocket Hub Set Up From Main Successful :)")

  // Services Setup
  log.Info("Setting up Services from Main now...")
  registry := prompts.Builtin()
  gateway, err := services.NewCompletionGateway(ctx, cfg, log)
  if err != nil {
    log.Error("Fatal error: Cannot init completion gateway", "error", err)
    os.Exit(1)
  }
  authService := services.NewAuthService(log, cfg.Auth)
  conversationService := services.NewConversationService(log, conversationRepo)
  completionService := services.NewCompletionService(log, conversationRepo, registry, gateway)
  log.Info("Services Set Up From Main Successful :)")

  // Handler + Middleware Setup
  authMiddleware := middleware.NewAuthMiddleware(log, authService, cfg.Auth.CookieName)
  router := server.NewRouter(server.RouterConfig{
    Log:                  log,
    CORSOrigins:          cfg.CORSOrigins,
    AuthMiddleware:       authMiddleware,
    ConversationHandler:  handlers.NewConversationHandler(conversationService, wsHub),
    CompletionHandler:    handlers.NewCompletionHandler(log, completionService, cfg.MaxCompletionBodyBytes),
    PromptHandler:        handlers.NewPromptHandler(registry),
    WsHandler:            handlers.WsHandler(wsHub, log, cfg.CORSOrigins),
  })
  log.Info("Router Set Up From Main Successful :)")

  srv := &http.Server{
    Addr:               ":" + cfg.Port,
    Handler:            router,
    ReadHeaderTimeout:  10 * time.Second,
  }
  go func() {
    log.Info("Server listening", "port", cfg.Port)
    if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
      log.Error("Server failed", "error", err)
      stop()
    }
  }()

  <-ctx.Done()
  log.Info("Shutting down now...")
  shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
  defer cancel()
  if err := srv.Shutdown(shutdownCtx); err != nil {
    log.Warn("Graceful shutdown failed", "error", err)
  }

  // On Shutdown
  if redisPubSub != nil {
    redisPubSub.Stop()
  }
  log.Info("Shutdown complete :)")
}
