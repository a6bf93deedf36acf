package db

import (
  "context"
  "fmt"
  "time"

  "go.mongodb.org/mongo-driver/mongo"
  "go.mongodb.org/mongo-driver/mongo/options"
  "go.mongodb.org/mongo-driver/mongo/readpref"

  "github.com/slotter-org/batai-backend/internal/config"
  "github.com/slotter-org/batai-backend/internal/logger"
  "github.com/slotter-org/batai-backend/internal/repos"
)

type MongoService struct {
  client    *mongo.Client
  database  *mongo.Database
  log       *logger.Logger
}

func NewMongoService(ctx context.Context, cfg config.Mongo, log *logger.Logger) (*MongoService, error) {
  serviceLog := log.With("service", "MongoService")
  if cfg.URI == "" {
    return nil, fmt.Errorf("missing MONGO_URI")
  }

  serviceLog.Info("Attempting to connect to MongoDB now...")
  client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
  if err != nil {
    return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
  }
  pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
  defer cancel()
  if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
    _ = client.Disconnect(context.Background())
    return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
  }
  database := client.Database(cfg.Database)
  if err := repos.EnsureMongoIndexes(ctx, database); err != nil {
    serviceLog.Warn("Could not ensure MongoDB indexes", "error", err)
  }
  serviceLog.Info("Successfully Connected to MongoDB :)", "database", cfg.Database)

  return &MongoService{client: client, database: database, log: serviceLog}, nil
}

func (s *MongoService) Database() *mongo.Database {
  return s.database
}

func (s *MongoService) Close() error {
  ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
  defer cancel()
  return s.client.Disconnect(ctx)
}
