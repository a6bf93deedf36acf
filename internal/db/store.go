package db

import (
  "context"
  "fmt"

  "github.com/slotter-org/batai-backend/internal/config"
  "github.com/slotter-org/batai-backend/internal/logger"
  "github.com/slotter-org/batai-backend/internal/repos"
)

// OpenConversationRepo connects the store selected by cfg.StoreDriver. The
// returned close func releases the underlying connection.
func OpenConversationRepo(ctx context.Context, cfg *config.Config, log *logger.Logger) (repos.ConversationRepo, func() error, error) {
  switch cfg.StoreDriver {
  case config.StorePostgres:
    pg, err := NewPostgresService(cfg.Postgres, log)
    if err != nil {
      return nil, nil, err
    }
    if err := pg.AutoMigrateAll(); err != nil {
      _ = pg.Close()
      return nil, nil, fmt.Errorf("postgres auto migration failed: %w", err)
    }
    return repos.NewConversationRepo(pg.DB(), log), pg.Close, nil
  case config.StoreMongo:
    mg, err := NewMongoService(ctx, cfg.Mongo, log)
    if err != nil {
      return nil, nil, err
    }
    return repos.NewMongoConversationRepo(mg.Database(), log), mg.Close, nil
  case config.StoreFirestore:
    fs, err := NewFirestoreService(ctx, cfg.FirestoreProject, log)
    if err != nil {
      return nil, nil, err
    }
    return repos.NewFirestoreConversationRepo(fs.Client(), log), fs.Close, nil
  case config.StoreMemory:
    log.Warn("Using in-memory conversation store; data is lost on restart")
    return repos.NewMemoryConversationRepo(), func() error { return nil }, nil
  }
  return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
