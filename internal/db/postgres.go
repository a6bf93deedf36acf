package db

import (
  "fmt"
  "net/url"

  "gorm.io/driver/postgres"
  "gorm.io/gorm"
  gormlogger "gorm.io/gorm/logger"

  "github.com/slotter-org/batai-backend/internal/config"
  "github.com/slotter-org/batai-backend/internal/logger"
  "github.com/slotter-org/batai-backend/internal/types"
)

type PostgresService struct {
  db      *gorm.DB
  log     *logger.Logger
}

func NewPostgresService(cfg config.Postgres, log *logger.Logger) (*PostgresService, error) {
  serviceLog := log.With("service", "PostgresService")

  //1) Construct DSN
  serviceLog.Info("Attempting to construct DSN for Postgres now...")
  dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
    url.QueryEscape(cfg.User), url.QueryEscape(cfg.Password), cfg.Host, cfg.Port, cfg.Name, cfg.SSLMode)
  serviceLog.Debug("Postgres DSN built :)", "host", cfg.Host, "port", cfg.Port, "dbname", cfg.Name)

  //2) Attempt DB Connection
  serviceLog.Info("Attempting to connect to Postgres DB now...")
  db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
    Logger: gormlogger.Default.LogMode(gormlogger.Warn),
  })
  if err != nil {
    serviceLog.Error("Failed to connect to Postgres DB", "error", err)
    return nil, fmt.Errorf("Failed to connect to Postgres DB: %w", err)
  }
  serviceLog.Info("Successfully Connected to Postgres DB :)")

  return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
  s.log.Info("Starting AutoMigrateAll for all GORM models now...")
  if err := s.db.AutoMigrate(&types.Conversation{}); err != nil {
    s.log.Error("AutoMigrateAll failed :(", "error", err)
    return err
  }
  // List filters by owner and sorts by recency; keep that on one index.
  if err := s.db.Exec(`
    CREATE INDEX IF NOT EXISTS "idx_conversation_owner_updated"
    ON "conversation" ("owner_email", "updated_at" DESC)
  `).Error; err != nil {
    return fmt.Errorf("failed to add idx_conversation_owner_updated: %w", err)
  }
  s.log.Info("AutoMigrateAll completed successfully :)")
  return nil
}

func (s *PostgresService) DB() *gorm.DB {
  return s.db
}

func (s *PostgresService) Close() error {
  sqlDB, err := s.db.DB()
  if err != nil {
    return err
  }
  return sqlDB.Close()
}
