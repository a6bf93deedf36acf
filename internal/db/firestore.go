package db

import (
  "context"
  "fmt"

  "cloud.google.com/go/firestore"

  "github.com/slotter-org/batai-backend/internal/logger"
)

type FirestoreService struct {
  client    *firestore.Client
  log       *logger.Logger
}

func NewFirestoreService(ctx context.Context, projectID string, log *logger.Logger) (*FirestoreService, error) {
  serviceLog := log.With("service", "FirestoreService")
  if projectID == "" {
    return nil, fmt.Errorf("FIRESTORE_PROJECT is required for the firestore store")
  }
  client, err := firestore.NewClient(ctx, projectID)
  if err != nil {
    return nil, fmt.Errorf("creating firestore client: %w", err)
  }
  serviceLog.Info("Firestore client ready :)", "project", projectID)
  return &FirestoreService{client: client, log: serviceLog}, nil
}

func (s *FirestoreService) Client() *firestore.Client {
  return s.client
}

func (s *FirestoreService) Close() error {
  return s.client.Close()
}
