package services

import (
  "context"
  "errors"
  "time"

  "github.com/google/uuid"

  "github.com/slotter-org/batai-backend/internal/errordata"
  "github.com/slotter-org/batai-backend/internal/eventdata"
  "github.com/slotter-org/batai-backend/internal/logger"
  "github.com/slotter-org/batai-backend/internal/normalization"
  "github.com/slotter-org/batai-backend/internal/repos"
  "github.com/slotter-org/batai-backend/internal/requestdata"
  "github.com/slotter-org/batai-backend/internal/socket"
  "github.com/slotter-org/batai-backend/internal/types"
)

const chatNotFoundMessage = "Chat not found"

type ConversationService interface {
  ListConversations(ctx context.Context) ([]types.ConversationSummary, error)
  CreateConversation(ctx context.Context, title string) (*types.Conversation, error)
  GetConversation(ctx context.Context, id string) (*types.Conversation, error)
  // SaveConversation replaces the full turn sequence. An empty title leaves
  // the stored title unchanged.
  SaveConversation(ctx context.Context, id string, turns []types.Turn, title string) (*types.Conversation, error)
  DeleteConversation(ctx context.Context, id string) error
}

type conversationService struct {
  log       *logger.Logger
  repo      repos.ConversationRepo
  now       func() time.Time
}

func NewConversationService(log *logger.Logger, repo repos.ConversationRepo) ConversationService {
  return &conversationService{
    log:    log.With("service", "ConversationService"),
    repo:   repo,
    now:    func() time.Time { return time.Now().UTC() },
  }
}

func (cs *conversationService) ListConversations(ctx context.Context) ([]types.ConversationSummary, error) {
  owner := requestdata.OwnerFrom(ctx)
  if owner == "" {
    cs.log.Warn("List attempted without an owner in context")
    return nil, errordata.Unauthorized()
  }
  summaries, err := cs.repo.List(ctx, owner)
  if err != nil {
    cs.log.Error("Failed to list conversations", "owner", owner, "error", err)
    return nil, errordata.Internal("Failed to fetch chats", err)
  }
  return summaries, nil
}

func (cs *conversationService) CreateConversation(ctx context.Context, title string) (*types.Conversation, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserEmail == "" {
    cs.log.Warn("Create attempted without an owner in context")
    return nil, errordata.Unauthorized()
  }
  //1) Default and cap the title
  title = normalization.NormalizeTitle(title)
  if title == "" {
    title = types.DefaultConversationTitle
  }
  //2) Persist
  cs.log.Debug("Attempting to create conversation now...", "owner", rd.UserEmail)
  conv, err := cs.repo.Create(ctx, &types.Conversation{
    OwnerEmail: rd.UserEmail,
    UserID:     rd.UserID,
    Title:      title,
    Turns:      []types.Turn{},
  })
  if err != nil {
    cs.log.Error("Failed to create conversation", "owner", rd.UserEmail, "error", err)
    return nil, errordata.Internal("Failed to create chat", err)
  }
  //3) Queue the sidebar notification
  eventdata.Append(ctx, socket.Message{
    Channel: socket.UserChannel(rd.UserEmail),
    Event:   socket.EventConversationCreated,
    Data:    conv.Summary(),
  })
  cs.log.Info("Conversation created :)", "conversationID", conv.ID)
  return conv, nil
}

func (cs *conversationService) GetConversation(ctx context.Context, id string) (*types.Conversation, error) {
  owner := requestdata.OwnerFrom(ctx)
  if owner == "" {
    return nil, errordata.Unauthorized()
  }
  convID, err := uuid.Parse(id)
  if err != nil {
    return nil, errordata.NotFound(chatNotFoundMessage)
  }
  conv, err := cs.repo.Get(ctx, convID, owner)
  if err != nil {
    return nil, cs.storeError("Failed to fetch chat", convID, err)
  }
  return conv, nil
}

func (cs *conversationService) SaveConversation(ctx context.Context, id string, turns []types.Turn, title string) (*types.Conversation, error) {
  owner := requestdata.OwnerFrom(ctx)
  if owner == "" {
    return nil, errordata.Unauthorized()
  }
  convID, err := uuid.Parse(id)
  if err != nil {
    return nil, errordata.NotFound(chatNotFoundMessage)
  }
  //1) Validate roles and stamp missing timestamps
  now := cs.now()
  clean := make([]types.Turn, 0, len(turns))
  for i, t := range turns {
    if !types.IsValidRole(t.Role) {
      return nil, errordata.BadRequest("Invalid message role").
        WithDetail("index", i).
        WithDetail("role", errordata.Echo(t.Role))
    }
    if t.Timestamp.IsZero() {
      t.Timestamp = now
    }
    clean = append(clean, t)
  }
  //2) Replace the whole sequence
  cs.log.Debug("Attempting to save conversation now...", "conversationID", convID, "turns", len(clean))
  conv, err := cs.repo.ReplaceTurns(ctx, convID, owner, clean, normalization.NormalizeTitle(title))
  if err != nil {
    return nil, cs.storeError("Failed to update chat", convID, err)
  }
  eventdata.Append(ctx, socket.Message{
    Channel: socket.UserChannel(owner),
    Event:   socket.EventConversationUpdated,
    Data:    conv.Summary(),
  })
  return conv, nil
}

func (cs *conversationService) DeleteConversation(ctx context.Context, id string) error {
  owner := requestdata.OwnerFrom(ctx)
  if owner == "" {
    return errordata.Unauthorized()
  }
  convID, err := uuid.Parse(id)
  if err != nil {
    return errordata.NotFound(chatNotFoundMessage)
  }
  if err := cs.repo.Delete(ctx, convID, owner); err != nil {
    return cs.storeError("Failed to delete chat", convID, err)
  }
  eventdata.Append(ctx, socket.Message{
    Channel: socket.UserChannel(owner),
    Event:   socket.EventConversationDeleted,
    Data:    map[string]string{"id": convID.String()},
  })
  cs.log.Info("Conversation deleted", "conversationID", convID)
  return nil
}

func (cs *conversationService) storeError(msg string, id uuid.UUID, err error) error {
  if errors.Is(err, repos.ErrConversationNotFound) {
    return errordata.NotFound(chatNotFoundMessage)
  }
  cs.log.Error(msg, "conversationID", id, "error", err)
  return errordata.Internal(msg, err)
}
