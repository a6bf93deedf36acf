package services

import (
  "context"
  "encoding/json"
  "errors"
  "iter"
  "strings"

  "github.com/google/uuid"

  "github.com/slotter-org/batai-backend/internal/errordata"
  "github.com/slotter-org/batai-backend/internal/logger"
  "github.com/slotter-org/batai-backend/internal/normalization"
  "github.com/slotter-org/batai-backend/internal/prompts"
  "github.com/slotter-org/batai-backend/internal/repos"
  "github.com/slotter-org/batai-backend/internal/requestdata"
  "github.com/slotter-org/batai-backend/internal/types"
)

const invalidMessagesMessage = "Invalid messages format - must be a non-empty array"

// CompletionInput is the raw completion request. Messages stays raw so the
// shape can be checked before decoding.
type CompletionInput struct {
  Messages        json.RawMessage
  ConversationID  string
  PromptKey       string
  RawBody         []byte
}

// Completion is a validated request with its fragment stream. Nothing has been
// sent upstream until Stream is iterated.
type Completion struct {
  PromptKey   string
  Turns       []types.Turn
  Stream      iter.Seq2[string, error]
}

type CompletionService interface {
  StartCompletion(ctx context.Context, in CompletionInput) (*Completion, error)
}

type completionService struct {
  log       *logger.Logger
  repo      repos.ConversationRepo
  prompts   *prompts.Registry
  gateway   CompletionGateway
}

func NewCompletionService(log *logger.Logger, repo repos.ConversationRepo, registry *prompts.Registry, gateway CompletionGateway) CompletionService {
  return &completionService{
    log:      log.With("service", "CompletionService"),
    repo:     repo,
    prompts:  registry,
    gateway:  gateway,
  }
}

func (cs *completionService) StartCompletion(ctx context.Context, in CompletionInput) (*Completion, error) {
  //1) Identity first, nothing else is looked at without it
  owner := requestdata.OwnerFrom(ctx)
  if owner == "" {
    cs.log.Warn("Completion attempted without an owner in context")
    return nil, errordata.Unauthorized()
  }

  //2) Messages must be a non-empty JSON array
  msgs, err := decodeMessages(in.Messages)
  if err != nil {
    cs.log.Debug("Rejecting completion with malformed messages", "receivedType", jsonType(in.Messages))
    return nil, errordata.BadRequest(invalidMessagesMessage).
      WithDetail("receivedType", jsonType(in.Messages)).
      WithDetail("receivedBody", errordata.Echo(in.RawBody))
  }

  //3) Ownership of the referenced conversation
  if in.ConversationID != "" {
    if err := cs.checkOwnership(ctx, in.ConversationID, owner); err != nil {
      return nil, err
    }
  }

  //4) Prompt selection
  prompt := cs.prompts.Resolve(in.PromptKey)
  if strings.TrimSpace(prompt.Content) == "" {
    return nil, errordata.BadRequest("Invalid prompt key").
      WithDetail("promptKey", errordata.Echo(in.PromptKey))
  }

  //5) Normalize
  turns := normalization.NormalizeMessages(msgs)
  if len(turns) == 0 {
    return nil, errordata.BadRequest("Messages contain no text content").
      WithDetail("receivedBody", errordata.Echo(in.RawBody))
  }

  cs.log.Info("Starting completion now...", "owner", owner, "promptKey", prompt.Key, "turns", len(turns))
  return &Completion{
    PromptKey:  prompt.Key,
    Turns:      turns,
    Stream:     cs.gateway.Stream(ctx, prompt.Content, turns),
  }, nil
}

func (cs *completionService) checkOwnership(ctx context.Context, rawID, owner string) error {
  convID, err := uuid.Parse(rawID)
  if err != nil {
    return errordata.NotFound(chatNotFoundMessage)
  }
  if _, err := cs.repo.Get(ctx, convID, owner); err != nil {
    if errors.Is(err, repos.ErrConversationNotFound) {
      return errordata.NotFound(chatNotFoundMessage)
    }
    cs.log.Error("Ownership lookup failed", "conversationID", convID, "error", err)
    return errordata.Internal("Failed to stream chat completion", err).WithDetail("details", err.Error())
  }
  return nil
}

func decodeMessages(raw json.RawMessage) ([]types.IncomingMessage, error) {
  if jsonType(raw) != "array" {
    return nil, errors.New("messages is not an array")
  }
  var msgs []types.IncomingMessage
  if err := json.Unmarshal(raw, &msgs); err != nil {
    return nil, err
  }
  if len(msgs) == 0 {
    return nil, errors.New("messages is empty")
  }
  return msgs, nil
}

// jsonType names the JSON kind of raw the way a JS client would see it.
func jsonType(raw json.RawMessage) string {
  s := strings.TrimSpace(string(raw))
  if s == "" {
    return "undefined"
  }
  switch s[0] {
  case '[':
    return "array"
  case '{':
    return "object"
  case '"':
    return "string"
  case 't', 'f':
    return "boolean"
  case 'n':
    return "null"
  }
  return "number"
}
