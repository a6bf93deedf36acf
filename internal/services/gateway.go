package services

import (
  "context"
  "fmt"
  "iter"
  "strings"

  "google.golang.org/genai"

  "github.com/slotter-org/batai-backend/internal/config"
  "github.com/slotter-org/batai-backend/internal/logger"
  "github.com/slotter-org/batai-backend/internal/types"
)

// CompletionGateway is the boundary to the hosted model. Stream returns a
// single-pass sequence of text fragments; an error ends the sequence and is
// never retried here.
type CompletionGateway interface {
  Stream(ctx context.Context, systemPrompt string, turns []types.Turn) iter.Seq2[string, error]
}

// NewCompletionGateway builds the gateway selected by cfg.LLMDriver.
func NewCompletionGateway(ctx context.Context, cfg *config.Config, log *logger.Logger) (CompletionGateway, error) {
  switch cfg.LLMDriver {
  case config.LLMEcho:
    log.Warn("Using echo completion gateway; no model will be called")
    return NewEchoGateway(), nil
  case config.LLMGemini:
    return NewGeminiGateway(ctx, cfg.Gemini, log)
  }
  return nil, fmt.Errorf("unknown LLM driver %q", cfg.LLMDriver)
}

//----------------------------------------------------------------------------------------------------------------------
// Gemini
//----------------------------------------------------------------------------------------------------------------------

type geminiGateway struct {
  log       *logger.Logger
  client    *genai.Client
  model     string
}

func NewGeminiGateway(ctx context.Context, cfg config.Gemini, log *logger.Logger) (CompletionGateway, error) {
  gatewayLog := log.With("service", "GeminiGateway", "model", cfg.Model)
  clientCfg := &genai.ClientConfig{
    APIKey:   cfg.APIKey,
    Backend:  genai.BackendGeminiAPI,
  }
  if cfg.Backend == config.GeminiBackendVertex {
    clientCfg = &genai.ClientConfig{
      Project:  cfg.Project,
      Location: cfg.Location,
      Backend:  genai.BackendVertexAI,
    }
  }
  client, err := genai.NewClient(ctx, clientCfg)
  if err != nil {
    return nil, fmt.Errorf("creating genai client: %w", err)
  }
  gatewayLog.Info("Gemini gateway ready :)", "backend", cfg.Backend)
  return &geminiGateway{log: gatewayLog, client: client, model: cfg.Model}, nil
}

func (gg *geminiGateway) Stream(ctx context.Context, systemPrompt string, turns []types.Turn) iter.Seq2[string, error] {
  return func(yield func(string, error) bool) {
    system, contents := toGeminiContents(systemPrompt, turns)
    cfg := &genai.GenerateContentConfig{}
    if system != "" {
      cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
    }
    gg.log.Debug("Starting Gemini stream now...", "turns", len(contents))
    fragments := 0
    for resp, err := range gg.client.Models.GenerateContentStream(ctx, gg.model, contents, cfg) {
      if err != nil {
        gg.log.Warn("Gemini stream failed", "fragments", fragments, "error", err)
        yield("", fmt.Errorf("gemini stream: %w", err))
        return
      }
      text := resp.Text()
      if text == "" {
        continue
      }
      fragments++
      if !yield(text, nil) {
        gg.log.Debug("Gemini stream abandoned by caller", "fragments", fragments)
        return
      }
    }
    gg.log.Debug("Gemini stream finished :)", "fragments", fragments)
  }
}

// toGeminiContents maps turns onto Gemini roles. Gemini has no system role in
// contents, so system turns are folded into the system instruction.
func toGeminiContents(systemPrompt string, turns []types.Turn) (string, []*genai.Content) {
  var sb strings.Builder
  sb.WriteString(systemPrompt)
  contents := make([]*genai.Content, 0, len(turns))
  for _, t := range turns {
    switch t.Role {
    case types.RoleSystem:
      if sb.Len() > 0 {
        sb.WriteString("\n\n")
      }
      sb.WriteString(t.Content)
    case types.RoleAssistant:
      contents = append(contents, genai.NewContentFromText(t.Content, genai.RoleModel))
    default:
      contents = append(contents, genai.NewContentFromText(t.Content, genai.RoleUser))
    }
  }
  return sb.String(), contents
}

//----------------------------------------------------------------------------------------------------------------------
// Echo (offline)
//----------------------------------------------------------------------------------------------------------------------

type echoGateway struct{}

// NewEchoGateway returns a gateway that streams the last user turn back word
// by word. Handy for running the stack without model credentials.
func NewEchoGateway() CompletionGateway {
  return echoGateway{}
}

func (echoGateway) Stream(ctx context.Context, systemPrompt string, turns []types.Turn) iter.Seq2[string, error] {
  return func(yield func(string, error) bool) {
    last := ""
    for i := len(turns) - 1; i >= 0; i-- {
      if turns[i].Role == types.RoleUser {
        last = turns[i].Content
        break
      }
    }
    words := strings.Fields("You said: " + last)
    for i, w := range words {
      if err := ctx.Err(); err != nil {
        yield("", err)
        return
      }
      if i < len(words)-1 {
        w += " "
      }
      if !yield(w, nil) {
        return
      }
    }
  }
}
