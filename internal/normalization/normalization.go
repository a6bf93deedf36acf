package normalization

import (
  "strings"
  "unicode/utf8"

  "github.com/slotter-org/batai-backend/internal/types"
)

func ParseInputString(input string) string {
  return strings.TrimSpace(input)
}

func ParseEmail(email string) string {
  return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeTitle trims the title and caps it at types.MaxTitleLength runes.
// An empty result means "no title supplied".
func NormalizeTitle(title string) string {
  title = ParseInputString(title)
  if utf8.RuneCountInString(title) <= types.MaxTitleLength {
    return title
  }
  runes := []rune(title)
  return strings.TrimSpace(string(runes[:types.MaxTitleLength]))
}

// NormalizeMessage maps one incoming message onto a role/content turn. Roles
// pass through untouched; the empty variant becomes a blank user turn.
func NormalizeMessage(msg types.IncomingMessage) types.Turn {
  switch msg.Kind {
  case types.MessageContent:
    return types.Turn{Role: msg.Role, Content: msg.Content}
  case types.MessageParts:
    return types.Turn{Role: msg.Role, Content: joinTextParts(msg.Parts)}
  default:
    return types.Turn{Role: types.RoleUser}
  }
}

// NormalizeMessages converts every message and drops turns whose content is
// blank. Running it over its own output is a no-op.
func NormalizeMessages(msgs []types.IncomingMessage) []types.Turn {
  out := make([]types.Turn, 0, len(msgs))
  for _, m := range msgs {
    t := NormalizeMessage(m)
    if strings.TrimSpace(t.Content) == "" {
      continue
    }
    out = append(out, t)
  }
  return out
}

// FromTurns lifts canonical turns back into content messages.
func FromTurns(turns []types.Turn) []types.IncomingMessage {
  out := make([]types.IncomingMessage, 0, len(turns))
  for _, t := range turns {
    out = append(out, types.NewContentMessage(t.Role, t.Content))
  }
  return out
}

func joinTextParts(parts []types.MessagePart) string {
  var sb strings.Builder
  for _, p := range parts {
    if p.Type != types.PartTypeText {
      continue
    }
    sb.WriteString(p.Text)
  }
  return sb.String()
}
