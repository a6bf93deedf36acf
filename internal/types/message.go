package types

import (
  "bytes"
  "encoding/json"
)

// MessageKind tags which shape an incoming chat message arrived in.
type MessageKind int

const (
  // MessageEmpty carries neither usable content nor parts.
  MessageEmpty MessageKind = iota
  // MessageContent carries a plain content string.
  MessageContent
  // MessageParts carries typed parts (text, image, file...).
  MessageParts
)

const PartTypeText = "text"

type MessagePart struct {
  Type        string          `json:"type"`
  Text        string          `json:"text,omitempty"`
}

// IncomingMessage is a chat message as a client sent it. Exactly one of
// Content/Parts is meaningful, selected by Kind.
type IncomingMessage struct {
  Kind        MessageKind
  Role        string
  Content     string
  Parts       []MessagePart
}

func NewContentMessage(role, content string) IncomingMessage {
  return IncomingMessage{Kind: MessageContent, Role: role, Content: content}
}

func NewPartsMessage(role string, parts ...MessagePart) IncomingMessage {
  return IncomingMessage{Kind: MessageParts, Role: role, Parts: parts}
}

type rawIncomingMessage struct {
  Role        string              `json:"role"`
  Content     json.RawMessage     `json:"content"`
  Parts       []MessagePart       `json:"parts"`
}

// UnmarshalJSON accepts {role, content:"..."}, {role, content:[parts]} and
// {role, parts:[parts]}. Anything else decodes to MessageEmpty.
func (m *IncomingMessage) UnmarshalJSON(data []byte) error {
  *m = IncomingMessage{Kind: MessageEmpty}
  var raw rawIncomingMessage
  if err := json.Unmarshal(data, &raw); err != nil {
    // Non-object entries (numbers, strings, null) are tolerated as empty.
    return nil
  }
  m.Role = raw.Role

  content := bytes.TrimSpace(raw.Content)
  if len(content) > 0 {
    switch content[0] {
    case '"':
      var s string
      if err := json.Unmarshal(content, &s); err == nil {
        m.Kind = MessageContent
        m.Content = s
        return nil
      }
    case '[':
      var parts []MessagePart
      if err := json.Unmarshal(content, &parts); err == nil {
        m.Kind = MessageParts
        m.Parts = parts
        return nil
      }
    }
  }
  if raw.Parts != nil {
    m.Kind = MessageParts
    m.Parts = raw.Parts
  }
  return nil
}

func (m IncomingMessage) MarshalJSON() ([]byte, error) {
  switch m.Kind {
  case MessageContent:
    return json.Marshal(struct {
      Role      string  `json:"role"`
      Content   string  `json:"content"`
    }{m.Role, m.Content})
  case MessageParts:
    return json.Marshal(struct {
      Role      string          `json:"role"`
      Parts     []MessagePart   `json:"parts"`
    }{m.Role, m.Parts})
  }
  return json.Marshal(struct {
    Role      string  `json:"role,omitempty"`
  }{m.Role})
}
