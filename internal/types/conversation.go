package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"
)

const (
  RoleUser          = "user"
  RoleAssistant     = "assistant"
  RoleSystem        = "system"

  DefaultConversationTitle = "New Chat"
  MaxTitleLength           = 50
)

// Turn is one role-tagged message inside a Conversation. Turns have no identity
// of their own, only their position in the owning conversation.
type Turn struct {
  Role        string          `json:"role" bson:"role" firestore:"role"`
  Content     string          `json:"content" bson:"content" firestore:"content"`
  Timestamp   time.Time       `json:"timestamp" bson:"timestamp" firestore:"timestamp"`
}

type Conversation struct {
  ID          uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
  OwnerEmail  string                      `gorm:"column:owner_email;index;not null" json:"userEmail"`
  UserID      string                      `gorm:"column:user_id;index" json:"userId"`
  Title       string                      `gorm:"column:title;not null" json:"title"`
  Turns       datatypes.JSONSlice[Turn]   `gorm:"column:turns;type:jsonb" json:"turns"`
  CreatedAt   time.Time                   `gorm:"not null;default:now()" json:"createdAt"`
  UpdatedAt   time.Time                   `gorm:"not null;default:now();index" json:"updatedAt"`
  DeletedAt   gorm.DeletedAt              `gorm:"index" json:"-"`
}

func (Conversation) TableName() string {
  return "conversation"
}

// Summary drops the turns, for sidebar listings.
func (c *Conversation) Summary() ConversationSummary {
  return ConversationSummary{
    ID:         c.ID,
    Title:      c.Title,
    CreatedAt:  c.CreatedAt,
    UpdatedAt:  c.UpdatedAt,
  }
}

type ConversationSummary struct {
  ID          uuid.UUID       `json:"id"`
  Title       string          `json:"title"`
  CreatedAt   time.Time       `json:"createdAt"`
  UpdatedAt   time.Time       `json:"updatedAt"`
}

// IsValidRole reports whether role may be persisted in a conversation.
func IsValidRole(role string) bool {
  switch role {
  case RoleUser, RoleAssistant, RoleSystem:
    return true
  }
  return false
}
