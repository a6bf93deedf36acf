package repos

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/slotter-org/batai-backend/internal/types"
)

func TestChatDocWithLegacyIDReadsAsNotFound(t *testing.T) {
	doc := chatDoc{ID: "65f1c2a9e4b0a1b2c3d4e5f6", UserEmail: "a@example.com", Title: "old"}
	if _, err := doc.toConversation(); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
}

func TestChatDocToConversation(t *testing.T) {
	id := uuid.New()
	now := time.Now().UTC()
	doc := chatDoc{ID: id.String(), UserID: "u1", UserEmail: "a@example.com", Title: "t", CreatedAt: now, UpdatedAt: now}
	conv, err := doc.toConversation()
	if err != nil {
		t.Fatalf("toConversation: %v", err)
	}
	if conv.ID != id || conv.OwnerEmail != "a@example.com" || conv.Title != "t" {
		t.Fatalf("unexpected conversation %+v", conv)
	}
	if conv.Turns == nil || len(conv.Turns) != 0 {
		t.Fatalf("expected empty non-nil turns, got %#v", conv.Turns)
	}
	doc.Messages = []types.Turn{{Role: "user", Content: "hi"}}
	conv, _ = doc.toConversation()
	if len(conv.Turns) != 1 {
		t.Fatalf("expected embedded messages to become turns")
	}
}
