package repos

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/slotter-org/batai-backend/internal/types"
)

// stepClock returns strictly increasing times so ordering is deterministic.
func stepClock() func() time.Time {
	t := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func mustCreate(t *testing.T, repo ConversationRepo, owner, title string) *types.Conversation {
	t.Helper()
	conv, err := repo.Create(context.Background(), &types.Conversation{OwnerEmail: owner, Title: title})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return conv
}

func TestMemoryRepoOwnershipIsIndistinguishableFromMissing(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryConversationRepo(stepClock())
	conv := mustCreate(t, repo, "a@example.com", "mine")

	_, errForeign := repo.Get(ctx, conv.ID, "b@example.com")
	_, errMissing := repo.Get(ctx, uuid.New(), "b@example.com")
	if !errors.Is(errForeign, ErrConversationNotFound) || !errors.Is(errMissing, ErrConversationNotFound) {
		t.Fatalf("expected not found for both, got %v / %v", errForeign, errMissing)
	}
	if errForeign.Error() != errMissing.Error() {
		t.Fatalf("foreign and missing errors differ: %q vs %q", errForeign, errMissing)
	}

	if err := repo.Delete(ctx, conv.ID, "b@example.com"); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected foreign delete to be not found, got %v", err)
	}
	if _, err := repo.ReplaceTurns(ctx, conv.ID, "b@example.com", nil, "stolen"); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected foreign replace to be not found, got %v", err)
	}

	got, err := repo.Get(ctx, conv.ID, "a@example.com")
	if err != nil {
		t.Fatalf("owner Get failed: %v", err)
	}
	if got.Title != "mine" {
		t.Fatalf("foreign writes must not apply, title=%q", got.Title)
	}
}

func TestMemoryRepoListOrdersByUpdatedDesc(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryConversationRepo(stepClock())
	first := mustCreate(t, repo, "a@example.com", "first")
	second := mustCreate(t, repo, "a@example.com", "second")
	mustCreate(t, repo, "other@example.com", "not mine")

	list, err := repo.List(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}

	if _, err := repo.ReplaceTurns(ctx, first.ID, "a@example.com", []types.Turn{{Role: "user", Content: "bump"}}, ""); err != nil {
		t.Fatalf("ReplaceTurns failed: %v", err)
	}
	list, _ = repo.List(ctx, "a@example.com")
	if list[0].ID != first.ID {
		t.Fatalf("expected updated conversation first, got %+v", list)
	}

	empty, err := repo.List(ctx, "nobody@example.com")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v (%v)", empty, err)
	}
}

func TestMemoryRepoReplaceIsLastWriterWins(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryConversationRepo(stepClock())
	conv := mustCreate(t, repo, "a@example.com", "New Chat")

	firstSave := []types.Turn{{Role: "user", Content: "one"}, {Role: "assistant", Content: "two"}}
	secondSave := []types.Turn{{Role: "user", Content: "three"}}
	if _, err := repo.ReplaceTurns(ctx, conv.ID, "a@example.com", firstSave, ""); err != nil {
		t.Fatalf("first save: %v", err)
	}
	got, err := repo.ReplaceTurns(ctx, conv.ID, "a@example.com", secondSave, "")
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if !reflect.DeepEqual([]types.Turn(got.Turns), secondSave) {
		t.Fatalf("expected exactly the second payload, got %+v", got.Turns)
	}
	if got.Title != "New Chat" {
		t.Fatalf("expected title untouched, got %q", got.Title)
	}

	got, _ = repo.ReplaceTurns(ctx, conv.ID, "a@example.com", secondSave, "Renamed")
	if got.Title != "Renamed" {
		t.Fatalf("expected new title, got %q", got.Title)
	}
}

func TestMemoryRepoDoesNotAliasCallerSlices(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryConversationRepo(stepClock())
	conv := mustCreate(t, repo, "a@example.com", "t")

	turns := []types.Turn{{Role: "user", Content: "original"}}
	if _, err := repo.ReplaceTurns(ctx, conv.ID, "a@example.com", turns, ""); err != nil {
		t.Fatalf("ReplaceTurns: %v", err)
	}
	turns[0].Content = "mutated"

	got, _ := repo.Get(ctx, conv.ID, "a@example.com")
	if got.Turns[0].Content != "original" {
		t.Fatalf("store shares memory with caller: %q", got.Turns[0].Content)
	}
}

func TestMemoryRepoDelete(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryConversationRepo(stepClock())
	conv := mustCreate(t, repo, "a@example.com", "t")

	if err := repo.Delete(ctx, conv.ID, "a@example.com"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, conv.ID, "a@example.com"); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := repo.Delete(ctx, conv.ID, "a@example.com"); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected second delete to be not found, got %v", err)
	}
}
