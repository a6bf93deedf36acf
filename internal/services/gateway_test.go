package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/slotter-org/batai-backend/internal/types"
)

func TestToGeminiContentsFoldsSystemTurns(t *testing.T) {
	system, contents := toGeminiContents("base prompt", []types.Turn{
		{Role: "system", Content: "extra rule"},
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
		{Role: "tool", Content: "odd role"},
	})
	if system != "base prompt\n\nextra rule" {
		t.Fatalf("unexpected system instruction %q", system)
	}
	if len(contents) != 3 {
		t.Fatalf("expected 3 contents, got %d", len(contents))
	}
	wantRoles := []string{string(genai.RoleUser), string(genai.RoleModel), string(genai.RoleUser)}
	for i, c := range contents {
		if c.Role != wantRoles[i] {
			t.Fatalf("content %d: expected role %q, got %q", i, wantRoles[i], c.Role)
		}
	}
}

func TestEchoGatewayStreamsLastUserTurn(t *testing.T) {
	var sb strings.Builder
	for frag, err := range NewEchoGateway().Stream(context.Background(), "", []types.Turn{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "reply"},
		{Role: "user", Content: "second question"},
	}) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		sb.WriteString(frag)
	}
	if sb.String() != "You said: second question" {
		t.Fatalf("unexpected echo %q", sb.String())
	}
}

func TestEchoGatewayStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var gotErr error
	for _, err := range NewEchoGateway().Stream(ctx, "", []types.Turn{{Role: "user", Content: "a b c"}}) {
		if err != nil {
			gotErr = err
		}
	}
	if !errors.Is(gotErr, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", gotErr)
	}
}
