package eventdata

import (
	"context"
	"testing"

	"github.com/slotter-org/batai-backend/internal/socket"
)

func TestAppendAndDrain(t *testing.T) {
	ctx := WithEventData(context.Background())
	Append(ctx, socket.Message{Event: socket.EventConversationCreated})
	Append(ctx, socket.Message{Event: socket.EventConversationUpdated})

	ed := GetEventData(ctx)
	got := ed.Drain()
	if len(got) != 2 || got[0].Event != socket.EventConversationCreated {
		t.Fatalf("unexpected drained messages %+v", got)
	}
	if again := ed.Drain(); len(again) != 0 {
		t.Fatalf("expected empty buffer after drain, got %+v", again)
	}
}

func TestAppendWithoutEventDataIsNoop(t *testing.T) {
	Append(context.Background(), socket.Message{Event: "x"})
	if GetEventData(context.Background()) != nil {
		t.Fatalf("expected no event data")
	}
}
