package socket

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/slotter-org/batai-backend/internal/logger"
)

func newTestClient(hub *Hub, owner string) *Client {
	return &Client{
		ID:       uuid.New(),
		Owner:    owner,
		Hub:      hub,
		Log:      logger.Nop(),
		Outbound: make(chan Message, 4),
	}
}

func TestBroadcastReachesOnlyChannelSubscribers(t *testing.T) {
	hub := NewHub(logger.Nop())
	alice := newTestClient(hub, "alice@example.com")
	bob := newTestClient(hub, "bob@example.com")
	hub.Subscribe(alice, []string{UserChannel(alice.Owner)})
	hub.Subscribe(bob, []string{UserChannel(bob.Owner)})

	hub.BroadcastGlobal(context.Background(), Message{
		Channel: UserChannel("alice@example.com"),
		Event:   EventConversationUpdated,
	})

	select {
	case msg := <-alice.Outbound:
		if msg.Event != EventConversationUpdated {
			t.Fatalf("unexpected event %q", msg.Event)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected alice to receive the event")
	}
	select {
	case msg := <-bob.Outbound:
		t.Fatalf("bob should not receive alice's events, got %+v", msg)
	default:
	}
}

func TestUnsubscribeRemovesEmptyChannels(t *testing.T) {
	hub := NewHub(logger.Nop())
	c := newTestClient(hub, "carol@example.com")
	ch := UserChannel(c.Owner)
	hub.Subscribe(c, []string{ch})
	if hub.Subscribers(ch) != 1 {
		t.Fatalf("expected one subscriber")
	}
	hub.Unsubscribe(c)
	if hub.Subscribers(ch) != 0 {
		t.Fatalf("expected no subscribers")
	}
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	hub := NewHub(logger.Nop())
	c := newTestClient(hub, "dave@example.com")
	for i := 0; i < cap(c.Outbound)+3; i++ {
		c.enqueue(Message{Event: "x"})
	}
	if len(c.Outbound) != cap(c.Outbound) {
		t.Fatalf("expected buffer to be full, got %d", len(c.Outbound))
	}
}

func TestEnvelopeRoundTripKeepsOrigin(t *testing.T) {
	raw, err := encodeEnvelope(envelope{Origin: "node-a", Message: Message{Channel: "user:x", Event: EventConversationDeleted}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	env, err := decodeEnvelope(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Origin != "node-a" || env.Message.Event != EventConversationDeleted {
		t.Fatalf("unexpected envelope %+v", env)
	}
}
