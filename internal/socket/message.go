package socket

const (
	EventConversationCreated = "conversation_created"
	EventConversationUpdated = "conversation_updated"
	EventConversationDeleted = "conversation_deleted"
)

// Message is what the hub delivers to websocket clients and what travels over
// redis between replicas.
type Message struct {
	Channel string      `json:"channel"`
	Event   string      `json:"event"`
	Data    interface{} `json:"data,omitempty"`
}

// UserChannel is the only channel a client is subscribed to: its owner's.
func UserChannel(ownerEmail string) string {
	return "user:" + ownerEmail
}
