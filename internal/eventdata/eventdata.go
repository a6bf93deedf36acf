// Package eventdata buffers socket messages produced while handling a request
// so they are only broadcast once the request's write succeeded.
package eventdata

import (
	"context"
	"sync"

	"github.com/slotter-org/batai-backend/internal/socket"
)

type key struct{}

var eventDataKey key

type EventData struct {
	mu       sync.Mutex
	messages []socket.Message
}

func WithEventData(ctx context.Context) context.Context {
	return context.WithValue(ctx, eventDataKey, &EventData{})
}

func GetEventData(ctx context.Context) *EventData {
	ed, _ := ctx.Value(eventDataKey).(*EventData)
	return ed
}

// Append is a no-op when ctx carries no EventData.
func Append(ctx context.Context, msg socket.Message) {
	if ed := GetEventData(ctx); ed != nil {
		ed.mu.Lock()
		ed.messages = append(ed.messages, msg)
		ed.mu.Unlock()
	}
}

// Drain returns the buffered messages and empties the buffer.
func (d *EventData) Drain() []socket.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.messages
	d.messages = nil
	return out
}
