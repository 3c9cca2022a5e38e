package ws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/worklane/worklane/internal/port/notifier"
)

// EventNotification is the message type for inbox notifications pushed over
// the WebSocket.
const EventNotification = "notification"

// Notifier delivers notifications to an employee's live WebSocket
// connections. An employee with no open connection simply misses the push;
// the inbox row persists regardless.
type Notifier struct {
	hub *Hub
}

// NewNotifier creates a notifier backed by the given hub.
func NewNotifier(hub *Hub) *Notifier {
	if hub == nil {
		return nil
	}
	return &Notifier{hub: hub}
}

// Name returns the notifier identifier.
func (n *Notifier) Name() string { return "websocket" }

// Send pushes the notification to the employee's connections.
func (n *Notifier) Send(ctx context.Context, note notifier.Notification) error {
	if n.hub == nil {
		return notifier.ErrNotConfigured
	}

	payload, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	n.hub.SendTo(ctx, note.EmployeeID, Message{
		Type:    EventNotification,
		Payload: json.RawMessage(payload),
	})
	return nil
}
