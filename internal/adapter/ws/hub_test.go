package ws

import (
	"context"
	"testing"

	"github.com/worklane/worklane/internal/port/notifier"
)

func TestNewHub(t *testing.T) {
	hub := NewHub()
	if hub == nil {
		t.Fatal("expected non-nil hub")
	}
	if hub.ConnectionCount() != 0 {
		t.Fatalf("expected 0 connections, got %d", hub.ConnectionCount())
	}
}

func TestHubBroadcastNoConnections(t *testing.T) {
	hub := NewHub()

	// Broadcast with no connections should not panic.
	hub.Broadcast(context.Background(), Message{
		Type:    "test",
		Payload: []byte(`{"key":"value"}`),
	})
}

func TestHubSendToNoConnections(t *testing.T) {
	hub := NewHub()

	// SendTo with no connections should not panic.
	hub.SendTo(context.Background(), "emp-1", Message{
		Type:    EventNotification,
		Payload: []byte(`{"key":"value"}`),
	})
}

func TestHubRemoveNonexistent(t *testing.T) {
	hub := NewHub()

	// Removing a connection that was never added should not panic.
	_, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := &conn{ws: nil, cancel: cancel, employeeID: "emp-1"}
	hub.remove(c)
}

func TestNotifierSendWithoutConnections(t *testing.T) {
	n := NewNotifier(NewHub())
	if n.Name() != "websocket" {
		t.Fatalf("name = %s", n.Name())
	}

	err := n.Send(context.Background(), notifier.Notification{
		EmployeeID: "emp-1",
		Kind:       "task_shared",
		TaskID:     "t1",
		Message:    "hello",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
}
