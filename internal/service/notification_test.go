package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/worklane/worklane/internal/domain/notification"
	"github.com/worklane/worklane/internal/port/messagequeue"
	"github.com/worklane/worklane/internal/port/notifier"
)

type recordingNotifier struct {
	name string
	sent []notifier.Notification
	err  error
}

func (r *recordingNotifier) Name() string { return r.name }

func (r *recordingNotifier) Send(_ context.Context, n notifier.Notification) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, n)
	return nil
}

func TestHandleTaskEventFansOut(t *testing.T) {
	store := newMockStore()
	ws := &recordingNotifier{name: "websocket"}
	svc := NewNotificationService(store, []notifier.Notifier{ws})

	payload, _ := json.Marshal(messagequeue.TaskEventPayload{
		TaskID:     "t1",
		Title:      "Quarterly review",
		Status:     "ongoing",
		ActorID:    "emp-owner",
		OwnerID:    "emp-owner",
		Recipients: []string{"emp-a", "emp-b"},
	})

	if err := svc.HandleTaskEvent(context.Background(), messagequeue.SubjectTaskShared, payload); err != nil {
		t.Fatalf("HandleTaskEvent: %v", err)
	}

	if len(store.notifications) != 2 {
		t.Fatalf("persisted %d notifications, want 2", len(store.notifications))
	}
	for _, n := range store.notifications {
		if n.Kind != notification.KindTaskShared {
			t.Fatalf("kind = %s, want %s", n.Kind, notification.KindTaskShared)
		}
		if n.TaskID != "t1" {
			t.Fatalf("task_id = %s, want t1", n.TaskID)
		}
	}
	if len(ws.sent) != 2 {
		t.Fatalf("delivered %d, want 2", len(ws.sent))
	}
}

func TestHandleTaskEventSurvivesNotifierFailure(t *testing.T) {
	store := newMockStore()
	broken := &recordingNotifier{name: "broken", err: errors.New("socket closed")}
	healthy := &recordingNotifier{name: "healthy"}
	svc := NewNotificationService(store, []notifier.Notifier{broken, healthy})

	payload, _ := json.Marshal(messagequeue.TaskEventPayload{
		TaskID: "t1", Title: "X", Recipients: []string{"emp-a"},
	})

	if err := svc.HandleTaskEvent(context.Background(), messagequeue.SubjectTaskUpdated, payload); err != nil {
		t.Fatalf("HandleTaskEvent: %v", err)
	}
	if len(store.notifications) != 1 {
		t.Fatalf("persisted %d, want 1", len(store.notifications))
	}
	if len(healthy.sent) != 1 {
		t.Fatal("failure in one notifier blocked the next")
	}
}

func TestHandleTaskEventRejectsGarbage(t *testing.T) {
	svc := NewNotificationService(newMockStore(), nil)
	if err := svc.HandleTaskEvent(context.Background(), messagequeue.SubjectTaskUpdated, []byte("{not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestMarkRead(t *testing.T) {
	store := newMockStore()
	svc := NewNotificationService(store, nil)
	ctx := context.Background()

	store.notifications = []notification.Notification{
		{ID: "n1", EmployeeID: "emp-a", Kind: notification.KindTaskUpdated},
		{ID: "n2", EmployeeID: "emp-a", Kind: notification.KindTaskShared},
		{ID: "n3", EmployeeID: "emp-b", Kind: notification.KindTaskShared},
	}

	if err := svc.MarkRead(ctx, "n1", "emp-a"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	// An employee cannot mark someone else's notification.
	if err := svc.MarkRead(ctx, "n3", "emp-a"); err == nil {
		t.Fatal("expected error marking another employee's notification")
	}

	if err := svc.MarkAllRead(ctx, "emp-a"); err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	list, err := svc.List(ctx, "emp-a")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, n := range list {
		if !n.Read {
			t.Fatalf("notification %s still unread", n.ID)
		}
	}
	other, _ := svc.List(ctx, "emp-b")
	if len(other) != 1 || other[0].Read {
		t.Fatal("MarkAllRead leaked across employees")
	}
}
