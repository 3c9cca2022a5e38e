package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/worklane/worklane/internal/domain/notification"
	"github.com/worklane/worklane/internal/port/database"
	"github.com/worklane/worklane/internal/port/messagequeue"
	"github.com/worklane/worklane/internal/port/notifier"
)

// NotificationService consumes task events, persists per-employee inbox
// entries, and fans them out to all registered notifiers.
type NotificationService struct {
	store     database.Store
	notifiers []notifier.Notifier
}

// NewNotificationService creates a NotificationService with the given notifiers.
func NewNotificationService(store database.Store, notifiers []notifier.Notifier) *NotificationService {
	return &NotificationService{store: store, notifiers: notifiers}
}

// StartSubscriber subscribes to all task events on the queue. The returned
// function cancels the subscription.
func (s *NotificationService) StartSubscriber(ctx context.Context, queue messagequeue.Queue) (func(), error) {
	return queue.Subscribe(ctx, messagequeue.SubjectTaskAll, s.HandleTaskEvent)
}

// HandleTaskEvent processes one task event message: one notification row per
// recipient plus delivery through each notifier. Delivery failures are
// logged and do not interrupt the remaining recipients.
func (s *NotificationService) HandleTaskEvent(ctx context.Context, subject string, data []byte) error {
	var ev messagequeue.TaskEventPayload
	if err := json.Unmarshal(data, &ev); err != nil {
		return fmt.Errorf("unmarshal task event: %w", err)
	}

	kind, message := describe(subject, ev)
	for _, empID := range ev.Recipients {
		n := &notification.Notification{
			ID:         uuid.NewString(),
			EmployeeID: empID,
			Kind:       kind,
			TaskID:     ev.TaskID,
			Message:    message,
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.store.CreateNotification(ctx, n); err != nil {
			slog.Error("persist notification failed", "employee_id", empID, "task_id", ev.TaskID, "error", err)
			continue
		}

		for _, provider := range s.notifiers {
			err := provider.Send(ctx, notifier.Notification{
				EmployeeID: empID,
				Kind:       string(kind),
				TaskID:     ev.TaskID,
				Message:    message,
			})
			if err != nil {
				slog.Warn("notification send failed", "provider", provider.Name(), "employee_id", empID, "error", err)
			}
		}
	}
	return nil
}

// List returns the actor's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, empID string) ([]notification.Notification, error) {
	return s.store.ListNotifications(ctx, empID)
}

// MarkRead marks one of the actor's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, id, empID string) error {
	return s.store.MarkNotificationRead(ctx, id, empID)
}

// MarkAllRead marks every notification of the actor as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, empID string) error {
	return s.store.MarkAllNotificationsRead(ctx, empID)
}

// describe maps a queue subject to a notification kind and message.
func describe(subject string, ev messagequeue.TaskEventPayload) (notification.Kind, string) {
	switch subject {
	case messagequeue.SubjectTaskCreated:
		return notification.KindTaskCreated, fmt.Sprintf("You were added to the new task %q", ev.Title)
	case messagequeue.SubjectTaskShared:
		return notification.KindTaskShared, fmt.Sprintf("The task %q was shared with you", ev.Title)
	case messagequeue.SubjectTaskRolledForward:
		return notification.KindTaskRecurring, fmt.Sprintf("A new occurrence of %q is due", ev.Title)
	default:
		return notification.KindTaskUpdated, fmt.Sprintf("The task %q was updated", ev.Title)
	}
}
