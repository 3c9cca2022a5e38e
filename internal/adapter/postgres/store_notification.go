package postgres

import (
	"context"
	"fmt"

	"github.com/worklane/worklane/internal/domain/notification"
)

func (s *Store) CreateNotification(ctx context.Context, n *notification.Notification) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO notifications (id, employee_id, kind, task_id, message, read, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		n.ID, n.EmployeeID, string(n.Kind), n.TaskID, n.Message, n.Read, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (s *Store) ListNotifications(ctx context.Context, empID string) ([]notification.Notification, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, employee_id, kind, task_id, message, read, created_at
		 FROM notifications WHERE employee_id = $1 ORDER BY created_at DESC`, empID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []notification.Notification
	for rows.Next() {
		var n notification.Notification
		if err := rows.Scan(&n.ID, &n.EmployeeID, &n.Kind, &n.TaskID, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (s *Store) MarkNotificationRead(ctx context.Context, id, empID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE notifications SET read = true WHERE id = $1 AND employee_id = $2`, id, empID)
	return execExpectOne(tag, err, "mark notification read %s", id)
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, empID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE notifications SET read = true WHERE employee_id = $1 AND read = false`, empID)
	if err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}
