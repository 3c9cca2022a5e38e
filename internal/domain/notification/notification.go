// Package notification defines the notification domain entity.
package notification

import "time"

// Kind identifies what happened to produce a notification.
type Kind string

const (
	KindTaskCreated   Kind = "task_created"
	KindTaskUpdated   Kind = "task_updated"
	KindTaskShared    Kind = "task_shared"
	KindTaskRecurring Kind = "task_recurring"
)

// Notification is a per-employee inbox entry produced by a task event.
type Notification struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	Kind       Kind      `json:"kind"`
	TaskID     string    `json:"task_id"`
	Message    string    `json:"message"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}
