// Package database defines the database store port (interface).
package database

import (
	"context"

	"github.com/worklane/worklane/internal/domain/employee"
	"github.com/worklane/worklane/internal/domain/notification"
	"github.com/worklane/worklane/internal/domain/project"
	"github.com/worklane/worklane/internal/domain/task"
)

// Store is the port interface for database operations.
type Store interface {
	// Employees
	GetEmployee(ctx context.Context, id string) (*employee.Employee, error)
	GetEmployeeByEmail(ctx context.Context, email string) (*employee.Employee, error)
	CreateEmployee(ctx context.Context, e *employee.Employee) error
	ListEmployees(ctx context.Context) ([]employee.Employee, error)
	UpdateEmployeePassword(ctx context.Context, id, passwordHash string) error

	// Projects
	GetProject(ctx context.Context, id string) (*project.Project, error)
	ManagerAuthority(ctx context.Context, managerID, projectID string) (manages, member bool, err error)

	// Tasks
	ListTasksForEmployee(ctx context.Context, empID string) ([]task.Task, error)
	GetTask(ctx context.Context, id string) (*task.Task, error)
	CreateTask(ctx context.Context, t *task.Task) error
	UpdateTask(ctx context.Context, t *task.Task) error
	// CreateSuccessor inserts the next occurrence of a recurring series.
	// The insert is keyed on (series_id, recurrence_count); created is false
	// when that occurrence already exists, which a retried roll-forward
	// treats as success.
	CreateSuccessor(ctx context.Context, t *task.Task) (created bool, err error)

	// Subtasks
	ListSubtasks(ctx context.Context, parentTaskID string) ([]task.Subtask, error)
	GetSubtask(ctx context.Context, id string) (*task.Subtask, error)
	CreateSubtask(ctx context.Context, s *task.Subtask) error
	UpdateSubtask(ctx context.Context, s *task.Subtask) error
	DeleteSubtask(ctx context.Context, id string) error

	// Notifications
	CreateNotification(ctx context.Context, n *notification.Notification) error
	ListNotifications(ctx context.Context, empID string) ([]notification.Notification, error)
	MarkNotificationRead(ctx context.Context, id, empID string) error
	MarkAllNotificationsRead(ctx context.Context, empID string) error
}
