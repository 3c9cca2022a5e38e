package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/worklane/worklane/internal/domain"
	"github.com/worklane/worklane/internal/domain/employee"
	"github.com/worklane/worklane/internal/domain/notification"
	"github.com/worklane/worklane/internal/domain/project"
	"github.com/worklane/worklane/internal/domain/task"
	"github.com/worklane/worklane/internal/port/messagequeue"
)

// mockStore implements database.Store for testing.
type mockStore struct {
	mu            sync.Mutex
	employees     map[string]*employee.Employee
	projects      map[string]*project.Project
	tasks         map[string]*task.Task
	subtasks      map[string]*task.Subtask
	notifications []notification.Notification

	createTaskErr error
	updateTaskErr error
	successorErr  error
}

func newMockStore() *mockStore {
	return &mockStore{
		employees: map[string]*employee.Employee{},
		projects:  map[string]*project.Project{},
		tasks:     map[string]*task.Task{},
		subtasks:  map[string]*task.Subtask{},
	}
}

func (m *mockStore) GetEmployee(_ context.Context, id string) (*employee.Employee, error) {
	if e, ok := m.employees[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, fmt.Errorf("get employee %s: %w", id, domain.ErrNotFound)
}

func (m *mockStore) GetEmployeeByEmail(_ context.Context, email string) (*employee.Employee, error) {
	for _, e := range m.employees {
		if e.Email == email {
			cp := *e
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get employee by email: %w", domain.ErrNotFound)
}

func (m *mockStore) CreateEmployee(_ context.Context, e *employee.Employee) error {
	m.employees[e.ID] = e
	return nil
}

func (m *mockStore) ListEmployees(_ context.Context) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range m.employees {
		out = append(out, *e)
	}
	return out, nil
}

func (m *mockStore) UpdateEmployeePassword(_ context.Context, id, hash string) error {
	e, ok := m.employees[id]
	if !ok {
		return fmt.Errorf("update password: %w", domain.ErrNotFound)
	}
	e.PasswordHash = hash
	return nil
}

func (m *mockStore) GetProject(_ context.Context, id string) (*project.Project, error) {
	if p, ok := m.projects[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, fmt.Errorf("get project %s: %w", id, domain.ErrNotFound)
}

func (m *mockStore) ManagerAuthority(_ context.Context, managerID, projectID string) (bool, bool, error) {
	p, ok := m.projects[projectID]
	if !ok {
		return false, false, nil
	}
	return p.ManagerID == managerID, p.HasMember(managerID), nil
}

func (m *mockStore) ListTasksForEmployee(_ context.Context, empID string) ([]task.Task, error) {
	var out []task.Task
	for _, t := range m.tasks {
		if t.OwnerID == empID || t.HasCollaborator(empID) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *mockStore) GetTask(_ context.Context, id string) (*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok {
		cp := *t
		cp.Collaborators = append([]string(nil), t.Collaborators...)
		return &cp, nil
	}
	return nil, fmt.Errorf("get task %s: %w", id, domain.ErrNotFound)
}

func (m *mockStore) CreateTask(_ context.Context, t *task.Task) error {
	if m.createTaskErr != nil {
		return m.createTaskErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *mockStore) UpdateTask(_ context.Context, t *task.Task) error {
	if m.updateTaskErr != nil {
		return m.updateTaskErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[t.ID]; !ok {
		return fmt.Errorf("update task %s: %w", t.ID, domain.ErrNotFound)
	}
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *mockStore) CreateSuccessor(_ context.Context, t *task.Task) (bool, error) {
	if m.successorErr != nil {
		return false, m.successorErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.tasks {
		if existing.SeriesID == t.SeriesID && existing.RecurrenceCount == t.RecurrenceCount {
			return false, nil
		}
	}
	cp := *t
	m.tasks[t.ID] = &cp
	return true, nil
}

func (m *mockStore) ListSubtasks(_ context.Context, parentID string) ([]task.Subtask, error) {
	var out []task.Subtask
	for _, s := range m.subtasks {
		if s.ParentTaskID == parentID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockStore) GetSubtask(_ context.Context, id string) (*task.Subtask, error) {
	if s, ok := m.subtasks[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, fmt.Errorf("get subtask %s: %w", id, domain.ErrNotFound)
}

func (m *mockStore) CreateSubtask(_ context.Context, s *task.Subtask) error {
	cp := *s
	m.subtasks[s.ID] = &cp
	return nil
}

func (m *mockStore) UpdateSubtask(_ context.Context, s *task.Subtask) error {
	if _, ok := m.subtasks[s.ID]; !ok {
		return fmt.Errorf("update subtask %s: %w", s.ID, domain.ErrNotFound)
	}
	cp := *s
	m.subtasks[s.ID] = &cp
	return nil
}

func (m *mockStore) DeleteSubtask(_ context.Context, id string) error {
	if _, ok := m.subtasks[id]; !ok {
		return fmt.Errorf("delete subtask %s: %w", id, domain.ErrNotFound)
	}
	delete(m.subtasks, id)
	return nil
}

func (m *mockStore) CreateNotification(_ context.Context, n *notification.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, *n)
	return nil
}

func (m *mockStore) ListNotifications(_ context.Context, empID string) ([]notification.Notification, error) {
	var out []notification.Notification
	for _, n := range m.notifications {
		if n.EmployeeID == empID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockStore) MarkNotificationRead(_ context.Context, id, empID string) error {
	for i := range m.notifications {
		if m.notifications[i].ID == id && m.notifications[i].EmployeeID == empID {
			m.notifications[i].Read = true
			return nil
		}
	}
	return fmt.Errorf("mark notification read: %w", domain.ErrNotFound)
}

func (m *mockStore) MarkAllNotificationsRead(_ context.Context, empID string) error {
	for i := range m.notifications {
		if m.notifications[i].EmployeeID == empID {
			m.notifications[i].Read = true
		}
	}
	return nil
}

// mockQueue implements messagequeue.Queue for testing.
type mockQueue struct {
	published []struct {
		subject string
		data    []byte
	}
	publishErr error
}

func (q *mockQueue) Publish(_ context.Context, subject string, data []byte) error {
	if q.publishErr != nil {
		return q.publishErr
	}
	q.published = append(q.published, struct {
		subject string
		data    []byte
	}{subject, data})
	return nil
}

func (q *mockQueue) Subscribe(_ context.Context, _ string, _ messagequeue.Handler) (func(), error) {
	return func() {}, nil
}

func (q *mockQueue) Drain() error      { return nil }
func (q *mockQueue) Close() error      { return nil }
func (q *mockQueue) IsConnected() bool { return true }

func (q *mockQueue) subjects() []string {
	var out []string
	for _, p := range q.published {
		out = append(out, p.subject)
	}
	return out
}
