package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	wlhttp "github.com/worklane/worklane/internal/adapter/http"
	"github.com/worklane/worklane/internal/config"
	"github.com/worklane/worklane/internal/domain"
	"github.com/worklane/worklane/internal/domain/employee"
	"github.com/worklane/worklane/internal/domain/notification"
	"github.com/worklane/worklane/internal/domain/permission"
	"github.com/worklane/worklane/internal/domain/project"
	"github.com/worklane/worklane/internal/domain/task"
	"github.com/worklane/worklane/internal/middleware"
	"github.com/worklane/worklane/internal/service"
)

// mockStore implements database.Store for handler tests.
type mockStore struct {
	employees     map[string]*employee.Employee
	projects      map[string]*project.Project
	tasks         map[string]*task.Task
	subtasks      map[string]*task.Subtask
	notifications []notification.Notification
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
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) GetEmployeeByEmail(_ context.Context, email string) (*employee.Employee, error) {
	for _, e := range m.employees {
		if e.Email == email {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
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
		return domain.ErrNotFound
	}
	e.PasswordHash = hash
	return nil
}

func (m *mockStore) GetProject(_ context.Context, id string) (*project.Project, error) {
	if p, ok := m.projects[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
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
	if t, ok := m.tasks[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, fmt.Errorf("get task %s: %w", id, domain.ErrNotFound)
}

func (m *mockStore) CreateTask(_ context.Context, t *task.Task) error {
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *mockStore) UpdateTask(_ context.Context, t *task.Task) error {
	if _, ok := m.tasks[t.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *mockStore) CreateSuccessor(_ context.Context, t *task.Task) (bool, error) {
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
		return domain.ErrNotFound
	}
	cp := *s
	m.subtasks[s.ID] = &cp
	return nil
}

func (m *mockStore) DeleteSubtask(_ context.Context, id string) error {
	if _, ok := m.subtasks[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.subtasks, id)
	return nil
}

func (m *mockStore) CreateNotification(_ context.Context, n *notification.Notification) error {
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
	return domain.ErrNotFound
}

func (m *mockStore) MarkAllNotificationsRead(_ context.Context, empID string) error {
	for i := range m.notifications {
		if m.notifications[i].EmployeeID == empID {
			m.notifications[i].Read = true
		}
	}
	return nil
}

// testAPI bundles a router and the identities the tests act as.
type testAPI struct {
	router  chi.Router
	store   *mockStore
	owner   *employee.Employee
	collab  *employee.Employee
	hr      *employee.Employee
	current *employee.Employee
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store := newMockStore()
	api := &testAPI{store: store}
	api.owner = &employee.Employee{ID: "emp-owner", Email: "owner@example.com", Name: "Owner", Role: employee.RoleStaff, Enabled: true}
	api.collab = &employee.Employee{ID: "emp-collab", Email: "collab@example.com", Name: "Collab", Role: employee.RoleStaff, Enabled: true}
	api.hr = &employee.Employee{ID: "emp-hr", Email: "hr@example.com", Name: "HR", Role: employee.RoleHR, Enabled: true}
	for _, e := range []*employee.Employee{api.owner, api.collab, api.hr} {
		store.employees[e.ID] = e
	}
	api.current = api.owner

	eval := permission.NewEvaluator(store, false)
	tasks := service.NewTaskService(store, nil, eval, nil, 0, nil)
	subtasks := service.NewSubtaskService(store, eval, nil)
	notifications := service.NewNotificationService(store, nil)
	auth := service.NewAuthService(store, &config.Auth{
		JWTSecret:      "handler-test-secret",
		AccessTokenTTL: time.Hour,
		BcryptCost:     4,
	})

	h := wlhttp.NewHandlers(tasks, subtasks, notifications, auth, nil, nil)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.ContextWithEmployee(req.Context(), api.current)))
		})
	})
	wlhttp.MountRoutes(r, h)
	api.router = r
	return api
}

func (api *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, rec.Body.String())
	}
	return v
}

func TestTaskLifecycleOverHTTP(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/tasks", map[string]any{
		"title":    "Write handbook",
		"priority": 4,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decode[task.Task](t, rec)
	if created.Status != task.StatusOngoing || created.Priority == nil || *created.Priority != 4 {
		t.Fatalf("created = %+v", created)
	}

	rec = api.do(t, http.MethodGet, "/api/v1/tasks/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec = api.do(t, http.MethodPut, "/api/v1/tasks/"+created.ID, map[string]any{
		"status": "completed",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("complete status = %d, body %s", rec.Code, rec.Body.String())
	}
	updated := decode[task.Task](t, rec)
	if updated.Status != task.StatusCompleted {
		t.Fatalf("status = %s, want completed", updated.Status)
	}

	rec = api.do(t, http.MethodGet, "/api/v1/tasks", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	list := decode[[]task.Task](t, rec)
	if len(list) != 1 {
		t.Fatalf("list length = %d, want 1", len(list))
	}
}

func TestCreateTaskRejectsMissingTitle(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/tasks", map[string]any{"priority": 3})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/tasks/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCollaboratorForbiddenOverHTTP(t *testing.T) {
	api := newTestAPI(t)

	// Owner creates and shares the task.
	rec := api.do(t, http.MethodPost, "/api/v1/tasks", map[string]any{"title": "Shared"})
	created := decode[task.Task](t, rec)

	rec = api.do(t, http.MethodPost, "/api/v1/tasks/"+created.ID+"/collaborators", map[string]any{
		"employee_id": api.collab.ID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("share status = %d, body %s", rec.Code, rec.Body.String())
	}

	// The collaborator can move status but not priority.
	api.current = api.collab
	rec = api.do(t, http.MethodPut, "/api/v1/tasks/"+created.ID, map[string]any{"status": "under_review"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status update = %d, body %s", rec.Code, rec.Body.String())
	}
	rec = api.do(t, http.MethodPut, "/api/v1/tasks/"+created.ID, map[string]any{"priority": 9})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("priority update = %d, want 403", rec.Code)
	}
}

func TestCapabilitiesOverHTTP(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/tasks", map[string]any{"title": "Cap check"})
	created := decode[task.Task](t, rec)

	rec = api.do(t, http.MethodGet, "/api/v1/tasks/"+created.ID+"/capabilities", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	d := decode[permission.Decision](t, rec)
	if !d.Allowed || len(d.MutableFields) != len(permission.AllFields()) {
		t.Fatalf("decision = %+v, want full access", d)
	}
}

func TestSubtasksOverHTTP(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/tasks", map[string]any{"title": "Parent"})
	parent := decode[task.Task](t, rec)

	rec = api.do(t, http.MethodPost, "/api/v1/tasks/"+parent.ID+"/subtasks", map[string]any{"title": "Step 1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create subtask = %d, body %s", rec.Code, rec.Body.String())
	}
	sub := decode[task.Subtask](t, rec)

	rec = api.do(t, http.MethodGet, "/api/v1/tasks/"+parent.ID+"/subtasks", nil)
	subs := decode[[]task.Subtask](t, rec)
	if len(subs) != 1 {
		t.Fatalf("subtasks = %d, want 1", len(subs))
	}

	rec = api.do(t, http.MethodPut, "/api/v1/subtasks/"+sub.ID, map[string]any{"status": "completed"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update subtask = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = api.do(t, http.MethodDelete, "/api/v1/subtasks/"+sub.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete subtask = %d", rec.Code)
	}
}

func TestNotificationsOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	api.store.notifications = []notification.Notification{
		{ID: "n1", EmployeeID: api.owner.ID, Kind: notification.KindTaskShared, TaskID: "t1", Message: "shared"},
	}

	rec := api.do(t, http.MethodGet, "/api/v1/notifications", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list = %d", rec.Code)
	}
	list := decode[[]notification.Notification](t, rec)
	if len(list) != 1 || list[0].Read {
		t.Fatalf("list = %+v", list)
	}

	rec = api.do(t, http.MethodPatch, "/api/v1/notifications/n1/read", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("mark read = %d", rec.Code)
	}

	rec = api.do(t, http.MethodPatch, "/api/v1/notifications/mark-all-read", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("mark all read = %d", rec.Code)
	}
}

func TestEmployeeDirectoryRequiresRole(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/employees", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("staff list employees = %d, want 403", rec.Code)
	}

	api.current = api.hr
	rec = api.do(t, http.MethodGet, "/api/v1/employees", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("hr list employees = %d, want 200", rec.Code)
	}
}

func TestLoginOverHTTP(t *testing.T) {
	api := newTestAPI(t)

	// Register through the service so the stored hash is real.
	auth := service.NewAuthService(api.store, &config.Auth{
		JWTSecret:      "handler-test-secret",
		AccessTokenTTL: time.Hour,
		BcryptCost:     4,
	})
	if _, err := auth.CreateEmployee(context.Background(), &employee.CreateRequest{
		Email: "login@example.com", Name: "Login", Password: "correcthorse", Role: employee.RoleStaff,
	}); err != nil {
		t.Fatalf("CreateEmployee: %v", err)
	}

	rec := api.do(t, http.MethodPost, "/api/v1/auth/login", map[string]any{
		"email": "login@example.com", "password": "correcthorse",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decode[employee.LoginResponse](t, rec)
	if resp.AccessToken == "" {
		t.Fatal("empty access token")
	}

	rec = api.do(t, http.MethodPost, "/api/v1/auth/login", map[string]any{
		"email": "login@example.com", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login = %d, want 401", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health = %d", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	if body["status"] != "ok" {
		t.Fatalf("body = %v", body)
	}
}
