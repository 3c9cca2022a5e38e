package http

import (
	"net/http"

	"github.com/worklane/worklane/internal/domain/employee"
	"github.com/worklane/worklane/internal/domain/task"
	"github.com/worklane/worklane/internal/middleware"
)

// actor returns the authenticated employee or writes a 401.
func actor(w http.ResponseWriter, r *http.Request) (*employee.Employee, bool) {
	e := middleware.EmployeeFromContext(r.Context())
	if e == nil {
		writeError(w, http.StatusUnauthorized, "authorization required")
		return nil, false
	}
	return e, true
}

// ListTasks returns the tasks the actor owns or collaborates on.
func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	e, ok := actor(w, r)
	if !ok {
		return
	}

	tasks, err := h.tasks.List(r.Context(), e)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// CreateTask creates a new task.
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	e, ok := actor(w, r)
	if !ok {
		return
	}
	req, ok := readJSON[task.CreateRequest](w, r)
	if !ok {
		return
	}

	t, err := h.tasks.Create(r.Context(), e, &req)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// GetTask returns a single task.
func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	e, ok := actor(w, r)
	if !ok {
		return
	}

	t, err := h.tasks.Get(r.Context(), e, urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// UpdateTask applies a partial update to a task.
func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	e, ok := actor(w, r)
	if !ok {
		return
	}
	patch, ok := readJSON[task.UpdateRequest](w, r)
	if !ok {
		return
	}

	t, err := h.tasks.Update(r.Context(), e, urlParam(r, "id"), &patch)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type addCollaboratorRequest struct {
	EmployeeID string `json:"employee_id"`
}

// AddCollaborator shares a task with another employee.
func (h *Handlers) AddCollaborator(w http.ResponseWriter, r *http.Request) {
	e, ok := actor(w, r)
	if !ok {
		return
	}
	req, ok := readJSON[addCollaboratorRequest](w, r)
	if !ok {
		return
	}

	t, err := h.tasks.AddCollaborator(r.Context(), e, urlParam(r, "id"), req.EmployeeID)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// GetCapabilities answers which fields the actor may change on a task.
func (h *Handlers) GetCapabilities(w http.ResponseWriter, r *http.Request) {
	e, ok := actor(w, r)
	if !ok {
		return
	}

	d, err := h.tasks.Capabilities(r.Context(), e, urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, d)
}
