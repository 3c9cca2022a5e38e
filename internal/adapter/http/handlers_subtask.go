package http

import (
	"net/http"

	"github.com/worklane/worklane/internal/domain/task"
)

// ListSubtasks returns the subtasks of a parent task.
func (h *Handlers) ListSubtasks(w http.ResponseWriter, r *http.Request) {
	e, ok := actor(w, r)
	if !ok {
		return
	}

	subtasks, err := h.subtasks.List(r.Context(), e, urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	if subtasks == nil {
		subtasks = []task.Subtask{}
	}
	writeJSON(w, http.StatusOK, subtasks)
}

// CreateSubtask adds a subtask under a parent task.
func (h *Handlers) CreateSubtask(w http.ResponseWriter, r *http.Request) {
	e, ok := actor(w, r)
	if !ok {
		return
	}
	req, ok := readJSON[task.SubtaskCreateRequest](w, r)
	if !ok {
		return
	}

	sub, err := h.subtasks.Create(r.Context(), e, urlParam(r, "id"), &req)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// UpdateSubtask applies a partial update to a subtask.
func (h *Handlers) UpdateSubtask(w http.ResponseWriter, r *http.Request) {
	e, ok := actor(w, r)
	if !ok {
		return
	}
	patch, ok := readJSON[task.SubtaskUpdateRequest](w, r)
	if !ok {
		return
	}

	sub, err := h.subtasks.Update(r.Context(), e, urlParam(r, "id"), &patch)
	if err != nil {
		writeDomainError(w, err, "subtask not found")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// DeleteSubtask removes a subtask.
func (h *Handlers) DeleteSubtask(w http.ResponseWriter, r *http.Request) {
	e, ok := actor(w, r)
	if !ok {
		return
	}

	if err := h.subtasks.Delete(r.Context(), e, urlParam(r, "id")); err != nil {
		writeDomainError(w, err, "subtask not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
