package http

import (
	"errors"
	"net/http"

	"github.com/worklane/worklane/internal/domain/employee"
	"github.com/worklane/worklane/internal/service"
)

// Login authenticates an employee and returns an access token.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[employee.LoginRequest](w, r)
	if !ok {
		return
	}

	resp, err := h.auth.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeDomainError(w, err, "login failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Me returns the authenticated employee's identity.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	e, ok := actor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// ListEmployees returns the employee directory. Restricted by role in the
// route table.
func (h *Handlers) ListEmployees(w http.ResponseWriter, r *http.Request) {
	if _, ok := actor(w, r); !ok {
		return
	}

	employees, err := h.auth.ListEmployees(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if employees == nil {
		employees = []employee.Employee{}
	}
	writeJSON(w, http.StatusOK, employees)
}
