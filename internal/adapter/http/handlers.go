package http

import (
	"net/http"

	"github.com/worklane/worklane/internal/adapter/ws"
	"github.com/worklane/worklane/internal/middleware"
	"github.com/worklane/worklane/internal/port/messagequeue"
	"github.com/worklane/worklane/internal/service"
)

// Handlers bundles the services behind the HTTP surface.
type Handlers struct {
	tasks         *service.TaskService
	subtasks      *service.SubtaskService
	notifications *service.NotificationService
	auth          *service.AuthService
	hub           *ws.Hub
	queue         messagequeue.Queue
}

// NewHandlers creates the handler set. hub and queue may be nil in tests.
func NewHandlers(
	tasks *service.TaskService,
	subtasks *service.SubtaskService,
	notifications *service.NotificationService,
	auth *service.AuthService,
	hub *ws.Hub,
	queue messagequeue.Queue,
) *Handlers {
	return &Handlers{
		tasks:         tasks,
		subtasks:      subtasks,
		notifications: notifications,
		auth:          auth,
		hub:           hub,
		queue:         queue,
	}
}

// Health reports process liveness and dependency status.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{"status": "ok"}
	if h.queue != nil {
		resp["nats_connected"] = h.queue.IsConnected()
	}
	if h.hub != nil {
		resp["ws_connections"] = h.hub.ConnectionCount()
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleWS upgrades an authenticated request to a WebSocket connection.
func (h *Handlers) HandleWS(w http.ResponseWriter, r *http.Request) {
	e := middleware.EmployeeFromContext(r.Context())
	if e == nil {
		writeError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	h.hub.HandleWS(w, r, e.ID)
}
