package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/worklane/worklane/internal/domain/employee"
	"github.com/worklane/worklane/internal/middleware"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/health", h.Health)
	r.Get("/ws", h.HandleWS)

	r.Route("/api/v1", func(r chi.Router) {
		// Version
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"0.1.0"}`))
		})

		// Auth
		r.Post("/auth/login", h.Login)
		r.Get("/auth/me", h.Me)

		// Employee directory
		r.With(middleware.RequireRole(employee.RoleManager, employee.RoleHR, employee.RoleDirector)).
			Get("/employees", h.ListEmployees)

		// Tasks
		r.Get("/tasks", h.ListTasks)
		r.Post("/tasks", h.CreateTask)
		r.Get("/tasks/{id}", h.GetTask)
		r.Put("/tasks/{id}", h.UpdateTask)
		r.Post("/tasks/{id}/collaborators", h.AddCollaborator)
		r.Get("/tasks/{id}/capabilities", h.GetCapabilities)

		// Subtasks (nested under tasks)
		r.Get("/tasks/{id}/subtasks", h.ListSubtasks)
		r.Post("/tasks/{id}/subtasks", h.CreateSubtask)

		// Subtasks (direct access)
		r.Put("/subtasks/{id}", h.UpdateSubtask)
		r.Delete("/subtasks/{id}", h.DeleteSubtask)

		// Notifications
		r.Get("/notifications", h.ListNotifications)
		r.Patch("/notifications/{id}/read", h.MarkNotificationRead)
		r.Patch("/notifications/mark-all-read", h.MarkAllNotificationsRead)
	})
}
