package http

import (
	"net/http"

	"github.com/worklane/worklane/internal/domain/notification"
)

// ListNotifications returns the actor's inbox, newest first.
func (h *Handlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
	e, ok := actor(w, r)
	if !ok {
		return
	}

	notifications, err := h.notifications.List(r.Context(), e.ID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if notifications == nil {
		notifications = []notification.Notification{}
	}
	writeJSON(w, http.StatusOK, notifications)
}

// MarkNotificationRead marks one of the actor's notifications as read.
func (h *Handlers) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	e, ok := actor(w, r)
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(r.Context(), urlParam(r, "id"), e.ID); err != nil {
		writeDomainError(w, err, "notification not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAllNotificationsRead marks the actor's whole inbox as read.
func (h *Handlers) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	e, ok := actor(w, r)
	if !ok {
		return
	}

	if err := h.notifications.MarkAllRead(r.Context(), e.ID); err != nil {
		writeInternalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
