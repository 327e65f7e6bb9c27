package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/madadgarapp/listings-api/internal/application/notification"
	"github.com/madadgarapp/listings-api/internal/transport/http/middleware"
)

// NotificationHandler handles the in-app notification surface.
type NotificationHandler struct {
	svc    notification.Service
	events notification.Events
}

func NewNotificationHandler(svc notification.Service, events notification.Events) *NotificationHandler {
	return &NotificationHandler{svc: svc, events: events}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if r.URL.Query().Get("unread") == "true" {
		ns, err := h.svc.ListUnread(r.Context(), claims.UserID)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ns)
		return
	}
	ns, err := h.svc.ListAll(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ns)
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	n, err := h.svc.UnreadCount(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	n, err := h.svc.MarkRead(r.Context(), chi.URLParam(r, "id"), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), claims.UserID); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "notification deleted"})
}

// SystemAlert sends an announcement to the listed users, or to every
// user when no list is given. Admin-only.
func (h *NotificationHandler) SystemAlert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string   `json:"title"`
		Body    string   `json:"body"`
		UserIDs []string `json:"userIds,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" || req.Body == "" {
		writeError(w, http.StatusBadRequest, "title and body required")
		return
	}
	if err := h.events.NotifySystemAlert(r.Context(), req.Title, req.Body, req.UserIDs); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "system alert queued"})
}
