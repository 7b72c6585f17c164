package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fwwzhai/thrifty-backend/internal/identity"
	"github.com/fwwzhai/thrifty-backend/internal/platform/logger"
	"github.com/fwwzhai/thrifty-backend/internal/service"
)

type notificationHandler struct {
	notifications *service.NotificationService
	log           logger.Logger
}

func (h *notificationHandler) list(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())
	snapshot, err := h.notifications.Snapshot(r.Context(), userID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *notificationHandler) markRead(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())
	if err := h.notifications.MarkRead(r.Context(), userID, chi.URLParam(r, "entryID")); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *notificationHandler) delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())
	if err := h.notifications.Delete(r.Context(), userID, chi.URLParam(r, "entryID")); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
