package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/back2u/internal/model"
	"github.com/erazemk/back2u/internal/store"
)

// NotificationsHandler lets users read their own notification log.
type NotificationsHandler struct {
	DB *sql.DB
}

// List handles GET /api/notifications.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	notifications, err := store.ListNotificationsForUser(r.Context(), h.DB, claims.UserID)
	if err != nil {
		slog.Error("failed to list notifications", "user_id", claims.UserID, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}
	jsonResponse(w, http.StatusOK, notifications)
}

// MarkRead handles PUT /api/notifications/{id}/read.
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	err = store.MarkNotificationRead(r.Context(), h.DB, id, claims.UserID)
	if errors.Is(err, store.ErrNotificationNotFound) {
		jsonError(w, http.StatusNotFound, "notification not found")
		return
	}
	if err != nil {
		slog.Error("failed to mark notification read", "notification_id", id, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to mark notification read")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "notification marked read"})
}
