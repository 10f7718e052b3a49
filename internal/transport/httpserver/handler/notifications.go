package handler

import (
	"errors"
	"net/http"
	"time"

	notificationdomain "bookclub-go/internal/domain/notification"
	"bookclub-go/internal/transport/httpserver/middleware"

	"github.com/go-chi/chi/v5"
)

type notificationResponse struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	SourceReaderID string    `json:"source_reader_id"`
	TargetReaderID *string   `json:"target_reader_id,omitempty"`
	ClubID         *string   `json:"club_id,omitempty"`
	ActionLink     string    `json:"action_link,omitempty"`
	GeneratedAt    time.Time `json:"generated_at"`
	Viewed         bool      `json:"viewed"`
}

func (h *Handlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
	readerID, ok := middleware.ReaderIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "missing or invalid token")
		return
	}

	items, err := h.Notifications.ListFor(r.Context(), readerID)
	if err != nil {
		h.log.InternalError("notifications.list: list failed", err, "reader_id", readerID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	result := make([]notificationResponse, 0, len(items))
	for _, item := range items {
		result = append(result, notificationResponse{
			ID:             item.ID,
			Type:           string(item.Type),
			SourceReaderID: item.SourceReaderID,
			TargetReaderID: item.TargetReaderID,
			ClubID:         item.ClubID,
			ActionLink:     item.ActionLink,
			GeneratedAt:    item.GeneratedAt,
			Viewed:         item.Viewed,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"notifications": result})
}

func (h *Handlers) ToggleNotificationViewed(w http.ResponseWriter, r *http.Request) {
	readerID, ok := middleware.ReaderIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "missing or invalid token")
		return
	}

	notificationID := chi.URLParam(r, "id")
	if err := h.Notifications.ToggleViewed(r.Context(), notificationID, readerID); err != nil {
		if errors.Is(err, notificationdomain.ErrNotificationNotFound) {
			h.log.BusinessError("notifications.toggle: not found", err, "reader_id", readerID, "notification_id", notificationID)
			writeError(w, http.StatusNotFound, "notification_not_found", "notification not found")
			return
		}
		h.log.InternalError("notifications.toggle: toggle failed", err, "reader_id", readerID, "notification_id", notificationID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) FollowNotificationLink(w http.ResponseWriter, r *http.Request) {
	readerID, ok := middleware.ReaderIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "missing or invalid token")
		return
	}

	notificationID := chi.URLParam(r, "id")
	link, err := h.Notifications.FollowLink(r.Context(), notificationID, readerID)
	if err != nil {
		if errors.Is(err, notificationdomain.ErrNotificationNotFound) {
			h.log.BusinessError("notifications.link: not found", err, "reader_id", readerID, "notification_id", notificationID)
			writeError(w, http.StatusNotFound, "notification_not_found", "notification not found")
			return
		}
		h.log.InternalError("notifications.link: follow failed", err, "reader_id", readerID, "notification_id", notificationID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"link": link})
}
