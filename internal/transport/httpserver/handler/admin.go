package handler

import (
	"errors"
	"net/http"
	"time"

	clubdomain "bookclub-go/internal/domain/club"
	"bookclub-go/internal/transport/httpserver/middleware"

	"github.com/go-chi/chi/v5"
)

type approveRequestRequest struct {
	Role string `json:"role" validate:"required,oneof=admin participant reader observer"`
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin participant reader observer"`
}

type updatePrefsRequest struct {
	Description string `json:"description" validate:"max=2000"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
	Visibility  string `json:"visibility" validate:"required,oneof=public observable private"`
}

type memberResponse struct {
	ReaderID  string    `json:"reader_id"`
	Role      string    `json:"role"`
	IsCreator bool      `json:"is_creator"`
	JoinedAt  time.Time `json:"joined_at"`
}

type requestResponse struct {
	ID          string     `json:"id"`
	ReaderID    string     `json:"reader_id"`
	Message     string     `json:"message"`
	Status      string     `json:"status"`
	RequestedAt time.Time  `json:"requested_at"`
	EvaluatorID *string    `json:"evaluator_id,omitempty"`
	EvaluatedAt *time.Time `json:"evaluated_at,omitempty"`
}

// adminIdentity pulls the caller and slug; the admin gate itself lives in the
// club service, not here.
func adminIdentity(w http.ResponseWriter, r *http.Request) (readerID, slug string, ok bool) {
	readerID, ok = middleware.ReaderIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "missing or invalid token")
		return "", "", false
	}
	return readerID, chi.URLParam(r, "slug"), true
}

// writeAdminError maps every admin-gate failure onto the same 404 so the
// response never reveals whether the club exists.
func (h *Handlers) writeAdminError(w http.ResponseWriter, op string, err error, args ...any) {
	switch {
	case errors.Is(err, clubdomain.ErrClubNotFound):
		h.log.BusinessError(op+": admin gate failed", err, args...)
		writeError(w, http.StatusNotFound, "club_not_found", "club not found")
	case errors.Is(err, clubdomain.ErrRequestNotFound):
		h.log.BusinessError(op+": request not found", err, args...)
		writeError(w, http.StatusNotFound, "request_not_found", "membership request not found")
	case errors.Is(err, clubdomain.ErrAlreadyEvaluated):
		h.log.BusinessError(op+": request already evaluated", err, args...)
		writeError(w, http.StatusConflict, "already_evaluated", "membership request already evaluated")
	case errors.Is(err, clubdomain.ErrMemberNotFound):
		h.log.BusinessError(op+": member not found", err, args...)
		writeError(w, http.StatusNotFound, "member_not_found", "member not found")
	case errors.Is(err, clubdomain.ErrCannotRemoveCreator):
		h.log.BusinessError(op+": creator is immovable", err, args...)
		writeError(w, http.StatusConflict, "cannot_remove_creator", "the club creator cannot be removed")
	case errors.Is(err, clubdomain.ErrValidation):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		h.log.InternalError(op+": failed", err, args...)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func (h *Handlers) ListRequests(w http.ResponseWriter, r *http.Request) {
	readerID, slug, ok := adminIdentity(w, r)
	if !ok {
		return
	}

	requests, err := h.Clubs.ListRequests(r.Context(), slug, readerID)
	if err != nil {
		h.writeAdminError(w, "admin.list_requests", err, "reader_id", readerID, "slug", slug)
		return
	}

	result := make([]requestResponse, 0, len(requests))
	for _, request := range requests {
		result = append(result, requestResponse{
			ID:          request.ID,
			ReaderID:    request.ReaderID,
			Message:     request.Message,
			Status:      string(request.Status),
			RequestedAt: request.RequestedAt,
			EvaluatorID: request.EvaluatorID,
			EvaluatedAt: request.EvaluatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"requests": result})
}

func (h *Handlers) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	var req approveRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	readerID, slug, ok := adminIdentity(w, r)
	if !ok {
		return
	}

	requestID := chi.URLParam(r, "request_id")
	if err := h.Clubs.ApproveRequest(r.Context(), slug, readerID, requestID, clubdomain.Role(req.Role)); err != nil {
		h.writeAdminError(w, "admin.approve", err, "reader_id", readerID, "slug", slug, "request_id", requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) DenyRequest(w http.ResponseWriter, r *http.Request) {
	readerID, slug, ok := adminIdentity(w, r)
	if !ok {
		return
	}

	requestID := chi.URLParam(r, "request_id")
	if err := h.Clubs.DenyRequest(r.Context(), slug, readerID, requestID); err != nil {
		h.writeAdminError(w, "admin.deny", err, "reader_id", readerID, "slug", slug, "request_id", requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ListMembers(w http.ResponseWriter, r *http.Request) {
	readerID, slug, ok := adminIdentity(w, r)
	if !ok {
		return
	}

	members, err := h.Clubs.ListMembers(r.Context(), slug, readerID)
	if err != nil {
		h.writeAdminError(w, "admin.list_members", err, "reader_id", readerID, "slug", slug)
		return
	}

	result := make([]memberResponse, 0, len(members))
	for _, m := range members {
		result = append(result, memberResponse{
			ReaderID:  m.ReaderID,
			Role:      string(m.Role),
			IsCreator: m.IsCreator,
			JoinedAt:  m.JoinedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"members": result})
}

func (h *Handlers) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	var req updateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	readerID, slug, ok := adminIdentity(w, r)
	if !ok {
		return
	}

	targetID := chi.URLParam(r, "reader_id")
	if err := h.Clubs.UpdateMemberRole(r.Context(), slug, readerID, targetID, clubdomain.Role(req.Role)); err != nil {
		h.writeAdminError(w, "admin.update_role", err, "reader_id", readerID, "slug", slug, "target_id", targetID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) RemoveMember(w http.ResponseWriter, r *http.Request) {
	readerID, slug, ok := adminIdentity(w, r)
	if !ok {
		return
	}

	targetID := chi.URLParam(r, "reader_id")
	if err := h.Clubs.RemoveMember(r.Context(), slug, readerID, targetID); err != nil {
		h.writeAdminError(w, "admin.remove_member", err, "reader_id", readerID, "slug", slug, "target_id", targetID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) UpdatePrefs(w http.ResponseWriter, r *http.Request) {
	var req updatePrefsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	readerID, slug, ok := adminIdentity(w, r)
	if !ok {
		return
	}

	err := h.Clubs.UpdatePrefs(r.Context(), slug, readerID, clubdomain.PrefsInput{
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Visibility:  clubdomain.Visibility(req.Visibility),
	})
	if err != nil {
		h.writeAdminError(w, "admin.update_prefs", err, "reader_id", readerID, "slug", slug)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) DisbandClub(w http.ResponseWriter, r *http.Request) {
	readerID, slug, ok := adminIdentity(w, r)
	if !ok {
		return
	}

	if err := h.Clubs.Disband(r.Context(), slug, readerID); err != nil {
		h.writeAdminError(w, "admin.disband", err, "reader_id", readerID, "slug", slug)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
