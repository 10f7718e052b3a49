package handler

import (
	"errors"
	"net/http"
	"time"

	clubdomain "bookclub-go/internal/domain/club"
	"bookclub-go/internal/transport/httpserver/middleware"

	"github.com/go-chi/chi/v5"
)

type createClubRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=2000"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
	Visibility  string `json:"visibility" validate:"required,oneof=public observable private"`
}

type submitRequestRequest struct {
	Message string `json:"message" validate:"max=2000"`
}

type clubResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url,omitempty"`
	Visibility  string    `json:"visibility"`
	CreatedAt   time.Time `json:"created_at"`
}

type clubViewResponse struct {
	Club           clubResponse `json:"club"`
	Role           string       `json:"role,omitempty"`
	RequestPending bool         `json:"request_pending"`
}

func toClubResponse(c clubdomain.Club) clubResponse {
	return clubResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		Visibility:  string(c.Visibility),
		CreatedAt:   c.CreatedAt,
	}
}

func toClubResponses(clubs []clubdomain.Club) []clubResponse {
	result := make([]clubResponse, 0, len(clubs))
	for _, c := range clubs {
		result = append(result, toClubResponse(c))
	}
	return result
}

func (h *Handlers) ListClubs(w http.ResponseWriter, r *http.Request) {
	readerID, ok := middleware.ReaderIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "missing or invalid token")
		return
	}

	clubs, err := h.Clubs.HomeClubs(r.Context(), readerID)
	if err != nil {
		h.log.InternalError("clubs.list: home clubs failed", err, "reader_id", readerID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"clubs": toClubResponses(clubs)})
}

func (h *Handlers) CreateClub(w http.ResponseWriter, r *http.Request) {
	var req createClubRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	readerID, ok := middleware.ReaderIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "missing or invalid token")
		return
	}

	result, err := h.Clubs.Create(r.Context(), readerID, clubdomain.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Visibility:  clubdomain.Visibility(req.Visibility),
	})
	if err != nil {
		switch {
		case errors.Is(err, clubdomain.ErrDuplicateName):
			h.log.BusinessError("clubs.create: duplicate name", err, "reader_id", readerID, "name", req.Name)
			writeError(w, http.StatusConflict, "duplicate_name", "club name already exists")
		case errors.Is(err, clubdomain.ErrValidation):
			h.log.BusinessError("clubs.create: invalid input", err, "reader_id", readerID)
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		default:
			h.log.InternalError("clubs.create: create failed", err, "reader_id", readerID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toClubResponse(*result))
}

func (h *Handlers) SearchClubs(w http.ResponseWriter, r *http.Request) {
	clubs, err := h.Clubs.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.log.InternalError("clubs.search: search failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"clubs": toClubResponses(clubs)})
}

func (h *Handlers) GetClub(w http.ResponseWriter, r *http.Request) {
	readerID, ok := middleware.ReaderIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "missing or invalid token")
		return
	}

	slug := chi.URLParam(r, "slug")
	view, err := h.Clubs.ResolveForReader(r.Context(), slug, readerID)
	if err != nil {
		if errors.Is(err, clubdomain.ErrClubNotFound) {
			h.log.BusinessError("clubs.get: club not visible", err, "reader_id", readerID, "slug", slug)
			writeError(w, http.StatusNotFound, "club_not_found", "club not found")
			return
		}
		h.log.InternalError("clubs.get: resolve failed", err, "reader_id", readerID, "slug", slug)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, clubViewResponse{
		Club:           toClubResponse(view.Club),
		Role:           string(view.Role),
		RequestPending: view.RequestPending,
	})
}

func (h *Handlers) LeaveClub(w http.ResponseWriter, r *http.Request) {
	readerID, ok := middleware.ReaderIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "missing or invalid token")
		return
	}

	slug := chi.URLParam(r, "slug")
	if err := h.Clubs.Leave(r.Context(), slug, readerID); err != nil {
		switch {
		case errors.Is(err, clubdomain.ErrClubNotFound), errors.Is(err, clubdomain.ErrMemberNotFound):
			h.log.BusinessError("clubs.leave: not a member", err, "reader_id", readerID, "slug", slug)
			writeError(w, http.StatusNotFound, "club_not_found", "club not found")
		case errors.Is(err, clubdomain.ErrCannotRemoveCreator):
			h.log.BusinessError("clubs.leave: creator cannot leave", err, "reader_id", readerID, "slug", slug)
			writeError(w, http.StatusConflict, "creator_cannot_leave", "the creator cannot leave; disband the club instead")
		default:
			h.log.InternalError("clubs.leave: leave failed", err, "reader_id", readerID, "slug", slug)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var req submitRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	readerID, ok := middleware.ReaderIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "missing or invalid token")
		return
	}

	slug := chi.URLParam(r, "slug")
	if err := h.Clubs.SubmitRequest(r.Context(), slug, readerID, req.Message); err != nil {
		switch {
		// A private club is indistinguishable from a missing one.
		case errors.Is(err, clubdomain.ErrClubNotFound), errors.Is(err, clubdomain.ErrClubPrivate):
			h.log.BusinessError("clubs.request: club not joinable", err, "reader_id", readerID, "slug", slug)
			writeError(w, http.StatusNotFound, "club_not_found", "club not found")
		case errors.Is(err, clubdomain.ErrAlreadyMember):
			h.log.BusinessError("clubs.request: already a member", err, "reader_id", readerID, "slug", slug)
			writeError(w, http.StatusConflict, "already_member", "already a member of this club")
		case errors.Is(err, clubdomain.ErrValidation):
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		default:
			h.log.InternalError("clubs.request: submit failed", err, "reader_id", readerID, "slug", slug)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	w.WriteHeader(http.StatusAccepted)
}
