package handler

import (
	"errors"
	"net/http"
	"time"

	readerdomain "bookclub-go/internal/domain/reader"
	"bookclub-go/internal/transport/httpserver/middleware"
)

type registerRequest struct {
	Username        string `json:"username" validate:"required,max=50"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=128"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
	GivenName       string `json:"given_name" validate:"required,max=50"`
	Surname         string `json:"surname" validate:"required,max=50"`
}

type loginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type readerResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	GivenName string    `json:"given_name"`
	Surname   string    `json:"surname"`
	JoinedAt  time.Time `json:"joined_at"`
}

func toReaderResponse(r *readerdomain.Reader) readerResponse {
	return readerResponse{
		ID:        r.ID,
		Username:  r.Username,
		Email:     r.Email,
		GivenName: r.GivenName,
		Surname:   r.Surname,
		JoinedAt:  r.JoinedAt,
	}
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.Password != req.PasswordConfirm {
		writeError(w, http.StatusBadRequest, "password_mismatch", "passwords do not match")
		return
	}

	result, err := h.Readers.Register(r.Context(), readerdomain.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		GivenName: req.GivenName,
		Surname:   req.Surname,
	})
	if err != nil {
		if errors.Is(err, readerdomain.ErrTaken) {
			h.log.BusinessError("auth.register: identity taken", err, "username", req.Username)
			writeError(w, http.StatusConflict, "username_or_email_taken", "username or email has already been taken")
			return
		}
		h.log.InternalError("auth.register: register failed", err, "username", req.Username)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, toReaderResponse(result))
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.Readers.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, readerdomain.ErrInvalidCredentials) {
			h.log.BusinessError("auth.login: invalid credentials", err, "login", req.Login)
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "username or password incorrect")
			return
		}
		h.log.InternalError("auth.login: authenticate failed", err, "login", req.Login)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	pair, err := h.tokens.IssuePair(result.ID)
	if err != nil {
		h.log.InternalError("auth.login: issue tokens failed", err, "reader_id", result.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	pair, err := h.tokens.Refresh(req.RefreshToken)
	if err != nil {
		h.log.BusinessError("auth.refresh: refresh rejected", err)
		writeError(w, http.StatusUnauthorized, "invalid_token", "missing or invalid token")
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	readerID, ok := middleware.ReaderIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "missing or invalid token")
		return
	}

	result, err := h.Readers.GetByID(r.Context(), readerID)
	if err != nil {
		if errors.Is(err, readerdomain.ErrReaderNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid_token", "missing or invalid token")
			return
		}
		h.log.InternalError("auth.me: get reader failed", err, "reader_id", readerID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toReaderResponse(result))
}

func (h *Handlers) Deactivate(w http.ResponseWriter, r *http.Request) {
	readerID, ok := middleware.ReaderIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "missing or invalid token")
		return
	}

	if err := h.Readers.Deactivate(r.Context(), readerID); err != nil {
		h.log.InternalError("auth.deactivate: deactivate failed", err, "reader_id", readerID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
