package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"bookclub-go/pkg/token"
)

type contextKey int

const readerIDKey contextKey = iota

// Auth verifies the bearer access token and stores the reader id on the
// request context. Every gated operation receives the caller identity
// explicitly from here; nothing reads session state elsewhere.
type Auth struct {
	tokens *token.Manager
}

func NewAuth(tokens *token.Manager) *Auth {
	return &Auth{tokens: tokens}
}

func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			unauthorized(w)
			return
		}

		claims, err := a.tokens.ParseAccess(raw)
		if err != nil {
			unauthorized(w)
			return
		}

		ctx := WithReaderID(r.Context(), claims.ReaderID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func WithReaderID(ctx context.Context, readerID string) context.Context {
	return context.WithValue(ctx, readerIDKey, readerID)
}

func ReaderIDFromContext(ctx context.Context) (string, bool) {
	readerID, ok := ctx.Value(readerIDKey).(string)
	return readerID, ok && readerID != ""
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": "invalid_token", "message": "missing or invalid token"},
	})
}
