package httpserver

import (
	"net/http"
	"time"

	"bookclub-go/internal/transport/httpserver/handler"
	authmw "bookclub-go/internal/transport/httpserver/middleware"
	"bookclub-go/pkg/token"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(handlers *handler.Handlers, tokens *token.Manager) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(authmw.NewCORS([]string{"http://localhost:5173"}))

	auth := authmw.NewAuth(tokens)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		r.Post("/auth/register", handlers.Register)
		r.Post("/auth/login", handlers.Login)
		r.Post("/auth/refresh", handlers.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Get("/auth/me", handlers.Me)
			r.Post("/auth/deactivate", handlers.Deactivate)

			r.Get("/clubs", handlers.ListClubs)
			r.Post("/clubs", handlers.CreateClub)
			r.Get("/clubs/search", handlers.SearchClubs)
			r.Get("/clubs/{slug}", handlers.GetClub)
			r.Post("/clubs/{slug}/leave", handlers.LeaveClub)
			r.Post("/clubs/{slug}/requests", handlers.SubmitRequest)

			r.Get("/clubs/{slug}/admin/requests", handlers.ListRequests)
			r.Post("/clubs/{slug}/admin/requests/{request_id}/approve", handlers.ApproveRequest)
			r.Post("/clubs/{slug}/admin/requests/{request_id}/deny", handlers.DenyRequest)
			r.Get("/clubs/{slug}/admin/members", handlers.ListMembers)
			r.Patch("/clubs/{slug}/admin/members/{reader_id}", handlers.UpdateMemberRole)
			r.Delete("/clubs/{slug}/admin/members/{reader_id}", handlers.RemoveMember)
			r.Patch("/clubs/{slug}/admin/prefs", handlers.UpdatePrefs)
			r.Post("/clubs/{slug}/admin/disband", handlers.DisbandClub)

			r.Get("/notifications", handlers.ListNotifications)
			r.Post("/notifications/{id}/toggle-viewed", handlers.ToggleNotificationViewed)
			r.Post("/notifications/{id}/link", handlers.FollowNotificationLink)
		})
	})

	return r
}
