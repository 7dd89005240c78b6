package rest

import (
	"net/http"

	"github.com/dmitrijs2005/gophtodo/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires the public and the authenticated routes. Every route in the
// protected group passes through RequireAuth exactly once.
func NewRouter(h *Handler, a Authenticator, trustedOrigins []string, log logging.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   trustedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", h.Home)
	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(a, log))

			r.Get("/tasks", h.ListTasks)
			r.Post("/tasks", h.CreateTask)
			r.Put("/tasks/{id}", h.UpdateTask)
			r.Delete("/tasks/{id}", h.DeleteTask)
			r.Get("/userinfo", h.UserInfo)
		})
	})

	return r
}
