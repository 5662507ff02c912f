// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

// PageRoutes serves the sign-in page (mounted at /login).
func PageRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServePage)
	return r
}

// APIRoutes serves the sign-in endpoint (mounted at /api/auth/login).
func APIRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeLogin)
	return r
}
