// internal/app/features/setup/routes.go
package setup

import "github.com/go-chi/chi/v5"

// Routes serves POST / (mounted at /bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeBootstrap)
	return r
}
