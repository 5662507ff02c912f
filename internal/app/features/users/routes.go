// internal/app/features/users/routes.go
package users

import "github.com/go-chi/chi/v5"

// Routes mounts the user management API (typically at /api/users).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/", h.ServeCreate)
	r.Get("/assignable-roles", h.ServeAssignableRoles)
	r.Patch("/{id}/role", h.ServeChangeRole)
	return r
}
