// internal/app/features/dashboard/routes.go
package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the admin pages under /admin behind guard, the cookie
// based route guard middleware.
func Routes(h *Handler, guard func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	if guard != nil {
		r.Use(guard)
	}
	r.Get("/", h.ServeRoot)
	r.Get("/dashboard", h.ServeDashboard)
	r.Get("/content/{collection}", h.ServeContent)
	r.Get("/users", h.ServeUsers)
	r.Get("/users/*", h.ServeUsers)
	r.Get("/audit", h.ServeAudit)
	return r
}
