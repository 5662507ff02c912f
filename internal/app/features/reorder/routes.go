// internal/app/features/reorder/routes.go
package reorder

import "github.com/go-chi/chi/v5"

// Routes mounts PATCH / under wherever bootstrap places it (/api/reorder).
// Authorization happens inside the handler, not in middleware.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Patch("/", h.ServeReorder)
	return r
}
