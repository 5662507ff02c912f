// internal/app/features/content/routes.go
package content

import "github.com/go-chi/chi/v5"

// Routes mounts the content API (typically at /api/content). Reads are
// public; every write checks the session inside its handler.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{collection}", h.ServeList)
	r.Post("/{collection}", h.ServeCreate)
	r.Put("/{collection}/{id}", h.ServeUpdate)
	r.Delete("/{collection}/{id}", h.ServeDelete)
	return r
}
