// internal/app/features/content/list.go
package content

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/orgsite/internal/app/system/apierr"
	"github.com/dalemusser/orgsite/internal/app/system/cache"
	"github.com/dalemusser/orgsite/internal/app/system/timeouts"
	"github.com/dalemusser/orgsite/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const listKey = "list"

// ServeList handles GET /api/content/{collection}. Public and cached.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	coll := chi.URLParam(r, "collection")
	if !models.IsReorderable(coll) {
		h.Guard.Fail(w, r, errUnknownCollection)
		return
	}
	ns := cache.ContentNamespace(coll)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "content list "+coll)
	defer cancel()

	if body, ok := h.Reads.Get(ctx, ns, listKey); ok {
		writeCached(w, body, "HIT")
		return
	}

	// Captured before the read so a mutation landing mid-read voids the Set.
	gen, genErr := h.Reads.Generation(ctx, ns)
	if genErr != nil {
		h.Log.Warn("cache generation lookup failed", zap.String("namespace", ns), zap.Error(genErr))
	}

	items, err := h.Store.List(ctx, coll)
	if err != nil {
		h.Guard.Fail(w, r, storeError(err, "load "+coll))
		return
	}
	body, err := json.Marshal(items)
	if err != nil {
		h.Guard.Fail(w, r, apierr.Internal("Failed to encode "+coll, err))
		return
	}
	if genErr == nil {
		h.Reads.Set(ctx, ns, listKey, gen, body)
	}
	writeCached(w, body, "MISS")
}

func writeCached(w http.ResponseWriter, body []byte, state string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", state)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
