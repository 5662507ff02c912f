// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"

	"github.com/dalemusser/orgsite/internal/app/store/audit"
	"github.com/dalemusser/orgsite/internal/app/system/apierr"
	"github.com/dalemusser/orgsite/internal/app/system/authz"
	"github.com/dalemusser/orgsite/internal/app/system/timeouts"
)

// ServeList handles GET /api/audit.
//
// Returns the 200 most recent entries, newest first. An optional userId
// query parameter narrows the list to one actor.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.Guard.Require(w, r, authz.RoleAdmin); !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "audit list")
	defer cancel()

	var entries []audit.Entry
	var err error
	if uid := r.URL.Query().Get("userId"); uid != "" {
		entries, err = h.Store.ByUser(ctx, uid, ListLimit)
	} else {
		entries, err = h.Store.Recent(ctx, ListLimit)
	}
	if err != nil {
		h.Guard.Fail(w, r, apierr.Internal("Failed to load audit log", err))
		return
	}

	out := make([]entryJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, toJSON(e))
	}
	apierr.WriteJSON(w, http.StatusOK, out)
}
