// internal/app/features/content/write.go
package content

import (
	"net/http"

	"github.com/dalemusser/orgsite/internal/app/store/audit"
	contentstore "github.com/dalemusser/orgsite/internal/app/store/content"
	"github.com/dalemusser/orgsite/internal/app/system/apierr"
	"github.com/dalemusser/orgsite/internal/app/system/apiguard"
	"github.com/dalemusser/orgsite/internal/app/system/auth"
	"github.com/dalemusser/orgsite/internal/app/system/authz"
	"github.com/dalemusser/orgsite/internal/app/system/cache"
	"github.com/dalemusser/orgsite/internal/app/system/sanitize"
	"github.com/dalemusser/orgsite/internal/app/system/timeouts"
	"github.com/dalemusser/orgsite/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// readFields decodes a flat JSON object and sanitizes its string fields.
func readFields(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	var body map[string]any
	if err := apiguard.DecodeJSON(w, r, &body); err != nil {
		return nil, err
	}
	if body == nil {
		return nil, apierr.Validation("Request body must be a JSON object")
	}
	fields := contentstore.StripReserved(sanitize.SanitizeObject(body, sanitize.DefaultObjectMaxLen))
	if len(fields) == 0 {
		return nil, apierr.Validation("No fields to save")
	}
	return fields, nil
}

// begin runs the common prologue of a content mutation: role check and
// collection check.
func (h *Handler) begin(w http.ResponseWriter, r *http.Request, min authz.Role) (auth.Identity, string, bool) {
	id, ok := h.Guard.Require(w, r, min)
	if !ok {
		return id, "", false
	}
	coll := chi.URLParam(r, "collection")
	if !models.IsReorderable(coll) {
		h.Guard.Fail(w, r, errUnknownCollection)
		return id, "", false
	}
	return id, coll, true
}

func (h *Handler) after(r *http.Request, id auth.Identity, action, coll, target, details string) {
	h.Audit.Log(r.Context(), id.UID, id.Name, action, coll+"/"+target, details)
	h.Inval.Invalidate(r.Context(), cache.ContentNamespace(coll))
}

// ServeCreate handles POST /api/content/{collection}. Editor or above.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	id, coll, ok := h.begin(w, r, authz.RoleEditor)
	if !ok {
		return
	}
	fields, err := readFields(w, r)
	if err != nil {
		h.Guard.Fail(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "content create "+coll)
	defer cancel()

	item, err := h.Store.Create(ctx, coll, fields, contentstore.Actor{ID: id.UID, Name: id.Name})
	if err != nil {
		h.Guard.Fail(w, r, storeError(err, "create item"))
		return
	}

	h.after(r, id, audit.ActionCreate, coll, item.ID.Hex(), label(fields))
	apierr.WriteJSON(w, http.StatusCreated, map[string]string{"id": item.ID.Hex()})
}

// ServeUpdate handles PUT /api/content/{collection}/{id}. Editor or above.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	id, coll, ok := h.begin(w, r, authz.RoleEditor)
	if !ok {
		return
	}
	fields, err := readFields(w, r)
	if err != nil {
		h.Guard.Fail(w, r, err)
		return
	}
	itemID := chi.URLParam(r, "id")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "content update "+coll)
	defer cancel()

	if err := h.Store.Update(ctx, coll, itemID, fields, contentstore.Actor{ID: id.UID, Name: id.Name}); err != nil {
		h.Guard.Fail(w, r, storeError(err, "update item"))
		return
	}

	h.after(r, id, audit.ActionUpdate, coll, itemID, label(fields))
	apierr.WriteJSON(w, http.StatusOK, map[string]string{"message": "Updated!"})
}

// ServeDelete handles DELETE /api/content/{collection}/{id}. Admin or above.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	id, coll, ok := h.begin(w, r, authz.RoleAdmin)
	if !ok {
		return
	}
	itemID := chi.URLParam(r, "id")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "content delete "+coll)
	defer cancel()

	// Load first so the audit entry can name what was removed.
	var name string
	if item, err := h.Store.Get(ctx, coll, itemID); err == nil {
		name = label(item.Fields)
	}

	if err := h.Store.Delete(ctx, coll, itemID); err != nil {
		h.Guard.Fail(w, r, storeError(err, "delete item"))
		return
	}

	h.after(r, id, audit.ActionDelete, coll, itemID, name)
	apierr.WriteJSON(w, http.StatusOK, map[string]string{"message": "Deleted!"})
}
