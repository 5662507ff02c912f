// internal/app/features/reorder/handler.go
package reorder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dalemusser/orgsite/internal/app/store/audit"
	contentstore "github.com/dalemusser/orgsite/internal/app/store/content"
	"github.com/dalemusser/orgsite/internal/app/system/apierr"
	"github.com/dalemusser/orgsite/internal/app/system/apiguard"
	"github.com/dalemusser/orgsite/internal/app/system/auditlog"
	"github.com/dalemusser/orgsite/internal/app/system/authz"
	"github.com/dalemusser/orgsite/internal/app/system/cache"
	"github.com/dalemusser/orgsite/internal/app/system/timeouts"
	"github.com/dalemusser/orgsite/internal/domain/models"
	"go.uber.org/zap"
)

// Reorderer writes a new display order for a collection as one batch.
type Reorderer interface {
	Reorder(ctx context.Context, collection string, ids []string) error
}

type Handler struct {
	Guard *apiguard.Guard
	Store Reorderer
	Audit *auditlog.Logger
	Cache *cache.Invalidator
	Log   *zap.Logger
}

func NewHandler(g *apiguard.Guard, store Reorderer, al *auditlog.Logger, inv *cache.Invalidator, logger *zap.Logger) *Handler {
	return &Handler{Guard: g, Store: store, Audit: al, Cache: inv, Log: logger}
}

type request struct {
	Collection string   `json:"collection"`
	OrderedIDs []string `json:"orderedIds"`
}

var errBadCollection = apierr.Validation(
	"Invalid collection. Allowed collections: " + strings.Join(models.ReorderableCollections, ", "))

// ServeReorder handles PATCH /api/reorder.
//
// Body: { "collection": "team", "orderedIds": ["…", "…"] }
// On success every listed document's order equals its index and the
// response is 200 { "message": "Order updated!" }.
func (h *Handler) ServeReorder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Guard.Require(w, r, authz.RoleEditor)
	if !ok {
		return
	}

	var req request
	if err := apiguard.DecodeJSON(w, r, &req); err != nil {
		h.Guard.Fail(w, r, err)
		return
	}
	if !models.IsReorderable(req.Collection) {
		h.Guard.Fail(w, r, errBadCollection)
		return
	}
	if len(req.OrderedIDs) == 0 {
		h.Guard.Fail(w, r, apierr.Validation("orderedIds must be a non-empty array"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "reorder "+req.Collection)
	defer cancel()

	if err := h.Store.Reorder(ctx, req.Collection, req.OrderedIDs); err != nil {
		h.Guard.Fail(w, r, storeError(err))
		return
	}

	h.Audit.Log(r.Context(), id.UID, id.Name, audit.ActionReorder,
		fmt.Sprintf("%s (%d items)", req.Collection, len(req.OrderedIDs)), "")
	h.Cache.Invalidate(r.Context(), cache.ContentNamespace(req.Collection))

	apierr.WriteJSON(w, http.StatusOK, map[string]string{"message": "Order updated!"})
}

func storeError(err error) error {
	switch {
	case errors.Is(err, contentstore.ErrUnknownCollection):
		return errBadCollection
	case errors.Is(err, contentstore.ErrInvalidID):
		return apierr.Validation("orderedIds contains an invalid id")
	case errors.Is(err, contentstore.ErrNotFound):
		return apierr.NotFound("One or more items no longer exist")
	default:
		return apierr.Internal("Failed to update order", err)
	}
}
