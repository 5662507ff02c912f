// internal/app/features/content/handler.go
package content

import (
	"context"
	"errors"
	"strings"

	contentstore "github.com/dalemusser/orgsite/internal/app/store/content"
	"github.com/dalemusser/orgsite/internal/app/system/apierr"
	"github.com/dalemusser/orgsite/internal/app/system/apiguard"
	"github.com/dalemusser/orgsite/internal/app/system/auditlog"
	"github.com/dalemusser/orgsite/internal/app/system/cache"
	"github.com/dalemusser/orgsite/internal/domain/models"
	"go.uber.org/zap"
)

// Store is the content persistence used by this feature.
type Store interface {
	List(ctx context.Context, collection string) ([]models.ContentItem, error)
	Get(ctx context.Context, collection, id string) (*models.ContentItem, error)
	Create(ctx context.Context, collection string, fields map[string]any, by contentstore.Actor) (models.ContentItem, error)
	Update(ctx context.Context, collection, id string, fields map[string]any, by contentstore.Actor) error
	Delete(ctx context.Context, collection, id string) error
}

type Handler struct {
	Guard *apiguard.Guard
	Store Store
	Reads cache.Cache
	Inval *cache.Invalidator
	Audit *auditlog.Logger
	Log   *zap.Logger
}

// NewHandler wires the content API. A nil reads cache disables caching.
func NewHandler(g *apiguard.Guard, store Store, reads cache.Cache, inv *cache.Invalidator, al *auditlog.Logger, logger *zap.Logger) *Handler {
	if reads == nil {
		reads = cache.Nop{}
	}
	return &Handler{Guard: g, Store: store, Reads: reads, Inval: inv, Audit: al, Log: logger}
}

var errUnknownCollection = apierr.NotFound(
	"Unknown collection. Allowed collections: " + strings.Join(models.ReorderableCollections, ", "))

func storeError(err error, op string) error {
	switch {
	case errors.Is(err, contentstore.ErrUnknownCollection):
		return errUnknownCollection
	case errors.Is(err, contentstore.ErrInvalidID), errors.Is(err, contentstore.ErrNotFound):
		return apierr.NotFound("Item not found")
	default:
		return apierr.Internal("Failed to "+op, err)
	}
}

// label picks a human-readable name for audit targets.
func label(fields map[string]any) string {
	for _, k := range []string{"name", "title"} {
		if s, ok := fields[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
