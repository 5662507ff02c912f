// internal/app/features/users/handler.go
package users

import (
	"context"
	"errors"

	userstore "github.com/dalemusser/orgsite/internal/app/store/users"
	"github.com/dalemusser/orgsite/internal/app/system/apierr"
	"github.com/dalemusser/orgsite/internal/app/system/apiguard"
	"github.com/dalemusser/orgsite/internal/app/system/auditlog"
	"github.com/dalemusser/orgsite/internal/app/system/authz"
	"github.com/dalemusser/orgsite/internal/domain/models"
	"go.uber.org/zap"
)

// MinPasswordLen is the shortest password accepted for new accounts.
const MinPasswordLen = 8

// Store is the user persistence used by this feature.
type Store interface {
	List(ctx context.Context) ([]models.SiteUser, error)
	GetByID(ctx context.Context, id string) (*models.SiteUser, error)
	Create(ctx context.Context, u models.SiteUser) (models.SiteUser, error)
	UpdateRole(ctx context.Context, id string, role authz.Role) error
}

type Handler struct {
	Guard *apiguard.Guard
	Store Store
	Audit *auditlog.Logger
	Log   *zap.Logger
}

func NewHandler(g *apiguard.Guard, store Store, al *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Guard: g, Store: store, Audit: al, Log: logger}
}

func storeError(err error, op string) error {
	switch {
	case errors.Is(err, userstore.ErrNotFound), errors.Is(err, userstore.ErrInvalidID):
		return apierr.NotFound("User not found")
	case errors.Is(err, userstore.ErrDuplicateEmail):
		return apierr.Conflict("A user with this email already exists")
	default:
		return apierr.Internal("Failed to "+op, err)
	}
}
