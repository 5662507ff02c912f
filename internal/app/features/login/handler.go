// internal/app/features/login/handler.go
package login

import (
	"context"
	"net/http"

	"github.com/dalemusser/orgsite/internal/app/system/apiguard"
	"github.com/dalemusser/orgsite/internal/app/system/auditlog"
	"github.com/dalemusser/orgsite/internal/app/system/auth"
	"github.com/dalemusser/orgsite/internal/app/system/ratelimit"
	"github.com/dalemusser/orgsite/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// UserStore is what sign-in needs from the user store.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.SiteUser, error)
	TouchLogin(ctx context.Context, id primitive.ObjectID) error
}

// SessionIssuer writes the session and role cookies for a user.
type SessionIssuer interface {
	Login(w http.ResponseWriter, r *http.Request, u *models.SiteUser) (auth.Identity, error)
}

type Handler struct {
	Guard    *apiguard.Guard
	Sessions SessionIssuer
	Users    UserStore
	Limiter  *ratelimit.LoginLimiter
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(g *apiguard.Guard, sessions SessionIssuer, users UserStore, limiter *ratelimit.LoginLimiter, al *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Guard:    g,
		Sessions: sessions,
		Users:    users,
		Limiter:  limiter,
		Audit:    al,
		Log:      logger,
	}
}
