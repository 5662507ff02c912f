// internal/app/features/setup/handler.go
package setup

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"unicode/utf8"

	"github.com/dalemusser/orgsite/internal/app/features/users"
	"github.com/dalemusser/orgsite/internal/app/store/audit"
	userstore "github.com/dalemusser/orgsite/internal/app/store/users"
	"github.com/dalemusser/orgsite/internal/app/system/apierr"
	"github.com/dalemusser/orgsite/internal/app/system/apiguard"
	"github.com/dalemusser/orgsite/internal/app/system/auditlog"
	"github.com/dalemusser/orgsite/internal/app/system/authz"
	"github.com/dalemusser/orgsite/internal/app/system/sanitize"
	"github.com/dalemusser/orgsite/internal/app/system/timeouts"
	"github.com/dalemusser/orgsite/internal/domain/models"
	"go.uber.org/zap"
)

// Store is what first-run setup needs from the user store.
type Store interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, u models.SiteUser) (models.SiteUser, error)
}

type Handler struct {
	Guard *apiguard.Guard
	Store Store
	Token string
	Audit *auditlog.Logger
	Log   *zap.Logger

	// mu serializes bootstrap attempts inside this process; the unique
	// email index covers concurrent processes.
	mu sync.Mutex
}

// NewHandler builds the bootstrap handler. An empty token disables it.
func NewHandler(g *apiguard.Guard, store Store, token string, al *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Guard: g, Store: store, Token: token, Audit: al, Log: logger}
}

type request struct {
	Token    string `json:"token"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// ServeBootstrap handles POST /bootstrap: creates the first super_admin
// while no users exist.
func (h *Handler) ServeBootstrap(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := apiguard.DecodeJSON(w, r, &req); err != nil {
		h.Guard.Fail(w, r, err)
		return
	}

	if h.Token == "" || subtle.ConstantTimeCompare([]byte(req.Token), []byte(h.Token)) != 1 {
		h.Log.Warn("bootstrap rejected: bad token")
		h.Guard.Fail(w, r, apierr.Forbidden("Insufficient permission: invalid bootstrap token"))
		return
	}

	email := sanitize.Sanitize(req.Email, 254)
	name := sanitize.Sanitize(req.Name, 200)
	if !sanitize.EmailValid(email) {
		h.Guard.Fail(w, r, apierr.Validation("A valid email address is required"))
		return
	}
	if utf8.RuneCountInString(req.Password) < users.MinPasswordLen {
		h.Guard.Fail(w, r, apierr.Validation(fmt.Sprintf("Password must be at least %d characters", users.MinPasswordLen)))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "bootstrap")
	defer cancel()

	n, err := h.Store.Count(ctx)
	if err != nil {
		h.Guard.Fail(w, r, apierr.Internal("Bootstrap failed", err))
		return
	}
	if n > 0 {
		h.Guard.Fail(w, r, apierr.Conflict("Site is already set up"))
		return
	}

	hash, err := userstore.HashPassword(req.Password)
	if err != nil {
		h.Guard.Fail(w, r, apierr.Internal("Bootstrap failed", err))
		return
	}
	u, err := h.Store.Create(ctx, models.SiteUser{
		Email:        email,
		Name:         name,
		Role:         authz.RoleSuperAdmin.String(),
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			h.Guard.Fail(w, r, apierr.Conflict("Site is already set up"))
			return
		}
		h.Guard.Fail(w, r, apierr.Internal("Bootstrap failed", err))
		return
	}

	h.Log.Info("bootstrap: first super_admin created", zap.String("email", u.Email))
	h.Audit.Log(r.Context(), u.ID.Hex(), u.Name, audit.ActionBootstrap, u.Email, "role=super_admin")
	apierr.WriteJSON(w, http.StatusCreated, map[string]string{"id": u.ID.Hex()})
}
