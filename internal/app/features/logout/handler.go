// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/orgsite/internal/app/store/audit"
	"github.com/dalemusser/orgsite/internal/app/system/apierr"
	"github.com/dalemusser/orgsite/internal/app/system/apiguard"
	"github.com/dalemusser/orgsite/internal/app/system/auditlog"
	"github.com/dalemusser/orgsite/internal/app/system/auth"
	"go.uber.org/zap"
)

// SessionCloser verifies and clears the session cookies.
type SessionCloser interface {
	auth.Verifier
	Logout(w http.ResponseWriter, r *http.Request) error
}

type Handler struct {
	Guard    *apiguard.Guard
	Sessions SessionCloser
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(g *apiguard.Guard, sessions SessionCloser, al *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Guard: g, Sessions: sessions, Audit: al, Log: logger}
}

// ServeLogout handles POST /api/auth/logout. Clearing cookies always
// succeeds from the client's point of view; an audit entry is written only
// when a valid session existed.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	id, verr := h.Sessions.Verify(r)

	if err := h.Sessions.Logout(w, r); err != nil {
		h.Guard.Fail(w, r, apierr.Internal("Failed to sign out", err))
		return
	}

	if verr == nil {
		h.Audit.Log(r.Context(), id.UID, id.Name, audit.ActionLogout, id.UID, "")
	}
	apierr.WriteJSON(w, http.StatusOK, map[string]string{"message": "Signed out"})
}
