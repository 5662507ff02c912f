// internal/app/features/users/new.go
package users

import (
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/dalemusser/orgsite/internal/app/store/audit"
	userstore "github.com/dalemusser/orgsite/internal/app/store/users"
	"github.com/dalemusser/orgsite/internal/app/system/apierr"
	"github.com/dalemusser/orgsite/internal/app/system/apiguard"
	"github.com/dalemusser/orgsite/internal/app/system/authz"
	"github.com/dalemusser/orgsite/internal/app/system/sanitize"
	"github.com/dalemusser/orgsite/internal/app/system/timeouts"
	"github.com/dalemusser/orgsite/internal/domain/models"
)

// ServeCreate handles POST /api/users. Admin or above, and the new role
// must be one the caller may assign.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Guard.Require(w, r, authz.RoleAdmin)
	if !ok {
		return
	}

	var req createRequest
	if err := apiguard.DecodeJSON(w, r, &req); err != nil {
		h.Guard.Fail(w, r, err)
		return
	}
	email := sanitize.Sanitize(req.Email, 254)
	name := sanitize.Sanitize(req.Name, 200)

	if !sanitize.EmailValid(email) {
		h.Guard.Fail(w, r, apierr.Validation("A valid email address is required"))
		return
	}
	if utf8.RuneCountInString(req.Password) < MinPasswordLen {
		h.Guard.Fail(w, r, apierr.Validation(fmt.Sprintf("Password must be at least %d characters", MinPasswordLen)))
		return
	}
	role, ok := authz.ParseRole(req.Role)
	if !ok {
		h.Guard.Fail(w, r, apierr.Validation("Unknown role"))
		return
	}
	if !authz.CanAssign(id.Role, role) {
		h.Guard.Fail(w, r, apierr.Forbidden("Insufficient permission: cannot assign role "+role.String()))
		return
	}

	hash, err := userstore.HashPassword(req.Password)
	if err != nil {
		h.Guard.Fail(w, r, apierr.Internal("Failed to create user", err))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "user create")
	defer cancel()

	u, err := h.Store.Create(ctx, models.SiteUser{
		Email:        email,
		Name:         name,
		Role:         role.String(),
		PasswordHash: hash,
	})
	if err != nil {
		h.Guard.Fail(w, r, storeError(err, "create user"))
		return
	}

	h.Audit.Log(r.Context(), id.UID, id.Name, audit.ActionUserCreate, u.Email, "role="+role.String())
	apierr.WriteJSON(w, http.StatusCreated, map[string]string{"id": u.ID.Hex()})
}
