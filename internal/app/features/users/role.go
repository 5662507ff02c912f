// internal/app/features/users/role.go
package users

import (
	"net/http"

	"github.com/dalemusser/orgsite/internal/app/store/audit"
	"github.com/dalemusser/orgsite/internal/app/system/apierr"
	"github.com/dalemusser/orgsite/internal/app/system/apiguard"
	"github.com/dalemusser/orgsite/internal/app/system/auth"
	"github.com/dalemusser/orgsite/internal/app/system/authz"
	"github.com/dalemusser/orgsite/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// ServeChangeRole handles PATCH /api/users/{id}/role.
//
// This is the only place a stored role changes, so every rule lives here:
//   - the caller must hold exactly admin or super_admin
//   - nobody changes their own role
//   - an admin cannot touch another admin or a super_admin
//   - the new role must be in the caller's assignable set
func (h *Handler) ServeChangeRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Guard.Require(w, r, authz.RoleAdmin)
	if !ok {
		return
	}
	if !authz.CanChangeRoles(id.Role) {
		h.Guard.Fail(w, r, apierr.Forbidden("Insufficient permission to change roles"))
		return
	}

	targetID := chi.URLParam(r, "id")
	var req roleRequest
	if err := apiguard.DecodeJSON(w, r, &req); err != nil {
		h.Guard.Fail(w, r, err)
		return
	}
	newRole, ok := authz.ParseRole(req.Role)
	if !ok {
		h.Guard.Fail(w, r, apierr.Validation("Unknown role"))
		return
	}
	if targetID == id.UID {
		h.Guard.Fail(w, r, apierr.Forbidden("Insufficient permission: you cannot change your own role"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "user role change")
	defer cancel()

	target, err := h.Store.GetByID(ctx, targetID)
	if err != nil {
		h.Guard.Fail(w, r, storeError(err, "load user"))
		return
	}
	oldRole, _ := authz.ParseRole(target.Role)

	if err := checkRoleChange(id, oldRole, newRole); err != nil {
		h.Guard.Fail(w, r, err)
		return
	}

	if err := h.Store.UpdateRole(ctx, targetID, newRole); err != nil {
		h.Guard.Fail(w, r, storeError(err, "update role"))
		return
	}

	h.Audit.Log(r.Context(), id.UID, id.Name, audit.ActionRoleChange, target.Email,
		oldRole.String()+" -> "+newRole.String())
	apierr.WriteJSON(w, http.StatusOK, map[string]string{"message": "Role updated!"})
}

// checkRoleChange enforces peer protection and the assignable set. An
// unparseable stored role ranks as member.
func checkRoleChange(actor auth.Identity, from, to authz.Role) error {
	if actor.Role != authz.RoleSuperAdmin && authz.MeetsMinimum(from, authz.RoleAdmin) {
		return apierr.Forbidden("Insufficient permission: admins cannot modify other admins")
	}
	if !authz.CanAssign(actor.Role, to) {
		return apierr.Forbidden("Insufficient permission: cannot assign role " + to.String())
	}
	return nil
}
