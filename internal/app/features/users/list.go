// internal/app/features/users/list.go
package users

import (
	"net/http"

	"github.com/dalemusser/orgsite/internal/app/system/apierr"
	"github.com/dalemusser/orgsite/internal/app/system/authz"
	"github.com/dalemusser/orgsite/internal/app/system/timeouts"
)

// ServeList handles GET /api/users. Admin or above.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.Guard.Require(w, r, authz.RoleAdmin); !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "user list")
	defer cancel()

	list, err := h.Store.List(ctx)
	if err != nil {
		h.Guard.Fail(w, r, storeError(err, "load users"))
		return
	}
	apierr.WriteJSON(w, http.StatusOK, list)
}

// ServeAssignableRoles handles GET /api/users/assignable-roles: the roles
// the caller may give to others.
func (h *Handler) ServeAssignableRoles(w http.ResponseWriter, r *http.Request) {
	id, ok := h.Guard.Require(w, r, authz.RoleAdmin)
	if !ok {
		return
	}
	apierr.WriteJSON(w, http.StatusOK, rolesResponse{Roles: authz.AssignableRoles(id.Role)})
}
