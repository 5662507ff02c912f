package authz_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dalemusser/orgsite/internal/app/system/apierr"
	"github.com/dalemusser/orgsite/internal/app/system/authz"
)

func TestMeetsMinimum_EveryRoleMeetsMember(t *testing.T) {
	for _, r := range authz.AllRoles {
		if !authz.MeetsMinimum(r, authz.RoleMember) {
			t.Errorf("MeetsMinimum(%s, member) = false, want true", r)
		}
	}
}

func TestMeetsMinimum_Matrix(t *testing.T) {
	tests := []struct {
		role, min authz.Role
		want      bool
	}{
		{authz.RoleMember, authz.RoleEditor, false},
		{authz.RoleEditor, authz.RoleEditor, true},
		{authz.RoleEditor, authz.RoleAdmin, false},
		{authz.RoleAdmin, authz.RoleEditor, true},
		{authz.RoleAdmin, authz.RoleSuperAdmin, false},
		{authz.RoleSuperAdmin, authz.RoleAdmin, true},
	}
	for _, tt := range tests {
		if got := authz.MeetsMinimum(tt.role, tt.min); got != tt.want {
			t.Errorf("MeetsMinimum(%s, %s) = %v, want %v", tt.role, tt.min, got, tt.want)
		}
	}
}

func TestRank_StrictlyIncreasing(t *testing.T) {
	for i := 1; i < len(authz.AllRoles); i++ {
		if authz.AllRoles[i].Rank() <= authz.AllRoles[i-1].Rank() {
			t.Errorf("rank of %s not above %s", authz.AllRoles[i], authz.AllRoles[i-1])
		}
	}
	if authz.RoleMember.Rank() != 0 || authz.RoleSuperAdmin.Rank() != 3 {
		t.Errorf("unexpected rank endpoints: member=%d super_admin=%d",
			authz.RoleMember.Rank(), authz.RoleSuperAdmin.Rank())
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in     string
		want   authz.Role
		wantOK bool
	}{
		{"member", authz.RoleMember, true},
		{"editor", authz.RoleEditor, true},
		{"admin", authz.RoleAdmin, true},
		{"super_admin", authz.RoleSuperAdmin, true},
		{"Admin", authz.RoleMember, false},
		{" admin", authz.RoleMember, false},
		{"superadmin", authz.RoleMember, false},
		{"", authz.RoleMember, false},
	}
	for _, tt := range tests {
		got, ok := authz.ParseRole(tt.in)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("ParseRole(%q) = (%s, %v), want (%s, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		role    authz.Role
		admin   bool
		content bool
		users   bool
		roles   bool
	}{
		{authz.RoleMember, false, false, false, false},
		{authz.RoleEditor, true, true, false, false},
		{authz.RoleAdmin, true, true, true, true},
		{authz.RoleSuperAdmin, true, true, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			if got := authz.CanAccessAdmin(tt.role); got != tt.admin {
				t.Errorf("CanAccessAdmin = %v, want %v", got, tt.admin)
			}
			if got := authz.CanManageContent(tt.role); got != tt.content {
				t.Errorf("CanManageContent = %v, want %v", got, tt.content)
			}
			if got := authz.CanManageUsers(tt.role); got != tt.users {
				t.Errorf("CanManageUsers = %v, want %v", got, tt.users)
			}
			if got := authz.CanChangeRoles(tt.role); got != tt.roles {
				t.Errorf("CanChangeRoles = %v, want %v", got, tt.roles)
			}
		})
	}
}

func TestAssignableRoles_SuperAdmin(t *testing.T) {
	roles := authz.AssignableRoles(authz.RoleSuperAdmin)
	if len(roles) != 4 {
		t.Fatalf("expected 4 assignable roles, got %d", len(roles))
	}
	if !authz.CanAssign(authz.RoleSuperAdmin, authz.RoleSuperAdmin) {
		t.Error("super_admin should be able to assign super_admin")
	}
}

func TestAssignableRoles_Admin(t *testing.T) {
	roles := authz.AssignableRoles(authz.RoleAdmin)
	if len(roles) != 2 || roles[0] != authz.RoleMember || roles[1] != authz.RoleEditor {
		t.Fatalf("admin assignable roles: got %v, want [member editor]", roles)
	}
	if authz.CanAssign(authz.RoleAdmin, authz.RoleAdmin) {
		t.Error("admin must not assign admin")
	}
	if authz.CanAssign(authz.RoleAdmin, authz.RoleSuperAdmin) {
		t.Error("admin must not assign super_admin")
	}
}

func TestAssignableRoles_BelowAdmin(t *testing.T) {
	for _, r := range []authz.Role{authz.RoleMember, authz.RoleEditor} {
		if got := authz.AssignableRoles(r); len(got) != 0 {
			t.Errorf("%s assignable roles: got %v, want none", r, got)
		}
	}
}

func TestRequire(t *testing.T) {
	if err := authz.Require(authz.RoleEditor, authz.RoleEditor); err != nil {
		t.Errorf("editor meets editor: unexpected error %v", err)
	}

	err := authz.Require(authz.RoleMember, authz.RoleEditor)
	if err == nil {
		t.Fatal("member below editor: expected error")
	}
	if apierr.Status(err) != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", apierr.Status(err))
	}

	if err := authz.Require(authz.Role(42), authz.RoleMember); err == nil {
		t.Error("invalid role should never pass")
	}
}

func TestRequireExact(t *testing.T) {
	if err := authz.RequireExact(authz.RoleAdmin, authz.RoleAdmin, authz.RoleSuperAdmin); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := authz.RequireExact(authz.RoleEditor, authz.RoleAdmin, authz.RoleSuperAdmin); err == nil {
		t.Error("editor should not pass an admin-only check")
	}
}

func TestRole_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Role authz.Role `json:"role"`
	}{authz.RoleSuperAdmin})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"role":"super_admin"}` {
		t.Errorf("got %s", b)
	}
}
