// internal/app/system/authz/roles.go
package authz

// Role is a position in the fixed privilege ladder. Higher values grant more.
// Always compare roles through Rank/MeetsMinimum, never by their names.
type Role int

const (
	RoleMember Role = iota
	RoleEditor
	RoleAdmin
	RoleSuperAdmin
)

// roleNames is the canonical wire/storage spelling of each role.
var roleNames = [...]string{
	RoleMember:     "member",
	RoleEditor:     "editor",
	RoleAdmin:      "admin",
	RoleSuperAdmin: "super_admin",
}

// AllRoles lists every role from least to most privileged.
var AllRoles = []Role{RoleMember, RoleEditor, RoleAdmin, RoleSuperAdmin}

// String returns the stored name of the role ("member", "editor", ...).
func (r Role) String() string {
	if !r.Valid() {
		return "unknown"
	}
	return roleNames[r]
}

// Valid reports whether r is one of the four defined roles.
func (r Role) Valid() bool {
	return r >= RoleMember && r <= RoleSuperAdmin
}

// Rank returns the numeric permission level of r.
func (r Role) Rank() int {
	return int(r)
}

// MarshalText encodes the role by name so JSON carries "admin", not 2.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// ParseRole maps a stored role name to a Role. Matching is exact: "Admin"
// or " admin" are rejected so typos never silently grant or deny access.
func ParseRole(s string) (Role, bool) {
	for i, name := range roleNames {
		if s == name {
			return Role(i), true
		}
	}
	return RoleMember, false
}

// MeetsMinimum reports whether role is at least as privileged as min.
func MeetsMinimum(role, min Role) bool {
	return role.Rank() >= min.Rank()
}

// CanAccessAdmin reports whether role may enter the admin panel.
func CanAccessAdmin(role Role) bool { return MeetsMinimum(role, RoleEditor) }

// CanManageContent reports whether role may edit site content.
func CanManageContent(role Role) bool { return MeetsMinimum(role, RoleEditor) }

// CanManageUsers reports whether role may list and create users.
func CanManageUsers(role Role) bool { return MeetsMinimum(role, RoleAdmin) }

// CanChangeRoles is an exact-role check: only admin and super_admin.
func CanChangeRoles(role Role) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}

// AssignableRoles returns the roles an actor holding role may grant.
// A super_admin may assign anything; an admin only member or editor.
// Everyone else gets an empty list.
func AssignableRoles(role Role) []Role {
	switch role {
	case RoleSuperAdmin:
		return []Role{RoleMember, RoleEditor, RoleAdmin, RoleSuperAdmin}
	case RoleAdmin:
		return []Role{RoleMember, RoleEditor}
	default:
		return nil
	}
}

// CanAssign reports whether actor may grant target.
func CanAssign(actor, target Role) bool {
	for _, r := range AssignableRoles(actor) {
		if r == target {
			return true
		}
	}
	return false
}
