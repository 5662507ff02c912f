package users_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/orgsite/internal/app/features/users"
	"github.com/dalemusser/orgsite/internal/app/store/audit"
	userstore "github.com/dalemusser/orgsite/internal/app/store/users"
	"github.com/dalemusser/orgsite/internal/app/system/apiguard"
	"github.com/dalemusser/orgsite/internal/app/system/auditlog"
	"github.com/dalemusser/orgsite/internal/app/system/auth"
	"github.com/dalemusser/orgsite/internal/app/system/authz"
	"github.com/dalemusser/orgsite/internal/domain/models"
	"github.com/dalemusser/orgsite/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	userstore.BcryptCost = bcrypt.MinCost
}

type env struct {
	router http.Handler
	store  *testutil.UserStore
	audits *testutil.AuditStore
	audit  *auditlog.Logger
	actor  auth.Identity
}

func newEnv(role authz.Role) *env {
	e := &env{store: testutil.NewUserStore(), audits: testutil.NewAuditStore()}
	me := e.store.Add(models.SiteUser{Email: "me@example.com", Name: "Me", Role: role.String()})
	e.actor = auth.Identity{UID: me.ID.Hex(), Name: me.Name, Role: role}
	e.audit = auditlog.New(e.audits, zap.NewNop(), auditlog.ModeDB, nil)
	g := apiguard.New(testutil.Verifier{Identity: e.actor}, nil, nil)
	e.router = users.Routes(users.NewHandler(g, e.store, e.audit, zap.NewNop()))
	return e
}

func (e *env) do(req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, req)
	e.audit.Wait()
	return rec
}

func (e *env) addUser(role string) string {
	u := e.store.Add(models.SiteUser{Email: role + "@example.com", Name: role, Role: role})
	return u.ID.Hex()
}

func (e *env) roleOf(t *testing.T, id string) string {
	t.Helper()
	u, err := e.store.GetByID(t.Context(), id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	return u.Role
}

func TestList_RequiresAdmin(t *testing.T) {
	rec := newEnv(authz.RoleEditor).do(testutil.NewRequest("GET", "/"))
	rec.AssertStatus(t, http.StatusForbidden)

	e := newEnv(authz.RoleAdmin)
	e.addUser("member")
	rec = e.do(testutil.NewRequest("GET", "/"))
	rec.AssertStatus(t, http.StatusOK)
	var list []map[string]any
	rec.DecodeJSON(t, &list)
	if len(list) != 2 {
		t.Errorf("users: got %d, want 2", len(list))
	}
	if _, leaked := list[0]["password_hash"]; leaked {
		t.Error("password hash must not be serialized")
	}
}

func TestAssignableRoles(t *testing.T) {
	tests := []struct {
		role authz.Role
		want []string
	}{
		{authz.RoleAdmin, []string{"member", "editor"}},
		{authz.RoleSuperAdmin, []string{"member", "editor", "admin", "super_admin"}},
	}
	for _, tt := range tests {
		rec := newEnv(tt.role).do(testutil.NewRequest("GET", "/assignable-roles"))
		rec.AssertStatus(t, http.StatusOK)
		var out struct{ Roles []string }
		rec.DecodeJSON(t, &out)
		if len(out.Roles) != len(tt.want) {
			t.Fatalf("%s: got %v, want %v", tt.role, out.Roles, tt.want)
		}
		for i := range tt.want {
			if out.Roles[i] != tt.want[i] {
				t.Errorf("%s: got %v, want %v", tt.role, out.Roles, tt.want)
			}
		}
	}
}

func TestCreate_AdminCanCreateEditor(t *testing.T) {
	e := newEnv(authz.RoleAdmin)

	rec := e.do(testutil.NewJSONRequest("POST", "/", map[string]string{
		"email": "new@example.com", "name": "<i>New</i> Person", "password": "long-enough", "role": "editor",
	}))

	rec.AssertStatus(t, http.StatusCreated)
	u, err := e.store.GetByEmail(t.Context(), "new@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if u.Name != "New Person" || u.Role != "editor" {
		t.Errorf("stored user: %+v", u)
	}
	if !userstore.CheckPassword(u.PasswordHash, "long-enough") {
		t.Error("password should be stored as a bcrypt hash")
	}
	if entries := e.audits.Entries(); len(entries) != 1 || entries[0].Action != audit.ActionUserCreate {
		t.Errorf("audit: %+v", entries)
	}
}

func TestCreate_AdminCannotCreateAdmin(t *testing.T) {
	e := newEnv(authz.RoleAdmin)
	for _, role := range []string{"admin", "super_admin"} {
		rec := e.do(testutil.NewJSONRequest("POST", "/", map[string]string{
			"email": role + "x@example.com", "password": "long-enough", "role": role,
		}))
		rec.AssertStatus(t, http.StatusForbidden)
	}
}

func TestCreate_Validation(t *testing.T) {
	e := newEnv(authz.RoleSuperAdmin)
	bodies := []map[string]string{
		{"email": "bad", "password": "long-enough", "role": "member"},
		{"email": "a@example.com", "password": "short", "role": "member"},
		{"email": "a@example.com", "password": "long-enough", "role": "Admin"},
	}
	for _, b := range bodies {
		rec := e.do(testutil.NewJSONRequest("POST", "/", b))
		rec.AssertStatus(t, http.StatusBadRequest)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	e := newEnv(authz.RoleSuperAdmin)
	rec := e.do(testutil.NewJSONRequest("POST", "/", map[string]string{
		"email": "ME@example.com", "password": "long-enough", "role": "member",
	}))
	rec.AssertStatus(t, http.StatusConflict)
}

func TestChangeRole(t *testing.T) {
	tests := []struct {
		name   string
		actor  authz.Role
		target string
		to     string
		status int
	}{
		{"admin promotes member to editor", authz.RoleAdmin, "member", "editor", http.StatusOK},
		{"admin cannot grant admin", authz.RoleAdmin, "member", "admin", http.StatusForbidden},
		{"admin cannot grant super_admin", authz.RoleAdmin, "editor", "super_admin", http.StatusForbidden},
		{"admin cannot demote admin", authz.RoleAdmin, "admin", "member", http.StatusForbidden},
		{"admin cannot demote super_admin", authz.RoleAdmin, "super_admin", "editor", http.StatusForbidden},
		{"super_admin grants admin", authz.RoleSuperAdmin, "member", "admin", http.StatusOK},
		{"super_admin demotes admin", authz.RoleSuperAdmin, "admin", "member", http.StatusOK},
		{"editor cannot change roles", authz.RoleEditor, "member", "editor", http.StatusForbidden},
		{"unknown role", authz.RoleSuperAdmin, "member", "owner", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(tt.actor)
			id := e.addUser(tt.target)

			rec := e.do(testutil.NewJSONRequest("PATCH", "/"+id+"/role", map[string]string{"role": tt.to}))

			rec.AssertStatus(t, tt.status)
			want := tt.target
			if tt.status == http.StatusOK {
				want = tt.to
			}
			if got := e.roleOf(t, id); got != want {
				t.Errorf("stored role: got %q, want %q", got, want)
			}
		})
	}
}

func TestChangeRole_Self(t *testing.T) {
	e := newEnv(authz.RoleSuperAdmin)

	rec := e.do(testutil.NewJSONRequest("PATCH", "/"+e.actor.UID+"/role", map[string]string{"role": "member"}))

	rec.AssertStatus(t, http.StatusForbidden)
	if got := e.roleOf(t, e.actor.UID); got != "super_admin" {
		t.Errorf("own role changed to %q", got)
	}
}

func TestChangeRole_AuditsChange(t *testing.T) {
	e := newEnv(authz.RoleAdmin)
	id := e.addUser("member")

	e.do(testutil.NewJSONRequest("PATCH", "/"+id+"/role", map[string]string{"role": "editor"}))

	entries := e.audits.Entries()
	if len(entries) != 1 {
		t.Fatalf("audit entries: got %d", len(entries))
	}
	if entries[0].Action != audit.ActionRoleChange || entries[0].Details != "member -> editor" || entries[0].Target != "member@example.com" {
		t.Errorf("audit entry: %+v", entries[0])
	}
}

func TestChangeRole_UnknownUser(t *testing.T) {
	e := newEnv(authz.RoleSuperAdmin)
	rec := e.do(testutil.NewJSONRequest("PATCH", "/0123456789abcdef01234567/role", map[string]string{"role": "editor"}))
	rec.AssertStatus(t, http.StatusNotFound)
}
