package routeguard_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/orgsite/internal/app/system/routeguard"
	"github.com/dalemusser/orgsite/internal/testutil"
)

func newGuard() *routeguard.Guard {
	return routeguard.New("session", "role", nil, nil)
}

func request(path string, cookies map[string]string) *http.Request {
	req := httptest.NewRequest("GET", path, nil)
	for k, v := range cookies {
		req.AddCookie(&http.Cookie{Name: k, Value: v})
	}
	return req
}

func serve(g *routeguard.Guard, req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	g.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("page"))
	})).ServeHTTP(rec, req)
	return rec
}

func TestGuard_NonAdminPassesThrough(t *testing.T) {
	for _, p := range []string{"/", "/about", "/administrator", "/login", "/api/reorder"} {
		rec := serve(newGuard(), request(p, nil))
		rec.AssertStatus(t, http.StatusOK)
	}
}

func TestGuard_NoSession_RedirectsToLogin(t *testing.T) {
	rec := serve(newGuard(), request("/admin/dashboard", nil))
	rec.AssertRedirect(t, "/login?redirect=/admin/dashboard")
}

func TestGuard_NoSession_AdminRoot(t *testing.T) {
	rec := serve(newGuard(), request("/admin", nil))
	rec.AssertRedirect(t, "/login?redirect=/admin")
}

func TestGuard_RoleMissingOrInsufficient_RedirectsToRoot(t *testing.T) {
	cases := []map[string]string{
		{"session": "abc"},
		{"session": "abc", "role": "member"},
		{"session": "abc", "role": "Admin"},
		{"session": "abc", "role": "root"},
	}
	for _, c := range cases {
		rec := serve(newGuard(), request("/admin/dashboard", c))
		rec.AssertRedirect(t, "/")
	}
}

func TestGuard_EditorBlockedFromUsers(t *testing.T) {
	for _, p := range []string{"/admin/users", "/admin/users/123", "/admin//users"} {
		rec := serve(newGuard(), request(p, map[string]string{"session": "abc", "role": "editor"}))
		rec.AssertRedirect(t, "/admin/dashboard")
	}
}

func TestGuard_EditorAllowedElsewhere(t *testing.T) {
	rec := serve(newGuard(), request("/admin/content/team", map[string]string{"session": "abc", "role": "editor"}))
	rec.AssertStatus(t, http.StatusOK)
}

func TestGuard_AdminAllowedIntoUsers(t *testing.T) {
	for _, role := range []string{"admin", "super_admin"} {
		rec := serve(newGuard(), request("/admin/users", map[string]string{"session": "abc", "role": role}))
		rec.AssertStatus(t, http.StatusOK)
		rec.AssertContains(t, "page")
	}
}

func TestLoginURL_EscapesQueryCharacters(t *testing.T) {
	got := routeguard.LoginURL("/admin/a b&c")
	want := "/login?redirect=/admin/a+b%26c"
	if got != want {
		t.Errorf("LoginURL: got %q, want %q", got, want)
	}
}
