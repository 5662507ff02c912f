// Package routeguard is the cheap navigation filter in front of the admin
// pages.
//
// It looks only at cookies: the presence of a session cookie and the
// plain-text role hint. That makes it useful for redirects and hiding UI,
// and useless as a security boundary; every API handler re-verifies the
// session server-side before acting. It must never be mounted on /api.
package routeguard

import (
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/dalemusser/orgsite/internal/app/system/authz"
	"github.com/dalemusser/orgsite/internal/app/system/metrics"
	"go.uber.org/zap"
)

const (
	AdminPrefix    = "/admin"
	UsersPrefix    = "/admin/users"
	DashboardPath  = "/admin/dashboard"
	LoginPath      = "/login"
	RedirectParam  = "redirect"
	redirectStatus = http.StatusSeeOther
)

// Guard redirects admin navigations that obviously cannot succeed.
type Guard struct {
	SessionCookie string
	RoleCookie    string
	Log           *zap.Logger
	Metrics       *metrics.Metrics
}

// New builds a Guard for the given cookie names.
func New(sessionCookie, roleCookie string, logger *zap.Logger, m *metrics.Metrics) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{SessionCookie: sessionCookie, RoleCookie: roleCookie, Log: logger, Metrics: m}
}

// Decision is the outcome of evaluating one navigation.
type Decision struct {
	Allow    bool
	Location string // set when Allow is false
}

// Decide applies the routing rules to a request path and its cookies.
func (g *Guard) Decide(r *http.Request) Decision {
	p := cleanPath(r.URL.Path)
	if !under(p, AdminPrefix) {
		return Decision{Allow: true}
	}

	if !hasCookie(r, g.SessionCookie) {
		return Decision{Location: LoginURL(p)}
	}

	role, ok := roleHint(r, g.RoleCookie)
	if !ok || !authz.CanAccessAdmin(role) {
		return Decision{Location: "/"}
	}

	if role == authz.RoleEditor && under(p, UsersPrefix) {
		return Decision{Location: DashboardPath}
	}

	return Decision{Allow: true}
}

// Middleware wraps next with the guard.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := g.Decide(r)
		if d.Allow {
			next.ServeHTTP(w, r)
			return
		}
		g.Metrics.Redirect(destLabel(d.Location))
		g.Log.Debug("route guard redirect",
			zap.String("path", r.URL.Path),
			zap.String("location", d.Location))
		http.Redirect(w, r, d.Location, redirectStatus)
	})
}

// LoginURL returns the login page URL that returns to p after sign-in.
// Slashes stay readable: /login?redirect=/admin/dashboard.
func LoginURL(p string) string {
	v := strings.ReplaceAll(url.QueryEscape(p), "%2F", "/")
	return LoginPath + "?" + RedirectParam + "=" + v
}

func roleHint(r *http.Request, name string) (authz.Role, bool) {
	c, err := r.Cookie(name)
	if err != nil {
		return authz.RoleMember, false
	}
	return authz.ParseRole(c.Value)
}

func hasCookie(r *http.Request, name string) bool {
	c, err := r.Cookie(name)
	return err == nil && c.Value != ""
}

func under(p, prefix string) bool {
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	return path.Clean("/" + p)
}

func destLabel(loc string) string {
	switch {
	case strings.HasPrefix(loc, LoginPath):
		return "login"
	case loc == DashboardPath:
		return "dashboard"
	default:
		return "root"
	}
}
