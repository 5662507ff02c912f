// internal/app/features/login/login.go
package login

import (
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/dalemusser/orgsite/internal/app/resources"
	"github.com/dalemusser/orgsite/internal/app/store/audit"
	userstore "github.com/dalemusser/orgsite/internal/app/store/users"
	"github.com/dalemusser/orgsite/internal/app/system/apierr"
	"github.com/dalemusser/orgsite/internal/app/system/apiguard"
	"github.com/dalemusser/orgsite/internal/app/system/sanitize"
	"github.com/dalemusser/orgsite/internal/app/system/timeouts"
	"github.com/dalemusser/orgsite/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
)

// dummyHash is compared against when the email is unknown so both paths
// cost one bcrypt comparison.
const dummyHash = "$2a$12$C6UzMDM.H6dfI/f/IKcEeO5pV4sA1Q2nFv0f6Pp5f9VQ0pQ3Q1x7e"

var errBadCredentials = apierr.Unauthenticated("Invalid email or password")

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// ServeLogin handles POST /api/auth/login.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := apiguard.DecodeJSON(w, r, &req); err != nil {
		h.Guard.Fail(w, r, err)
		return
	}
	email := sanitize.Sanitize(req.Email, 254)

	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r, email); !ok {
			h.Log.Warn("login rate limited", zap.String("email", email))
			h.Guard.Fail(w, r, apierr.RateLimited(reason))
			return
		}
	}

	if !sanitize.EmailValid(email) || req.Password == "" {
		h.Guard.Fail(w, r, apierr.Validation("Email and password are required"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login lookup")
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, userstore.ErrNotFound) {
		h.Guard.Fail(w, r, apierr.Internal("Sign-in failed", err))
		return
	}
	if u == nil {
		userstore.CheckPassword(dummyHash, req.Password)
		h.Guard.Fail(w, r, errBadCredentials)
		return
	}
	if !userstore.CheckPassword(u.PasswordHash, req.Password) {
		h.Guard.Fail(w, r, errBadCredentials)
		return
	}
	if u.Status == models.StatusDisabled {
		h.Guard.Fail(w, r, apierr.Unauthenticated("This account is disabled"))
		return
	}

	id, err := h.Sessions.Login(w, r, u)
	if err != nil {
		h.Guard.Fail(w, r, err)
		return
	}
	if h.Limiter != nil {
		h.Limiter.ResetEmail(email)
	}
	if err := h.Users.TouchLogin(ctx, u.ID); err != nil {
		h.Log.Warn("record last login failed", zap.Error(err), zap.String("user_id", id.UID))
	}

	h.Audit.Log(r.Context(), id.UID, id.Name, audit.ActionLogin, u.Email, "")
	apierr.WriteJSON(w, http.StatusOK, loginResponse{UID: id.UID, Name: id.Name, Role: id.Role.String()})
}

// ServePage handles GET /login: the sign-in page shell.
func (h *Handler) ServePage(w http.ResponseWriter, r *http.Request) {
	data := resources.Page{Title: "Sign in", Redirect: SafeRedirect(r.URL.Query().Get("redirect"))}
	templates.Render(w, r, "login", data)
}

const defaultRedirect = "/admin/dashboard"

// SafeRedirect keeps only local absolute paths so the login page cannot be
// used as an open redirect. Browsers drop tabs and newlines from URLs, so
// "/\t/evil.example" would become "//evil.example"; any control character
// is rejected before the path checks. Anything else becomes the dashboard.
func SafeRedirect(p string) string {
	if strings.IndexFunc(p, unicode.IsControl) >= 0 {
		return defaultRedirect
	}
	return urlutil.SafeReturn(p, "", defaultRedirect)
}
