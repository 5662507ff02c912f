package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/orgsite/internal/app/system/apierr"
	"github.com/dalemusser/orgsite/internal/app/system/authz"
	"github.com/dalemusser/orgsite/internal/domain/models"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	DefaultSessionName    = "session"
	DefaultRoleCookieName = "role"

	uidKey      = "uid"
	nameKey     = "name"
	roleKey     = "role"
	sidKey      = "sid"
	issuedAtKey = "issued_at"
)

// Identity is the authoritative caller of a request, produced only by
// Verify. It never comes from client-controlled headers or the role cookie.
type Identity struct {
	UID       string     `json:"uid"`
	Name      string     `json:"name"`
	Role      authz.Role `json:"role"`
	SessionID string     `json:"-"`
}

// Verifier authenticates a request.
type Verifier interface {
	Verify(r *http.Request) (Identity, error)
}

// UserFetcher loads the current user record for a verified session so role
// changes and disabled accounts take effect on the next request.
// It returns (nil, nil) when the user does not exist.
type UserFetcher interface {
	FetchUser(ctx context.Context, id string) (*models.SiteUser, error)
}

/*─────────────────────────────────────────────────────────────────────────────*
| SessionManager                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager issues and verifies the session cookie pair:
//   - the session cookie, HMAC-signed by gorilla/securecookie, carrying
//     uid, name, role claim, session id and issue time;
//   - the role hint cookie, plain text, read only by the route guard.
type SessionManager struct {
	store      *sessions.CookieStore
	name       string
	roleCookie string
	maxAge     time.Duration
	secure     bool
	domain     string
	fetcher    UserFetcher
	log        *zap.Logger
	now        func() time.Time
}

// NewSessionManager builds the cookie store. sessionKey signs the session
// cookie and must be at least 32 bytes for production use.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = DefaultSessionName
	}
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(int(maxAge.Seconds()))

	logger.Info("session manager initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge))

	return &SessionManager{
		store:      store,
		name:       name,
		roleCookie: DefaultRoleCookieName,
		maxAge:     maxAge,
		secure:     secure,
		domain:     domain,
		log:        logger,
		now:        time.Now,
	}, nil
}

// SetUserFetcher enables per-request refresh of name and role from the
// user store.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) {
	sm.fetcher = f
}

// SetRoleCookieName overrides the role hint cookie name.
func (sm *SessionManager) SetRoleCookieName(name string) {
	if name != "" {
		sm.roleCookie = name
	}
}

// SetClock replaces the time source used for session age checks.
func (sm *SessionManager) SetClock(now func() time.Time) {
	if now != nil {
		sm.now = now
	}
}

// SessionCookieName returns the session cookie name.
func (sm *SessionManager) SessionCookieName() string { return sm.name }

// RoleCookieName returns the role hint cookie name.
func (sm *SessionManager) RoleCookieName() string { return sm.roleCookie }

// Verify validates the session cookie and returns the caller's identity.
// Any missing, tampered, expired or orphaned session is Unauthenticated.
func (sm *SessionManager) Verify(r *http.Request) (Identity, error) {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil || sess.IsNew {
		return Identity{}, apierr.Unauthenticated("Not authenticated")
	}

	uid := getString(sess, uidKey)
	issued, _ := sess.Values[issuedAtKey].(int64)
	if uid == "" || issued == 0 {
		return Identity{}, apierr.Unauthenticated("Not authenticated")
	}
	if sm.now().After(time.Unix(issued, 0).Add(sm.maxAge)) {
		return Identity{}, apierr.Unauthenticated("Session expired; not authenticated")
	}

	id := Identity{
		UID:       uid,
		Name:      getString(sess, nameKey),
		SessionID: getString(sess, sidKey),
	}
	roleName := getString(sess, roleKey)

	if sm.fetcher != nil {
		u, err := sm.fetcher.FetchUser(r.Context(), uid)
		if err != nil {
			return Identity{}, apierr.Internal("", fmt.Errorf("fetch session user: %w", err))
		}
		if u == nil || u.Status == models.StatusDisabled {
			return Identity{}, apierr.Unauthenticated("Account unavailable; not authenticated")
		}
		id.Name = u.Name
		roleName = u.Role
	}

	role, ok := authz.ParseRole(roleName)
	if !ok {
		sm.log.Warn("session carries unrecognized role",
			zap.String("uid", uid), zap.String("role", roleName))
		return Identity{}, apierr.Forbidden("Insufficient permission: unrecognized role")
	}
	id.Role = role
	return id, nil
}

// Authorize verifies the request and requires at least min. It is the
// first statement of every mutating handler.
func Authorize(v Verifier, r *http.Request, min authz.Role) (Identity, error) {
	id, err := v.Verify(r)
	if err != nil {
		return Identity{}, err
	}
	if err := authz.Require(id.Role, min); err != nil {
		return Identity{}, err
	}
	return id, nil
}

// Login writes a fresh session for u and the matching role hint cookie.
func (sm *SessionManager) Login(w http.ResponseWriter, r *http.Request, u *models.SiteUser) (Identity, error) {
	role, ok := authz.ParseRole(u.Role)
	if !ok {
		return Identity{}, apierr.Forbidden("Insufficient permission: unrecognized role")
	}

	sess, _ := sm.store.New(r, sm.name)
	sid := uuid.NewString()
	sess.Values[uidKey] = u.ID.Hex()
	sess.Values[nameKey] = u.Name
	sess.Values[roleKey] = u.Role
	sess.Values[sidKey] = sid
	sess.Values[issuedAtKey] = sm.now().Unix()

	if err := sess.Save(r, w); err != nil {
		return Identity{}, apierr.Internal("", fmt.Errorf("save session: %w", err))
	}
	sm.setRoleCookie(w, u.Role, int(sm.maxAge.Seconds()))

	return Identity{UID: u.ID.Hex(), Name: u.Name, Role: role, SessionID: sid}, nil
}

// Logout expires both cookies.
func (sm *SessionManager) Logout(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Options = &sessions.Options{
		Domain:   sm.domain,
		Path:     "/",
		MaxAge:   -1,
		Secure:   sm.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	sess.Values = map[any]any{}
	err := sess.Save(r, w)
	sm.setRoleCookie(w, "", -1)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (sm *SessionManager) setRoleCookie(w http.ResponseWriter, role string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     sm.roleCookie,
		Value:    role,
		Domain:   sm.domain,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   sm.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}
