// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	auditlogfeature "github.com/dalemusser/orgsite/internal/app/features/auditlog"
	contentfeature "github.com/dalemusser/orgsite/internal/app/features/content"
	dashboardfeature "github.com/dalemusser/orgsite/internal/app/features/dashboard"
	healthfeature "github.com/dalemusser/orgsite/internal/app/features/health"
	homefeature "github.com/dalemusser/orgsite/internal/app/features/home"
	loginfeature "github.com/dalemusser/orgsite/internal/app/features/login"
	logoutfeature "github.com/dalemusser/orgsite/internal/app/features/logout"
	reorderfeature "github.com/dalemusser/orgsite/internal/app/features/reorder"
	robotsfeature "github.com/dalemusser/orgsite/internal/app/features/robots"
	setupfeature "github.com/dalemusser/orgsite/internal/app/features/setup"
	usersfeature "github.com/dalemusser/orgsite/internal/app/features/users"
	auditstore "github.com/dalemusser/orgsite/internal/app/store/audit"
	contentstore "github.com/dalemusser/orgsite/internal/app/store/content"
	userstore "github.com/dalemusser/orgsite/internal/app/store/users"
	"github.com/dalemusser/orgsite/internal/app/system/apiguard"
	"github.com/dalemusser/orgsite/internal/app/system/auth"
	"github.com/dalemusser/orgsite/internal/app/system/routeguard"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// Layout:
//   - /health, /robots.txt, /metrics: operational endpoints
//   - /login, /api/auth/*: sign-in and sign-out
//   - /bootstrap: first-run super admin creation
//   - /api/*: JSON endpoints, each verifying the session server-side
//   - /admin/*: page shells behind the cookie route guard
//   - /: public home page
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain,
		appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	sessionMgr.SetRoleCookieName(appCfg.RoleCookieName)

	db := deps.MongoDatabase
	users := userstore.New(db)
	content := contentstore.New(db, logger)
	audits := auditstore.New(db)

	// Role changes and disabled accounts take effect on the next request.
	sessionMgr.SetUserFetcher(users)

	guard := apiguard.New(sessionMgr, logger, deps.Metrics)
	pageGuard := routeguard.New(sessionMgr.SessionCookieName(), sessionMgr.RoleCookieName(), logger, deps.Metrics)

	// Compile the shared layout and every feature's page set.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	// Operational endpoints
	var cachePing func(ctx context.Context) error
	if deps.Redis != nil {
		cachePing = func(ctx context.Context) error { return deps.Redis.Ping(ctx).Err() }
	}
	healthHandler := healthfeature.NewHandler(deps.MongoClient, cachePing, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	robotsHandler := robotsfeature.NewHandler(appCfg.SiteURL)
	r.Get("/robots.txt", robotsHandler.Serve)

	r.Handle("/metrics", deps.Metrics.Handler())

	// Authentication
	loginHandler := loginfeature.NewHandler(guard, sessionMgr, users, deps.LoginLimiter, deps.Audit, logger)
	r.Mount("/login", loginfeature.PageRoutes(loginHandler))
	r.Mount("/api/auth/login", loginfeature.APIRoutes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(guard, sessionMgr, deps.Audit, logger)
	r.Mount("/api/auth/logout", logoutfeature.Routes(logoutHandler))

	setupHandler := setupfeature.NewHandler(guard, users, appCfg.BootstrapToken, deps.Audit, logger)
	r.Mount("/bootstrap", setupfeature.Routes(setupHandler))

	// JSON API
	reorderHandler := reorderfeature.NewHandler(guard, content, deps.Audit, deps.Invalidator, logger)
	r.Mount("/api/reorder", reorderfeature.Routes(reorderHandler))

	auditHandler := auditlogfeature.NewHandler(guard, audits, logger)
	r.Mount("/api/audit", auditlogfeature.Routes(auditHandler))

	contentHandler := contentfeature.NewHandler(guard, content, deps.Cache, deps.Invalidator, deps.Audit, logger)
	r.Mount("/api/content", contentfeature.Routes(contentHandler))

	usersHandler := usersfeature.NewHandler(guard, users, deps.Audit, logger)
	r.Mount("/api/users", usersfeature.Routes(usersHandler))

	// Admin pages. The route guard only filters on cookies; each page
	// verifies the session before rendering.
	dashboardHandler := dashboardfeature.NewHandler(sessionMgr, logger)
	r.Mount(routeguard.AdminPrefix, dashboardfeature.Routes(dashboardHandler, pageGuard.Middleware))

	// Public pages
	homeHandler := homefeature.NewHandler(appCfg.SiteName, logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	return r, nil
}
