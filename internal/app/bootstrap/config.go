// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/orgsite/internal/app/system/auditlog"
	"github.com/dalemusser/orgsite/internal/app/system/cache"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// minProdSessionKey is the shortest session key accepted in prod.
const minProdSessionKey = 32

// appConfigKeys defines the configuration keys for the org site.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: ORGSITE_MONGO_URI, ORGSITE_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "orgsite", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},

	// Sessions
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (32+ chars required in prod)"},
	{Name: "session_name", Default: "orgsite-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session lifetime (e.g., 24h, 90m)"},
	{Name: "role_cookie_name", Default: "role", Desc: "Name of the plain-text role hint cookie"},

	// Read cache
	{Name: "cache_backend", Default: "local", Desc: "Read cache backend: 'local', 'redis' or 'off'"},
	{Name: "cache_size", Default: 512, Desc: "Max entries in the local read cache"},
	{Name: "cache_ttl", Default: "5m", Desc: "Read cache entry lifetime"},
	{Name: "redis_url", Default: "redis://localhost:6379/0", Desc: "Redis URL (used when cache_backend is 'redis')"},

	// First-run setup
	{Name: "bootstrap_token", Default: "", Desc: "Token required by POST /bootstrap (blank disables the endpoint)"},

	// Audit logging
	{Name: "audit_log", Default: "all", Desc: "Audit event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Login throttling
	{Name: "login_rate_ip", Default: 10, Desc: "Login attempts allowed per IP per minute"},
	{Name: "login_rate_email", Default: 5, Desc: "Login attempts allowed per email per five minutes"},

	// Store call deadlines
	{Name: "timeout_short", Default: "5s", Desc: "Deadline for single-document store calls"},
	{Name: "timeout_medium", Default: "10s", Desc: "Deadline for list queries"},
	{Name: "timeout_long", Default: "30s", Desc: "Deadline for bulk writes such as reorder"},

	// Public site
	{Name: "site_name", Default: "Org Site", Desc: "Display name used in page titles"},
	{Name: "site_url", Default: "", Desc: "Public base URL; adds a Sitemap line to robots.txt"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// ORGSITE_* environment variables and flags, merged with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "ORGSITE", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),

		SessionKey:     appValues.String("session_key"),
		SessionName:    appValues.String("session_name"),
		SessionDomain:  appValues.String("session_domain"),
		SessionMaxAge:  appValues.Duration("session_max_age", 24*time.Hour),
		RoleCookieName: appValues.String("role_cookie_name"),

		CacheBackend: appValues.String("cache_backend"),
		CacheSize:    appValues.Int("cache_size"),
		CacheTTL:     appValues.Duration("cache_ttl", 5*time.Minute),
		RedisURL:     appValues.String("redis_url"),

		BootstrapToken: appValues.String("bootstrap_token"),
		AuditLog:       appValues.String("audit_log"),

		LoginRateIP:    appValues.Int("login_rate_ip"),
		LoginRateEmail: appValues.Int("login_rate_email"),

		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 10*time.Second),
		TimeoutLong:   appValues.Duration("timeout_long", 30*time.Second),

		SiteName: appValues.String("site_name"),
		SiteURL:  appValues.String("site_url"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// It catches configuration errors before any backend is dialed: a malformed
// MongoDB URI, a weak session key in prod, and unknown enum values.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if coreCfg != nil && coreCfg.Env == "prod" && len(appCfg.SessionKey) < minProdSessionKey {
		return fmt.Errorf("session_key must be at least %d characters in prod", minProdSessionKey)
	}

	if !cache.ValidBackend(appCfg.CacheBackend) {
		return fmt.Errorf("unknown cache_backend %q (want local, redis or off)", appCfg.CacheBackend)
	}
	if appCfg.CacheBackend == cache.BackendRedis && appCfg.RedisURL == "" {
		return fmt.Errorf("cache_backend redis requires redis_url")
	}

	switch appCfg.AuditLog {
	case "", auditlog.ModeAll, auditlog.ModeDB, auditlog.ModeLog, auditlog.ModeOff:
	default:
		return fmt.Errorf("unknown audit_log mode %q (want all, db, log or off)", appCfg.AuditLog)
	}

	return nil
}
