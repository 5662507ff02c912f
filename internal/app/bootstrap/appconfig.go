// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers ports, TLS, log level and CORS. Everything
// specific to the org site lives here and is passed to every lifecycle hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64

	// Session management configuration
	SessionKey     string        // Secret key for signing session cookies
	SessionName    string        // Cookie name for sessions (default: orgsite-session)
	SessionDomain  string        // Cookie domain (blank means current host)
	SessionMaxAge  time.Duration // Session lifetime
	RoleCookieName string        // Plain-text role hint cookie read by the route guard

	// Read cache for public content lists
	CacheBackend string // "local", "redis" or "off"
	CacheSize    int
	CacheTTL     time.Duration
	RedisURL     string

	BootstrapToken string // Guards POST /bootstrap; blank disables it
	AuditLog       string // "all", "db", "log" or "off"

	LoginRateIP    int
	LoginRateEmail int

	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration

	SiteName string
	SiteURL  string // e.g., "https://example.org"
}
