// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/orgsite/internal/app/system/auditlog"
	"github.com/dalemusser/orgsite/internal/app/system/cache"
	"github.com/dalemusser/orgsite/internal/app/system/metrics"
	"github.com/dalemusser/orgsite/internal/app/system/ratelimit"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the process-wide handles built by ConnectDB and released by
// Shutdown. Nothing here is a package-level singleton.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Redis is nil unless cache_backend is "redis".
	Redis *redis.Client
	Cache cache.Cache

	Metrics      *metrics.Metrics
	Audit        *auditlog.Logger
	Invalidator  *cache.Invalidator
	LoginLimiter *ratelimit.LoginLimiter
}
