// internal/app/bootstrap/connect.go
package bootstrap

import (
	"context"
	"fmt"

	auditstore "github.com/dalemusser/orgsite/internal/app/store/audit"
	"github.com/dalemusser/orgsite/internal/app/system/auditlog"
	"github.com/dalemusser/orgsite/internal/app/system/cache"
	"github.com/dalemusser/orgsite/internal/app/system/metrics"
	"github.com/dalemusser/orgsite/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const redisKeyPrefix = "orgsite"

// ConnectDB dials MongoDB (and Redis when configured) and assembles the
// process-wide dependencies shared by every handler.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().ApplyURI(appCfg.MongoURI)
	if appCfg.MongoMaxPoolSize > 0 {
		opts.SetMaxPoolSize(appCfg.MongoMaxPoolSize)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}
	db := client.Database(appCfg.MongoDatabase)
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		Metrics:       metrics.New(),
	}

	c, rdb, err := buildCache(ctx, appCfg, logger)
	if err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, err
	}
	deps.Cache = c
	deps.Redis = rdb

	deps.Audit = auditlog.New(auditstore.New(db), logger, appCfg.AuditLog, deps.Metrics)
	deps.Invalidator = cache.NewInvalidator(deps.Cache, logger, deps.Metrics)
	deps.LoginLimiter = ratelimit.NewLoginLimiter(ratelimit.LoginConfig{
		IPLimit:    appCfg.LoginRateIP,
		EmailLimit: appCfg.LoginRateEmail,
	})

	return deps, nil
}

// buildCache returns the read cache for cache_backend. The Redis client is
// returned separately so Shutdown can close it.
func buildCache(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (cache.Cache, *redis.Client, error) {
	switch appCfg.CacheBackend {
	case cache.BackendRedis:
		rdb, err := cache.DialRedis(ctx, appCfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis connect: %w", err)
		}
		logger.Info("read cache: redis", zap.Duration("ttl", appCfg.CacheTTL))
		return cache.NewRedis(rdb, redisKeyPrefix, appCfg.CacheTTL, logger), rdb, nil
	case cache.BackendOff:
		logger.Info("read cache disabled")
		return cache.Nop{}, nil, nil
	default:
		logger.Info("read cache: local",
			zap.Int("size", appCfg.CacheSize), zap.Duration("ttl", appCfg.CacheTTL))
		return cache.NewLocal(appCfg.CacheSize, appCfg.CacheTTL), nil, nil
	}
}
