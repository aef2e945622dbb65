package cache

import (
	"time"

	"github.com/kitchenops/backend/internal/domain/shared/service"
	"github.com/kitchenops/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewDensityCacheFromConfig builds the density cache for the server.
// When Redis is disabled or unreachable the cache runs with the local tier only.
// The returned close function releases the Redis client, if any.
func NewDensityCacheFromConfig(
	redisCfg config.RedisConfig,
	ttl time.Duration,
	inner service.DensityLookup,
	logger *zap.Logger,
) (*DensityCache, func() error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []DensityCacheOption{WithTTL(ttl), WithLogger(logger)}
	closeFn := func() error { return nil }

	if redisCfg.Enabled {
		client, err := NewRedisClient(redisCfg)
		if err != nil {
			logger.Warn("Redis unavailable, density cache is process-local",
				zap.String("addr", redisCfg.Addr()),
				zap.Error(err),
			)
		} else {
			opts = append(opts, WithRemote(client))
			closeFn = client.Close
			logger.Info("Density cache using Redis", zap.String("addr", redisCfg.Addr()))
		}
	}

	return NewDensityCache(inner, opts...), closeFn
}
