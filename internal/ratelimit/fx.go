package ratelimit

import (
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/hireloop/hireloop/internal/config"
)

var Module = fx.Module("rate.limit",
	fx.Provide(provideRedis),
	fx.Provide(NewTokenBucket),
	fx.Provide(NewLocker),
	fx.Provide(NewAuthorizeLimiter),
)

// provideRedis returns nil when no redis address is configured; downstream
// consumers treat a nil client as "feature off".
func provideRedis(cfg config.Config, log *zap.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Named("ratelimit").Info("redis not configured, limiter and sweep lock disabled")
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}
