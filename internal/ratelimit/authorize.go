package ratelimit

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hireloop/hireloop/internal/config"
)

// AuthorizeLimiter throttles the entitlement authorize endpoint per user and
// globally. Limits come from the hot-reloaded guard config; when rate
// limiting is disabled or redis is absent, everything is allowed.
type AuthorizeLimiter struct {
	log    *zap.Logger
	bucket *TokenBucket
	holder *config.GuardConfigHolder
}

func NewAuthorizeLimiter(log *zap.Logger, bucket *TokenBucket, holder *config.GuardConfigHolder) *AuthorizeLimiter {
	return &AuthorizeLimiter{
		log:    log.Named("ratelimit.authorize"),
		bucket: bucket,
		holder: holder,
	}
}

// Allow returns whether the request may proceed, plus the limiter verdict for
// response headers. Redis failures fail open.
func (l *AuthorizeLimiter) Allow(ctx context.Context, userID int64) (bool, *Result) {
	if l == nil || l.bucket == nil {
		return true, nil
	}
	cfg := l.holder.Current()
	if !cfg.RateLimitEnabled {
		return true, nil
	}

	global, err := l.bucket.Allow(ctx, "ratelimit:authorize:global", cfg.AuthorizeGlobalRate, cfg.AuthorizeGlobalBurst)
	if err != nil {
		l.log.Warn("global rate limit check failed, allowing", zap.Error(err))
		return true, nil
	}
	if !global.Allowed {
		return false, global
	}

	key := fmt.Sprintf("ratelimit:authorize:user:%d", userID)
	user, err := l.bucket.Allow(ctx, key, cfg.AuthorizeUserRate, cfg.AuthorizeUserBurst)
	if err != nil {
		l.log.Warn("user rate limit check failed, allowing", zap.Int64("user_id", userID), zap.Error(err))
		return true, nil
	}
	return user.Allowed, user
}
