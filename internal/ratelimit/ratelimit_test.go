package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/hireloop/hireloop/internal/config"
)

func TestAuthorizeLimiter_AllowsWithoutRedis(t *testing.T) {
	limiter := NewAuthorizeLimiter(
		zap.NewNop(),
		nil,
		config.NewStaticGuardConfigHolder(config.GuardConfig{RateLimitEnabled: true}),
	)

	allowed, result := limiter.Allow(context.Background(), 42)
	assert.True(t, allowed)
	assert.Nil(t, result)
}

func TestAuthorizeLimiter_AllowsWhenDisabled(t *testing.T) {
	limiter := NewAuthorizeLimiter(
		zap.NewNop(),
		NewTokenBucket(nil),
		config.NewStaticGuardConfigHolder(config.GuardConfig{RateLimitEnabled: false}),
	)

	allowed, _ := limiter.Allow(context.Background(), 42)
	assert.True(t, allowed)
}

func TestAuthorizeLimiter_NilReceiver(t *testing.T) {
	var limiter *AuthorizeLimiter

	allowed, result := limiter.Allow(context.Background(), 42)
	assert.True(t, allowed)
	assert.Nil(t, result)
}

func TestBucketTTL(t *testing.T) {
	// Refilling 20 tokens at 10/s takes 2s; the key must outlive that.
	ttl := bucketTTL(10, 20)
	assert.GreaterOrEqual(t, ttl, 2*time.Second)

	// Degenerate rates still produce a positive expiry.
	assert.Greater(t, bucketTTL(0, 0), time.Duration(0))
}

func TestRedisScriptCasts(t *testing.T) {
	assert.Equal(t, int64(1), castToInt(int64(1)))
	assert.Equal(t, int64(0), castToInt("garbage"))

	// Lua returns floats as formatted strings.
	assert.InDelta(t, 4.5, castToFloat("4.5"), 0.001)
	assert.InDelta(t, 3.0, castToFloat(int64(3)), 0.001)
	assert.InDelta(t, 0.0, castToFloat(nil), 0.001)
}
