package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"github.com/hireloop/hireloop/internal/principal"
	"github.com/hireloop/hireloop/pkg/telemetry/correlation"
)

const (
	headerUserID = "X-User-ID"
	headerRole   = "X-User-Role"
	headerPlanID = "X-Plan-ID"
)

// PrincipalMiddleware lifts the gateway-verified identity headers into the
// request context. Identity verification itself happens upstream.
func (s *Server) PrincipalMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := snowflake.ParseString(strings.TrimSpace(c.GetHeader(headerUserID)))
		if err != nil || userID.Int64() == 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		role, ok := principal.ParseRole(c.GetHeader(headerRole))
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		p := principal.Principal{UserID: userID, Role: role}
		if raw := strings.TrimSpace(c.GetHeader(headerPlanID)); raw != "" {
			planID, err := snowflake.ParseString(raw)
			if err != nil {
				AbortWithError(c, ErrUnauthorized)
				return
			}
			p.PlanID = planID
		}

		ctx := principal.WithPrincipal(c.Request.Context(), p)
		ctx, _ = correlation.EnsureCorrelationID(ctx)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// Authorized enforces the role policy for an object/action pair.
func (s *Server) Authorized(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal.FromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if err := s.authzSvc.Authorize(c.Request.Context(), p.Role, object, action); err != nil {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

// RateLimited throttles the authorize path per user and globally.
func (s *Server) RateLimited() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil {
			c.Next()
			return
		}
		p, ok := principal.FromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		allowed, result := s.limiter.Allow(c.Request.Context(), p.UserID.Int64())
		if result != nil {
			c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		}
		if !allowed {
			if result != nil && result.RetryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())+1))
			}
			if s.metrics != nil {
				s.metrics.RecordRateLimitDenied(c.Request.Context(), c.FullPath(), "token_bucket")
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"type":    "rate_limited",
					"message": "too many requests",
				},
			})
			return
		}
		c.Next()
	}
}
