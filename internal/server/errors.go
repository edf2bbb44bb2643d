package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	entitlementdomain "github.com/hireloop/hireloop/internal/entitlement/domain"
	matchdomain "github.com/hireloop/hireloop/internal/match/domain"
	plandomain "github.com/hireloop/hireloop/internal/plan/domain"
	subscriptiondomain "github.com/hireloop/hireloop/internal/subscription/domain"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidRequest = errors.New("invalid_request")
)

// ErrorHandlingMiddleware converts accumulated gin errors into one JSON body.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// mapError translates domain sentinels into transport statuses. Denials never
// reach this path; they are structured 200 decisions.
func mapError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{Type: "unauthorized", Message: "authentication required"}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{Type: "forbidden", Message: "insufficient permissions"}

	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, entitlementdomain.ErrUnknownAction),
		errors.Is(err, matchdomain.ErrInvalidRequest),
		errors.Is(err, matchdomain.ErrInvalidID),
		errors.Is(err, matchdomain.ErrInvalidSide),
		errors.Is(err, plandomain.ErrInvalidID),
		errors.Is(err, plandomain.ErrInvalidName),
		errors.Is(err, plandomain.ErrInvalidDuration),
		errors.Is(err, plandomain.ErrInvalidLimit),
		errors.Is(err, subscriptiondomain.ErrInvalidID):
		return http.StatusBadRequest, errorPayload{Type: "invalid_request", Message: err.Error()}

	case errors.Is(err, matchdomain.ErrNotMatched):
		return http.StatusUnprocessableEntity, errorPayload{Type: "not_matched", Message: "application is not mutually matched"}

	case errors.Is(err, plandomain.ErrNotFound),
		errors.Is(err, subscriptiondomain.ErrNotFound),
		errors.Is(err, subscriptiondomain.ErrPlanNotFound),
		errors.Is(err, entitlementdomain.ErrPlanNotFound),
		errors.Is(err, matchdomain.ErrNotFound),
		errors.Is(err, matchdomain.ErrCandidateNotFound),
		errors.Is(err, matchdomain.ErrOrganizationNotFound),
		errors.Is(err, matchdomain.ErrJobNotFound),
		errors.Is(err, matchdomain.ErrResumeNotFound):
		return http.StatusNotFound, errorPayload{Type: "not_found", Message: err.Error()}

	case errors.Is(err, plandomain.ErrDuplicateCode),
		errors.Is(err, subscriptiondomain.ErrAlreadySubscribed):
		return http.StatusConflict, errorPayload{Type: "conflict", Message: err.Error()}

	case errors.Is(err, entitlementdomain.ErrConflict):
		// Retries inside the guard are exhausted; the caller may retry.
		return http.StatusConflict, errorPayload{Type: "conflict", Message: "concurrent update, retry"}

	case errors.Is(err, gorm.ErrInvalidDB):
		return http.StatusServiceUnavailable, errorPayload{Type: "store_unavailable", Message: "storage temporarily unavailable"}
	}

	return http.StatusServiceUnavailable, errorPayload{Type: "store_unavailable", Message: "storage temporarily unavailable"}
}

// classifyErrorForLog feeds the request logger an error type and code.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= 500:
		return "infrastructure", payload.Type
	case status == http.StatusConflict:
		return "concurrency", payload.Type
	default:
		return "client", payload.Type
	}
}
