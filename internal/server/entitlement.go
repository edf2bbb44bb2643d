package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	entitlementdomain "github.com/hireloop/hireloop/internal/entitlement/domain"
	"github.com/hireloop/hireloop/internal/principal"
)

type authorizeRequest struct {
	Action string `json:"action" binding:"required"`
}

// AuthorizeEntitlement gates a metered action. Denials are part of the
// decision payload, not transport errors.
func (s *Server) AuthorizeEntitlement(c *gin.Context) {
	var req authorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	action, err := entitlementdomain.ParseAction(req.Action)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	p, ok := principal.FromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	c.Set("action", string(action))

	decision, err := s.guard.Authorize(c.Request.Context(), p.UserID.Int64(), action)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, decision)
}
