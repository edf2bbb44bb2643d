package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	subscriptiondomain "github.com/hireloop/hireloop/internal/subscription/domain"
)

func (s *Server) Subscribe(c *gin.Context) {
	var req subscriptiondomain.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.subscriptionSvc.Subscribe(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

type listSubscriptionsQuery struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size"`
	PlanID    string `form:"plan_id"`
}

func (s *Server) ListSubscriptions(c *gin.Context) {
	var query listSubscriptionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.subscriptionSvc.List(c.Request.Context(), subscriptiondomain.ListRequest{
		PageToken: query.PageToken,
		PageSize:  query.PageSize,
		PlanID:    query.PlanID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetSubscription(c *gin.Context) {
	resp, err := s.subscriptionSvc.GetByUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) CancelSubscription(c *gin.Context) {
	if err := s.subscriptionSvc.Cancel(c.Request.Context(), c.Param("user_id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}
