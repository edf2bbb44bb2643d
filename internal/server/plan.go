package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	plandomain "github.com/hireloop/hireloop/internal/plan/domain"
)

func (s *Server) ListPlans(c *gin.Context) {
	req := plandomain.ListRequest{
		SortBy:  c.Query("sort_by"),
		OrderBy: c.Query("order_by"),
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		req.Active = &active
	}

	items, err := s.planSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetPlan(c *gin.Context) {
	resp, err := s.planSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) CreatePlan(c *gin.Context) {
	var req plandomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.planSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) UpdatePlan(c *gin.Context) {
	var req plandomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.ID = c.Param("id")

	resp, err := s.planSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RefreshCatalog forces a catalog reload, for operators reacting to direct
// store edits.
func (s *Server) RefreshCatalog(c *gin.Context) {
	if err := s.catalog.Refresh(c.Request.Context()); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"last_refreshed_at": s.catalog.LastRefreshedAt(),
	})
}
