package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	matchdomain "github.com/hireloop/hireloop/internal/match/domain"
)

func (s *Server) SignalMatch(c *gin.Context) {
	var req matchdomain.SignalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.matchSvc.Signal(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) RejectMatch(c *gin.Context) {
	resp, err := s.matchSvc.Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

type fulfillRequest struct {
	VideoURL string `json:"video_url" binding:"required"`
}

func (s *Server) FulfillMatch(c *gin.Context) {
	var req fulfillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.matchSvc.Fulfill(c.Request.Context(), c.Param("id"), req.VideoURL)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetMatch(c *gin.Context) {
	resp, err := s.matchSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
