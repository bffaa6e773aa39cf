package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	causedomain "github.com/printpower/storefront/internal/cause/domain"
)

type createCauseRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	WebsiteURL  string   `json:"website_url"`
}

func (s *Server) ListCauses(c *gin.Context) {
	resp, err := s.causeSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateCause(c *gin.Context) {
	var req createCauseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	cause, err := s.causeSvc.Create(c.Request.Context(), causedomain.CreateCauseRequest{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Tags:        req.Tags,
		WebsiteURL:  strings.TrimSpace(req.WebsiteURL),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cause})
}

func (s *Server) GetCause(c *gin.Context) {
	cause, err := s.causeSvc.Get(c.Request.Context(), causedomain.GetCauseRequest{
		Name: strings.TrimSpace(c.Param("name")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cause})
}

func (s *Server) GetCauseStats(c *gin.Context) {
	stats, err := s.impactSvc.CauseStats(c.Request.Context(), strings.TrimSpace(c.Param("name")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}
