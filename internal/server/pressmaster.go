package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	quotedomain "github.com/printpower/storefront/internal/quote/domain"
	"github.com/printpower/storefront/internal/usercontext"
)

type pressmasterQuoteRequest struct {
	Project    string `json:"project"`
	Specs      string `json:"specs"`
	Quantity   int    `json:"quantity"`
	DonationID string `json:"donation_id"`
}

// PressmasterAuthRequired guards the quote endpoint with the shared
// bearer auth. Kept separate so its response shape can stay aligned
// with the upstream Pressmaster contract independently of the rest of
// the API.
func (s *Server) PressmasterAuthRequired() gin.HandlerFunc {
	return s.AuthRequired()
}

// QuoteRateLimit throttles quote requests per user. A disabled limiter
// lets everything through.
func (s *Server) QuoteRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.quoteLimiter.Enabled() {
			c.Next()
			return
		}

		userID, ok := usercontext.UserIDFromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Unauthorized",
			})
			return
		}

		result, err := s.quoteLimiter.Allow(c.Request.Context(), userID.String())
		if err != nil {
			// The limiter backend being down should not take the
			// endpoint down with it.
			c.Next()
			return
		}
		if !result.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "Too many requests",
			})
			return
		}

		c.Next()
	}
}

func (s *Server) RequestPressmasterQuote(c *gin.Context) {
	var req pressmasterQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid input",
			"details": []string{"request body must be valid JSON"},
		})
		return
	}

	quote, err := s.quoteSvc.RequestQuote(c.Request.Context(), quotedomain.QuotePayload{
		Project:    strings.TrimSpace(req.Project),
		Specs:      strings.TrimSpace(req.Specs),
		Quantity:   req.Quantity,
		DonationID: strings.TrimSpace(req.DonationID),
	})
	if err != nil {
		var vErr *quotedomain.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Invalid input",
				"details": vErr.Details,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, quote)
}

func (s *Server) ListPressmasterRequests(c *gin.Context) {
	var query struct {
		Limit int `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quoteSvc.ListRequests(c.Request.Context(), quotedomain.ListRequestsRequest{
		Limit: query.Limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
