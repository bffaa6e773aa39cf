package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/printpower/storefront/internal/impact/aggregate"
)

func (s *Server) GetImpact(c *gin.Context) {
	var query struct {
		Cause string `form:"cause"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	totals, err := s.impactSvc.Totals(c.Request.Context(), strings.TrimSpace(query.Cause))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": totals})
}

// StreamImpact pushes a full totals snapshot first, then a fresh
// snapshot after every donation that lands while the client is
// attached.
func (s *Server) StreamImpact(c *gin.Context) {
	ctrl, release, err := s.impactSvc.OpenStream(c.Request.Context())
	if err != nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}
	defer release()

	writer := c.Writer
	headers := writer.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	flusher, ok := writer.(http.Flusher)
	if !ok {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	if _, err := io.WriteString(writer, "retry: 2000\n\n"); err != nil {
		return
	}

	if err := writeImpactTotals(writer, ctrl.Totals()); err != nil {
		return
	}
	flusher.Flush()

	ctx := c.Request.Context()
	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case totals, open := <-ctrl.Updates():
			if !open {
				return
			}
			if err := writeImpactTotals(writer, totals); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := io.WriteString(writer, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeImpactTotals(w io.Writer, totals aggregate.Totals) error {
	data, err := json.Marshal(totals.Display())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
