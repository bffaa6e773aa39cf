package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	donationdomain "github.com/printpower/storefront/internal/donation/domain"
	"github.com/printpower/storefront/internal/donation/feed"
)

type createDonationRequest struct {
	DonorName     string `json:"donor_name"`
	Amount        string `json:"amount"`
	Cause         string `json:"cause"`
	PaymentMethod string `json:"payment_method"`
}

func (s *Server) CreateDonation(c *gin.Context) {
	var req createDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	donation, err := s.donationSvc.Create(c.Request.Context(), donationdomain.CreateDonationRequest{
		DonorName:     strings.TrimSpace(req.DonorName),
		Amount:        strings.TrimSpace(req.Amount),
		Cause:         strings.TrimSpace(req.Cause),
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": donation})
}

func (s *Server) ListDonations(c *gin.Context) {
	var query struct {
		PageToken string `form:"page_token"`
		PageSize  int32  `form:"page_size"`
		Cause     string `form:"cause"`
		Mine      bool   `form:"mine"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.donationSvc.List(c.Request.Context(), donationdomain.ListDonationRequest{
		PageToken: strings.TrimSpace(query.PageToken),
		PageSize:  query.PageSize,
		Cause:     strings.TrimSpace(query.Cause),
		Mine:      query.Mine,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) StreamDonations(c *gin.Context) {
	if s.donationFeed == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	subscription, backlog, err := s.donationFeed.Subscribe()
	if err != nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}
	defer subscription.Close()

	ctx := c.Request.Context()

	// A reconnecting client sends the last donation id it saw. Events it
	// missed may have aged out of the hub backlog, so they are repaired
	// from the store; the repaired ids then mask backlog/live duplicates.
	// Subscribing first keeps the no-loss property: anything committed
	// after the repair read arrives through the subscription.
	cursor, replaying := streamCursor(c)
	var repair []feed.DonationEvent
	if replaying {
		repair, err = s.donationSvc.ReplaySince(ctx, cursor)
		if err != nil {
			AbortWithError(c, err)
			return
		}
	}

	s.obsMetrics.FeedSubscriberChange(ctx, 1)
	defer s.obsMetrics.FeedSubscriberChange(ctx, -1)

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

	replayed := make(map[string]struct{}, len(repair))
	for _, event := range repair {
		if err := writeDonationEvent(writer, event); err != nil {
			return
		}
		replayed[event.DonationID] = struct{}{}
	}

	skip := func(event feed.DonationEvent) bool {
		if _, ok := replayed[event.DonationID]; ok {
			return true
		}
		if !replaying {
			return false
		}
		id, err := snowflake.ParseString(event.DonationID)
		return err == nil && id <= cursor
	}

	for _, event := range backlog {
		if skip(event) {
			continue
		}
		if err := writeDonationEvent(writer, event); err != nil {
			return
		}
	}
	flusher.Flush()
	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-subscription.Events():
			if skip(event) {
				continue
			}
			if err := writeDonationEvent(writer, event); err != nil {
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

// streamCursor parses the Last-Event-ID header a reconnecting SSE
// client sends. A missing or garbled header means a fresh session.
func streamCursor(c *gin.Context) (snowflake.ID, bool) {
	raw := strings.TrimSpace(c.GetHeader("Last-Event-ID"))
	if raw == "" {
		return 0, false
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}

func writeDonationEvent(w io.Writer, event feed.DonationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %s\ndata: %s\n\n", event.DonationID, data)
	return err
}
