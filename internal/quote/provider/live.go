package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/printpower/storefront/internal/config"
	"github.com/printpower/storefront/internal/quote/domain"
	"go.uber.org/zap"
)

const maxResponseBytes = 1 << 20

// LiveProvider calls the upstream Pressmaster quoting API with the
// configured bearer credential. Every call is bounded by the client
// timeout; callers treat any returned error as a degradation signal and
// substitute a stub quote.
type LiveProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *zap.Logger
}

func NewLive(cfg config.PressmasterConfig, log *zap.Logger) *LiveProvider {
	return &LiveProvider{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
		log:     log.Named("quote.provider.live"),
	}
}

func (p *LiveProvider) Mode() domain.Mode {
	return domain.ModeLive
}

func (p *LiveProvider) RequestQuote(ctx context.Context, payload domain.QuotePayload) (domain.Quote, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.Quote{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/quotes", bytes.NewReader(body))
	if err != nil {
		return domain.Quote{}, err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("pressmaster request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domain.Quote{}, fmt.Errorf("pressmaster response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		p.log.Warn("upstream rejected quote request",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", raw),
		)
		return domain.Quote{}, fmt.Errorf("pressmaster status %d", resp.StatusCode)
	}

	var quote domain.Quote
	if err := json.Unmarshal(raw, &quote); err != nil {
		return domain.Quote{}, fmt.Errorf("pressmaster decode: %w", err)
	}
	quote.Mock = false
	return quote, nil
}

var _ domain.Provider = (*LiveProvider)(nil)
