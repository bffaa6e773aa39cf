package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/printpower/storefront/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const keyQuoteUser = "quote:user:%s"

// QuoteLimiter caps per-user quote requests. A nil limiter (rate
// limiting disabled) allows everything.
type QuoteLimiter struct {
	enabled bool
	bucket  *TokenBucket
	rate    float64
	burst   int
}

func NewQuoteLimiter(cfg *config.Config) (*QuoteLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.QuoteRate <= 0 || limitCfg.QuoteBurst <= 0 {
		return nil, errors.New("quote rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	return &QuoteLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		rate:    limitCfg.QuoteRate,
		burst:   limitCfg.QuoteBurst,
	}, nil
}

func (l *QuoteLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *QuoteLimiter) Allow(ctx context.Context, userID string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyQuoteUser, strings.TrimSpace(userID)), l.rate, l.burst)
}
