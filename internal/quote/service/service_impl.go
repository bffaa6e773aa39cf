package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"github.com/printpower/storefront/internal/clock"
	"github.com/printpower/storefront/internal/quote/domain"
	"github.com/printpower/storefront/internal/observability/metrics"
	"github.com/printpower/storefront/internal/usercontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Provider domain.Provider
	Fallback domain.Provider `name:"quote_fallback"`
	Metrics  *metrics.Metrics
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	provider domain.Provider
	fallback domain.Provider
	validate *validator.Validate
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("quote.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		provider: p.Provider,
		fallback: p.Fallback,
		validate: validator.New(),
		metrics:  p.Metrics,
	}
}

// RequestQuote validates the payload, runs it through the configured
// provider, and records the attempt. A live-mode failure degrades to a
// stub-shaped quote rather than an error; the audit row still records
// the failure. Audit persistence is best-effort and never blocks the
// quote itself.
func (s *Service) RequestQuote(ctx context.Context, payload domain.QuotePayload) (domain.Quote, error) {
	payload.Project = strings.TrimSpace(payload.Project)
	payload.Specs = strings.TrimSpace(payload.Specs)
	if err := s.validate.Struct(payload); err != nil {
		return domain.Quote{}, asValidationError(err)
	}

	record := s.newRecord(ctx, payload)
	if err := s.repo.Insert(ctx, s.db, record); err != nil {
		s.log.Error("failed to persist quote audit row", zap.Error(err))
		record = nil
	}

	quote, err := s.provider.RequestQuote(ctx, payload)
	if err != nil {
		if s.provider.Mode() != domain.ModeLive {
			s.finalize(ctx, record, domain.StatusError, nil, err)
			s.metrics.RecordQuoteRequest(ctx, string(s.provider.Mode()), string(domain.StatusError))
			return domain.Quote{}, err
		}

		s.log.Warn("live quote failed, substituting stub", zap.Error(err))
		quote, _ = s.fallback.RequestQuote(ctx, payload)
		quote.Notes = "Live quote unavailable, stub substituted. " + quote.Notes
		s.finalize(ctx, record, domain.StatusError, &quote, err)
		s.metrics.RecordQuoteRequest(ctx, string(domain.ModeLive), string(domain.StatusError))
		return quote, nil
	}

	s.finalize(ctx, record, domain.StatusSuccess, &quote, nil)
	s.metrics.RecordQuoteRequest(ctx, string(s.provider.Mode()), string(domain.StatusSuccess))
	return quote, nil
}

func (s *Service) ListRequests(ctx context.Context, req domain.ListRequestsRequest) (domain.ListRequestsResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	items, err := s.repo.ListRecent(ctx, s.db, limit)
	if err != nil {
		return domain.ListRequestsResponse{}, err
	}

	requests := make([]domain.PressmasterRequest, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		requests = append(requests, *item)
	}
	return domain.ListRequestsResponse{Requests: requests}, nil
}

func (s *Service) newRecord(ctx context.Context, payload domain.QuotePayload) *domain.PressmasterRequest {
	body, _ := json.Marshal(payload)
	now := s.clock.Now()
	record := &domain.PressmasterRequest{
		ID:          s.genID.Generate(),
		Type:        domain.TypeQuote,
		Mode:        s.provider.Mode(),
		Status:      domain.StatusPending,
		RequestBody: datatypes.JSON(body),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if userID, ok := usercontext.UserIDFromContext(ctx); ok && userID != 0 {
		record.UserID = &userID
	}
	if payload.DonationID != "" {
		if id, err := snowflake.ParseString(payload.DonationID); err == nil {
			record.DonationID = &id
		}
	}
	return record
}

func (s *Service) finalize(ctx context.Context, record *domain.PressmasterRequest, status domain.Status, quote *domain.Quote, cause error) {
	if record == nil {
		return
	}
	record.Status = status
	record.UpdatedAt = s.clock.Now()
	if quote != nil {
		if body, err := json.Marshal(quote); err == nil {
			record.ResponseBody = datatypes.JSON(body)
		}
	}
	if cause != nil {
		record.ErrorMessage = cause.Error()
	}
	if err := s.repo.Finalize(ctx, s.db, record); err != nil {
		s.log.Error("failed to finalize quote audit row",
			zap.String("request_id", record.ID.String()),
			zap.Error(err),
		)
	}
}

func asValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	details := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, fmt.Sprintf("%s failed on %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return &domain.ValidationError{Details: details}
}
