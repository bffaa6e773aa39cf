package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/printpower/storefront/internal/cause/domain"
	"github.com/printpower/storefront/internal/usercontext"
	"github.com/printpower/storefront/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("cause.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCauseRequest) (domain.Cause, error) {
	name := strings.ToLower(strings.TrimSpace(req.Name))
	if name == "" {
		return domain.Cause{}, domain.ErrInvalidName
	}

	existing, err := s.repo.FindByName(ctx, s.db, name)
	if err != nil {
		return domain.Cause{}, err
	}
	if existing != nil {
		return domain.Cause{}, domain.ErrDuplicateCause
	}

	tags := make([]string, 0, len(req.Tags))
	for _, tag := range req.Tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
	}

	now := time.Now().UTC()
	cause := domain.Cause{
		ID:          s.genID.Generate(),
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Tags:        datatypes.NewJSONSlice(tags),
		WebsiteURL:  strings.TrimSpace(req.WebsiteURL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if userID, ok := usercontext.UserIDFromContext(ctx); ok && userID != 0 {
		cause.CreatedBy = &userID
	}

	if err := s.repo.Insert(ctx, s.db, &cause); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Cause{}, domain.ErrDuplicateCause
		}
		return domain.Cause{}, err
	}

	return cause, nil
}

func (s *Service) List(ctx context.Context) (domain.ListCauseResponse, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return domain.ListCauseResponse{}, err
	}

	causes := make([]domain.Cause, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		causes = append(causes, *item)
	}

	return domain.ListCauseResponse{Causes: causes}, nil
}

func (s *Service) Get(ctx context.Context, req domain.GetCauseRequest) (domain.Cause, error) {
	if name := strings.TrimSpace(req.Name); name != "" {
		cause, err := s.repo.FindByName(ctx, s.db, name)
		if err != nil {
			return domain.Cause{}, err
		}
		if cause == nil {
			return domain.Cause{}, domain.ErrNotFound
		}
		return *cause, nil
	}

	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.Cause{}, domain.ErrInvalidID
	}

	cause, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Cause{}, err
	}
	if cause == nil {
		return domain.Cause{}, domain.ErrNotFound
	}
	return *cause, nil
}
