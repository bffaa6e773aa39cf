package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/printpower/storefront/internal/auth/domain"
	"github.com/printpower/storefront/internal/auth/password"
	"github.com/printpower/storefront/internal/auth/token"
	"github.com/printpower/storefront/internal/clock"
	"github.com/printpower/storefront/internal/usercontext"
	"github.com/printpower/storefront/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minPasswordLen = 8

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Repo   domain.Repository
	Issuer *token.Issuer
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	repo   domain.Repository
	issuer *token.Issuer
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("auth.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		repo:   p.Repo,
		issuer: p.Issuer,
	}
}

func (s *Service) Signup(ctx context.Context, req domain.SignupRequest) (domain.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.AuthResponse{}, domain.ErrInvalidEmail
	}
	if len(req.Password) < minPasswordLen {
		return domain.AuthResponse{}, domain.ErrWeakPassword
	}

	existing, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return domain.AuthResponse{}, err
	}
	if existing != nil {
		return domain.AuthResponse{}, domain.ErrDuplicateEmail
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return domain.AuthResponse{}, err
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = email[:strings.Index(email, "@")]
	}

	now := s.clock.Now()
	user := domain.User{
		ID:           s.genID.Generate(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, s.db, &user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.AuthResponse{}, domain.ErrDuplicateEmail
		}
		return domain.AuthResponse{}, err
	}

	s.log.Info("user signed up", zap.String("user_id", user.ID.String()))
	return s.respond(user, now)
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, s.db, req.Email)
	if err != nil {
		return domain.AuthResponse{}, err
	}
	if user == nil || !password.Verify(req.Password, user.PasswordHash) {
		return domain.AuthResponse{}, domain.ErrInvalidCredentials
	}
	return s.respond(*user, s.clock.Now())
}

func (s *Service) Me(ctx context.Context) (domain.User, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.User{}, domain.ErrUnauthenticated
	}

	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrUnauthenticated
	}
	return *user, nil
}

func (s *Service) respond(user domain.User, now time.Time) (domain.AuthResponse, error) {
	signed, expiresAt, err := s.issuer.Issue(user.ID, now)
	if err != nil {
		return domain.AuthResponse{}, err
	}
	return domain.AuthResponse{
		Token:     signed,
		ExpiresAt: expiresAt.Format(time.RFC3339),
		User:      user,
	}, nil
}
