package auth

import (
	"github.com/printpower/storefront/internal/auth/repository"
	"github.com/printpower/storefront/internal/auth/service"
	"github.com/printpower/storefront/internal/auth/token"
	"github.com/printpower/storefront/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(func(cfg *config.Config) *token.Issuer {
		return token.NewIssuer(cfg.AuthJWTSecret)
	}),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
