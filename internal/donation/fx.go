package donation

import (
	"github.com/printpower/storefront/internal/donation/domain"
	"github.com/printpower/storefront/internal/donation/repository"
	"github.com/printpower/storefront/internal/donation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("donation.service",
	fx.Provide(repository.Provide),
	fx.Provide(
		service.New,
		func(s *service.Service) domain.Service { return s },
		func(s *service.Service) domain.OrderWriter { return s },
	),
)
