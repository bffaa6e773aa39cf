package cause

import (
	"github.com/printpower/storefront/internal/cause/repository"
	"github.com/printpower/storefront/internal/cause/service"
	"go.uber.org/fx"
)

var Module = fx.Module("cause.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
