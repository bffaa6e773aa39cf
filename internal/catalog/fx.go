package catalog

import (
	"github.com/printpower/storefront/internal/catalog/repository"
	"github.com/printpower/storefront/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
