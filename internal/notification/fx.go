package notification

import (
	"github.com/printpower/storefront/internal/notification/repository"
	"github.com/printpower/storefront/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
