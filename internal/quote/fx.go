package quote

import (
	"github.com/printpower/storefront/internal/config"
	"github.com/printpower/storefront/internal/events"
	"github.com/printpower/storefront/internal/quote/checkdrop"
	"github.com/printpower/storefront/internal/quote/domain"
	"github.com/printpower/storefront/internal/quote/provider"
	"github.com/printpower/storefront/internal/quote/repository"
	"github.com/printpower/storefront/internal/quote/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// newProvider picks the stub or live strategy once, at startup.
func newProvider(cfg *config.Config, log *zap.Logger) domain.Provider {
	if cfg.Pressmaster.Live() {
		return provider.NewLive(cfg.Pressmaster, log)
	}
	return provider.NewStub()
}

var Module = fx.Module("quote.service",
	fx.Provide(repository.Provide),
	fx.Provide(newProvider),
	fx.Provide(fx.Annotate(
		func() domain.Provider { return provider.NewStub() },
		fx.ResultTags(`name:"quote_fallback"`),
	)),
	fx.Provide(service.New),
	fx.Provide(fx.Annotate(
		checkdrop.New,
		fx.As(new(events.Handler)),
		fx.ResultTags(`group:"event_handlers"`),
	)),
)
