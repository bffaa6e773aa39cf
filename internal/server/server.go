package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/printpower/storefront/internal/auth"
	authdomain "github.com/printpower/storefront/internal/auth/domain"
	authmiddleware "github.com/printpower/storefront/internal/auth/middleware"
	"github.com/printpower/storefront/internal/auth/token"
	"github.com/printpower/storefront/internal/catalog"
	catalogdomain "github.com/printpower/storefront/internal/catalog/domain"
	"github.com/printpower/storefront/internal/cause"
	causedomain "github.com/printpower/storefront/internal/cause/domain"
	"github.com/printpower/storefront/internal/clock"
	"github.com/printpower/storefront/internal/config"
	"github.com/printpower/storefront/internal/dispatch"
	"github.com/printpower/storefront/internal/donation"
	donationdomain "github.com/printpower/storefront/internal/donation/domain"
	"github.com/printpower/storefront/internal/donation/feed"
	"github.com/printpower/storefront/internal/events"
	"github.com/printpower/storefront/internal/impact"
	"github.com/printpower/storefront/internal/migration"
	"github.com/printpower/storefront/internal/notification"
	notificationdomain "github.com/printpower/storefront/internal/notification/domain"
	"github.com/printpower/storefront/internal/observability"
	obsmiddleware "github.com/printpower/storefront/internal/observability/logger"
	obsmetrics "github.com/printpower/storefront/internal/observability/metrics"
	obstracing "github.com/printpower/storefront/internal/observability/tracing"
	"github.com/printpower/storefront/internal/order"
	orderdomain "github.com/printpower/storefront/internal/order/domain"
	"github.com/printpower/storefront/internal/quote"
	quotedomain "github.com/printpower/storefront/internal/quote/domain"
	"github.com/printpower/storefront/internal/ratelimit"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	config.Module,
	clock.Module,
	events.Module,
	feed.Module,
	auth.Module,
	catalog.Module,
	cause.Module,
	donation.Module,
	impact.Module,
	order.Module,
	quote.Module,
	notification.Module,
	ratelimit.Module,
	dispatch.Module,
	migration.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug: obsCfg.Debug(),
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg *config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             *config.Config
	db              *gorm.DB
	genID           *snowflake.Node
	issuer          *token.Issuer
	authSvc         authdomain.Service
	catalogSvc      catalogdomain.Service
	causeSvc        causedomain.Service
	donationSvc     donationdomain.Service
	donationFeed    *feed.Hub
	impactSvc       *impact.Service
	orderSvc        orderdomain.Service
	quoteSvc        quotedomain.Service
	notificationSvc notificationdomain.Service
	quoteLimiter    *ratelimit.QuoteLimiter
	obsMetrics      *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             *config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	Issuer          *token.Issuer
	AuthSvc         authdomain.Service
	CatalogSvc      catalogdomain.Service
	CauseSvc        causedomain.Service
	DonationSvc     donationdomain.Service
	DonationFeed    *feed.Hub
	ImpactSvc       *impact.Service
	OrderSvc        orderdomain.Service
	QuoteSvc        quotedomain.Service
	NotificationSvc notificationdomain.Service
	QuoteLimiter    *ratelimit.QuoteLimiter `optional:"true"`
	ObsMetrics      *obsmetrics.Metrics     `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		issuer:          p.Issuer,
		authSvc:         p.AuthSvc,
		catalogSvc:      p.CatalogSvc,
		causeSvc:        p.CauseSvc,
		donationSvc:     p.DonationSvc,
		donationFeed:    p.DonationFeed,
		impactSvc:       p.ImpactSvc,
		orderSvc:        p.OrderSvc,
		quoteSvc:        p.QuoteSvc,
		notificationSvc: p.NotificationSvc,
		quoteLimiter:    p.QuoteLimiter,
		obsMetrics:      p.ObsMetrics,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	authGroup := s.engine.Group("/auth")

	authGroup.POST("/signup", s.Signup)
	authGroup.POST("/login", s.Login)
	authGroup.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Catalog --------
	api.GET("/products", s.ListProducts)
	api.GET("/products/:id", s.GetProduct)

	// -------- Causes --------
	api.GET("/causes", s.ListCauses)
	api.POST("/causes", s.AuthRequired(), s.CreateCause)
	api.GET("/causes/:name", s.GetCause)
	api.GET("/causes/:name/stats", s.GetCauseStats)

	// -------- Donations --------
	api.POST("/donations", s.AuthOptional(), s.CreateDonation)
	api.GET("/donations", s.AuthOptional(), s.ListDonations)
	api.GET("/donations/stream", s.StreamDonations)

	// -------- Impact --------
	api.GET("/impact", s.GetImpact)
	api.GET("/impact/stream", s.StreamImpact)

	// -------- Orders --------
	api.POST("/orders", s.AuthRequired(), s.Checkout)
	api.GET("/orders", s.AuthRequired(), s.ListOrders)
	api.GET("/orders/:id", s.AuthRequired(), s.GetOrder)

	// -------- Pressmaster --------
	api.POST("/pressmaster/quotes", s.PressmasterAuthRequired(), s.QuoteRateLimit(), s.RequestPressmasterQuote)
	api.GET("/pressmaster/requests", s.AuthRequired(), s.ListPressmasterRequests)

	// -------- Notifications --------
	api.GET("/notifications", s.AuthRequired(), s.ListNotifications)
	api.POST("/notifications/:id/read", s.AuthRequired(), s.MarkNotificationRead)
}

func (s *Server) AuthRequired() gin.HandlerFunc {
	return authmiddleware.AuthRequired(s.issuer)
}

func (s *Server) AuthOptional() gin.HandlerFunc {
	return authmiddleware.AuthOptional(s.issuer)
}
