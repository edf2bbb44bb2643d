package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/hireloop/hireloop/internal/authorization"
	"github.com/hireloop/hireloop/internal/catalog"
	"github.com/hireloop/hireloop/internal/config"
	"github.com/hireloop/hireloop/internal/entitlement"
	entitlementdomain "github.com/hireloop/hireloop/internal/entitlement/domain"
	"github.com/hireloop/hireloop/internal/match"
	matchdomain "github.com/hireloop/hireloop/internal/match/domain"
	"github.com/hireloop/hireloop/internal/notification"
	"github.com/hireloop/hireloop/internal/observability"
	obsmetrics "github.com/hireloop/hireloop/internal/observability/metrics"
	obsmiddleware "github.com/hireloop/hireloop/internal/observability/logger"
	obstracing "github.com/hireloop/hireloop/internal/observability/tracing"
	"github.com/hireloop/hireloop/internal/plan"
	plandomain "github.com/hireloop/hireloop/internal/plan/domain"
	"github.com/hireloop/hireloop/internal/ratelimit"
	"github.com/hireloop/hireloop/internal/subscription"
	subscriptiondomain "github.com/hireloop/hireloop/internal/subscription/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	plan.Module,
	catalog.Module,
	subscription.Module,
	entitlement.Module,
	match.Module,
	notification.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config) *gin.Engine {
	return NewEngine(obsCfg)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
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
	cfg             config.Config
	db              *gorm.DB
	genID           *snowflake.Node
	authzSvc        authorization.Service
	guard           entitlementdomain.Guard
	catalog         *catalog.Cache
	planSvc         plandomain.Service
	subscriptionSvc subscriptiondomain.Service
	matchSvc        matchdomain.Service
	limiter         *ratelimit.AuthorizeLimiter
	metrics         *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	AuthzSvc        authorization.Service
	Guard           entitlementdomain.Guard
	Catalog         *catalog.Cache
	PlanSvc         plandomain.Service
	SubscriptionSvc subscriptiondomain.Service
	MatchSvc        matchdomain.Service
	Limiter         *ratelimit.AuthorizeLimiter `optional:"true"`
	Metrics         *obsmetrics.Metrics         `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		authzSvc:        p.AuthzSvc,
		guard:           p.Guard,
		catalog:         p.Catalog,
		planSvc:         p.PlanSvc,
		subscriptionSvc: p.SubscriptionSvc,
		matchSvc:        p.MatchSvc,
		limiter:         p.Limiter,
		metrics:         p.Metrics,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")
	v1.Use(s.PrincipalMiddleware())

	entitlements := v1.Group("/entitlements")
	entitlements.POST("/authorize",
		s.Authorized(authorization.ObjectEntitlement, authorization.ActionAuthorize),
		s.RateLimited(),
		s.AuthorizeEntitlement,
	)

	matches := v1.Group("/matches")
	matches.POST("/signal", s.Authorized(authorization.ObjectMatch, authorization.ActionSignal), s.SignalMatch)
	matches.POST("/:id/reject", s.Authorized(authorization.ObjectMatch, authorization.ActionReject), s.RejectMatch)
	matches.POST("/:id/fulfill", s.Authorized(authorization.ObjectMatch, authorization.ActionFulfill), s.FulfillMatch)
	matches.GET("/:id", s.Authorized(authorization.ObjectMatch, authorization.ActionView), s.GetMatch)

	plans := v1.Group("/plans")
	plans.GET("", s.Authorized(authorization.ObjectPlan, authorization.ActionView), s.ListPlans)
	plans.GET("/:id", s.Authorized(authorization.ObjectPlan, authorization.ActionView), s.GetPlan)
	plans.POST("", s.Authorized(authorization.ObjectPlan, authorization.ActionCreate), s.CreatePlan)
	plans.PATCH("/:id", s.Authorized(authorization.ObjectPlan, authorization.ActionUpdate), s.UpdatePlan)
	plans.POST("/refresh", s.Authorized(authorization.ObjectPlan, authorization.ActionRefresh), s.RefreshCatalog)

	subscriptions := v1.Group("/subscriptions")
	subscriptions.POST("", s.Authorized(authorization.ObjectSubscription, authorization.ActionCreate), s.Subscribe)
	subscriptions.GET("", s.Authorized(authorization.ObjectSubscription, authorization.ActionList), s.ListSubscriptions)
	subscriptions.GET("/:user_id", s.Authorized(authorization.ObjectSubscription, authorization.ActionView), s.GetSubscription)
	subscriptions.DELETE("/:user_id", s.Authorized(authorization.ObjectSubscription, authorization.ActionCancel), s.CancelSubscription)
}
