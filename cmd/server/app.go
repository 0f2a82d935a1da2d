package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hacktopia/platform/internal/auth"
	appConfig "github.com/hacktopia/platform/internal/config"
	"github.com/hacktopia/platform/internal/health"
	"github.com/hacktopia/platform/internal/mail"
	"github.com/hacktopia/platform/internal/middleware"
	"github.com/hacktopia/platform/internal/notify"
	"github.com/hacktopia/platform/internal/oauth"
	"github.com/hacktopia/platform/internal/scheduler"
	statisticsRouter "github.com/hacktopia/platform/internal/statistics/router"
	teamRouter "github.com/hacktopia/platform/internal/team/router"
	userRouter "github.com/hacktopia/platform/internal/user/router"
	"github.com/hacktopia/platform/internal/user/storage"
)

// app holds the HTTP engine and the components with a lifecycle.
type app struct {
	engine    *gin.Engine
	hub       *notify.Hub
	broker    *notify.RedisBroker
	publisher *notify.Publisher
	scheduler *scheduler.Manager
}

// newApp wires every module on top of db. A nil redisClient selects the
// in-process rate limiter, OAuth state store and event broker.
func newApp(cfg appConfig.Config, db *gorm.DB, redisClient *redis.Client, logger *zap.SugaredLogger) (*app, error) {
	gin.SetMode(cfg.GinMode)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger, "/health"))
	r.Use(middleware.SecureHeaders())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	var (
		limiter middleware.Limiter
		states  oauth.StateStore
	)
	if redisClient != nil {
		redisLimiter, err := middleware.NewRedisLimiter(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window)
		if err != nil {
			return nil, fmt.Errorf("create rate limiter: %w", err)
		}
		limiter = redisLimiter
		states = oauth.NewRedisStateStore(redisClient)
	} else {
		limiter = middleware.NewMemoryLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		states = oauth.NewMemoryStateStore()
	}
	rateLimit := middleware.RateLimit(limiter, logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	requireAuth := middleware.Auth(tokens)

	files, err := storage.NewLocal(cfg.Upload.Dir, cfg.Upload.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare upload storage: %w", err)
	}

	a := &app{engine: r, hub: notify.NewHub(notify.DefaultSubscriberBuffer, logger)}

	var broker notify.Broker = notify.NewLocalBroker(a.hub)
	if redisClient != nil {
		a.broker = notify.NewRedisBroker(redisClient, cfg.Redis.Channel, a.hub, logger)
		broker = a.broker
	}
	a.publisher, err = notify.NewPublisher(broker, notify.DefaultPoolSize, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create event publisher: %w", err)
	}

	api := r.Group("/api/v1", rateLimit)

	userDeps := userRouter.Dependencies{
		Tokens:      tokens,
		Mailer:      mail.New(cfg.Mail, logger),
		Files:       files,
		Auth:        cfg.Auth,
		RequireAuth: requireAuth,
	}
	userSvc := userRouter.NewService(db, userDeps, logger)
	userRouter.RegisterRoutes(api, userSvc, userDeps, logger)

	var googleSvc *oauth.Service
	if cfg.OAuth.Enabled() {
		googleSvc = oauth.New(cfg.OAuth, states, userSvc, logger)
	}
	oauth.NewHandler(googleSvc, logger).RegisterRoutes(api.Group("/auth"))

	teamRouter.RegisterRoutes(r.Group("/api/v1"), db, teamRouter.Dependencies{
		Notifier:       a.publisher,
		Hub:            a.hub,
		KeepAlive:      cfg.Server.EventKeepAlive,
		StrictIdentity: cfg.Auth.StrictIdentity,
		RequireAuth:    requireAuth,
		RateLimit:      rateLimit,
	}, logger)

	statisticsRouter.RegisterRoutes(api, db, logger, requireAuth)

	r.GET("/health", health.New(db, redisClient, logger).Check)

	a.scheduler, err = scheduler.New(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	if err := a.scheduler.RegisterOTPPurge(userSvc, scheduler.DefaultPurgeInterval); err != nil {
		return nil, err
	}

	return a, nil
}
