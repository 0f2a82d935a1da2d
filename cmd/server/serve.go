package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	appConfig "github.com/hacktopia/platform/internal/config"
	"github.com/hacktopia/platform/internal/database/database"
	"github.com/hacktopia/platform/internal/database/migrate"
	"github.com/hacktopia/platform/pkg/retry"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, log)
	if err != nil {
		log.Errorw("failed to connect to database", "error", err)
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warnw("failed to close database", "error", err)
		}
	}()

	if cfg.RunMigrations {
		if err := migrate.Migrate(db, log); err != nil {
			log.Errorw("failed to apply migrations", "error", err)
			return err
		}
	}

	redisClient, err := connectRedis(ctx, cfg.Redis, log)
	if err != nil {
		log.Errorw("failed to connect to redis", "error", err)
		return err
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	a, err := newApp(cfg, db, redisClient, log)
	if err != nil {
		return err
	}

	if a.broker != nil {
		go func() {
			if err := a.broker.Run(ctx); err != nil {
				log.Errorw("event relay stopped", "error", err)
			}
		}()
	}
	a.scheduler.Start()

	srv := &http.Server{
		Addr:         cfg.Server.GetAddress(),
		Handler:      a.engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	srv.RegisterOnShutdown(a.hub.Close)

	serverErr := make(chan error, 1)
	go func() {
		log.Infow("server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Errorw("server failed", "error", err)
			return err
		}
	case <-ctx.Done():
		log.Infow("shutdown signal received")
	}

	return shutdown(srv, a, cfg.Server.ShutdownTimeout, log)
}

func shutdown(srv *http.Server, a *app, timeout time.Duration, log *zap.SugaredLogger) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	if err := srv.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}
	if err := a.publisher.Close(timeout); err != nil {
		errs = append(errs, fmt.Errorf("event publisher: %w", err))
	}
	if err := a.scheduler.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("scheduler: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		log.Errorw("graceful shutdown incomplete", "error", err)
		return err
	}
	log.Infow("server stopped")
	return nil
}

// connectRedis returns nil when Redis is not configured.
func connectRedis(ctx context.Context, cfg appConfig.RedisConfig, log *zap.SugaredLogger) (*redis.Client, error) {
	if !cfg.Enabled() {
		log.Infow("redis not configured, using in-process rate limiting and events")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	retryCfg := retry.RedisConfig()
	retryCfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		log.Warnw("redis ping failed, retrying", "attempt", attempt, "delay", delay, "error", err)
	}
	if err := retry.Do(ctx, retryCfg, func() error {
		return client.Ping(ctx).Err()
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s unreachable: %w", cfg.Addr, err)
	}

	log.Infow("redis connected", "addr", cfg.Addr, "db", cfg.DB)
	return client, nil
}
