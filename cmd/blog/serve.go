package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/quillpost/blog/internal/api"
	"github.com/quillpost/blog/internal/core/service"
	"github.com/quillpost/blog/internal/infrastructure/config"
	"github.com/quillpost/blog/internal/infrastructure/db/redis"
	"github.com/quillpost/blog/internal/infrastructure/http/handlers"
	"github.com/quillpost/blog/internal/infrastructure/session"
	"github.com/quillpost/blog/pkg/logger"
)

const (
	shutdownTimeout = 10 * time.Second
	readinessPing   = 2 * time.Second
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := logger.Init(logger.OptionsFor(cfg.Env, cfg.LogLevel))

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.close(context.Background()) }()
	checks := []handlers.Check{store.check}

	var rdb *goredis.Client
	if cfg.UsesRedis() {
		rdb, err = redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		checks = append(checks, handlers.Check{Name: "redis", Ping: func(ctx context.Context) error {
			return redis.Ping(ctx, rdb, readinessPing)
		}})
	}

	storeCfg := session.StoreConfig{
		Backend: cfg.Session.Backend,
		Secret:  cfg.Session.Secret,
		TTL:     cfg.Session.TTL,
		Secure:  cfg.Session.CookieSecure,
	}
	sessionStore, err := session.NewStore(storeCfg, rdb)
	if err != nil {
		return err
	}

	authService, err := service.NewAuthService(store.users, bcrypt.DefaultCost, log)
	if err != nil {
		return err
	}

	e := api.NewRouter(api.Dependencies{
		AuthService: authService,
		PostService: service.NewPostService(store.posts, log),
		Sessions:    session.NewManager(sessionStore, storeCfg),
		Checks:      checks,
		Logger:      log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("store", cfg.StoreDriver).
			Str("sessions", cfg.Session.Backend).
			Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
