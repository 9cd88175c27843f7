package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/parkinglot-manager/api/routes"
	"github.com/angelmondragon/parkinglot-manager/api/views"
	"github.com/angelmondragon/parkinglot-manager/internal/auth"
	"github.com/angelmondragon/parkinglot-manager/internal/parkinglots"
	"github.com/angelmondragon/parkinglot-manager/internal/seed"
	"github.com/angelmondragon/parkinglot-manager/internal/users"
	"github.com/angelmondragon/parkinglot-manager/pkg/auth/session"
	"github.com/angelmondragon/parkinglot-manager/pkg/config"
	"github.com/angelmondragon/parkinglot-manager/pkg/db"
	"github.com/angelmondragon/parkinglot-manager/pkg/flash"
	"github.com/angelmondragon/parkinglot-manager/pkg/logger"
	"github.com/angelmondragon/parkinglot-manager/pkg/migrate"
	"github.com/angelmondragon/parkinglot-manager/pkg/redis"
	"github.com/angelmondragon/parkinglot-manager/pkg/security"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}
	flashManager, err := flash.NewManager(redisClient, cfg.Session)
	if err != nil {
		return err
	}
	hasher := security.NewPasswordHasher(cfg.Password)

	userRepo := users.NewRepository(dbClient.DB())
	lotRepo := parkinglots.NewRepository(dbClient.DB())

	userService, err := users.NewService(userRepo, hasher)
	if err != nil {
		return err
	}
	lotService, err := parkinglots.NewService(parkinglots.ServiceParams{Repo: lotRepo})
	if err != nil {
		return err
	}
	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		Passwords:      hasher,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		return err
	}

	seeder, err := seed.New(seed.Params{
		Config:    cfg.Seed,
		Users:     userRepo,
		Lots:      lotRepo,
		Passwords: hasher,
		Logger:    logg,
	})
	if err != nil {
		return err
	}
	if err := seeder.Run(ctx); err != nil {
		return err
	}

	renderer, err := views.New(flashManager, logg)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Sessions:    sessionManager,
			Views:       renderer,
			Flash:       flashManager,
			AuthService: authService,
			Users:       userService,
			Lots:        lotService,
			Registry:    registry,
			Gatherer:    registry,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
