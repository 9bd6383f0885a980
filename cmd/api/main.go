package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/CameronXie/nsa-protrack/internal/api/rest"
	"github.com/CameronXie/nsa-protrack/internal/api/rest/handlers"
	"github.com/CameronXie/nsa-protrack/internal/api/rest/middlewares"
	"github.com/CameronXie/nsa-protrack/internal/authn"
	"github.com/CameronXie/nsa-protrack/internal/config"
	"github.com/CameronXie/nsa-protrack/internal/domain"
	"github.com/CameronXie/nsa-protrack/internal/keyfetcher"
	"github.com/CameronXie/nsa-protrack/internal/report"
	"github.com/CameronXie/nsa-protrack/internal/repository"
	"github.com/CameronXie/nsa-protrack/internal/repository/postgres"
	"github.com/CameronXie/nsa-protrack/internal/version"
)

const (
	ConfigFileEnv = "CONFIG_FILE"
	PrivateKeyEnv = "PRIVATE_KEY_BASE64"
	PublicKeyEnv  = "PUBLIC_KEY_BASE64"

	redisPingTimeout = 3 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("api_exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv(ConfigFileEnv), os.LookupEnv)
	if err != nil {
		return err
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).With(
		slog.String("version", version.Version),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Postgres.DSN())
	if err != nil {
		return fmt.Errorf("create postgres pool: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}

	users := postgres.NewUserRepository(pool)
	orders := postgres.NewOrderRepository(pool)
	clients := postgres.NewClientRepository(pool)
	credentials := postgres.NewCredentialRepository(pool)
	reports := postgres.NewReportRepository(pool)

	enf, err := newEnforcer(cfg, users, logger)
	if err != nil {
		return err
	}

	locker, closeLocker := newLocker(ctx, cfg.Redis, logger)
	defer closeLocker()

	generator := report.NewGenerator(func(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
		return orders.ListOrders(ctx, userID, repository.OrderFilter{})
	})

	scheduler := report.NewScheduler(
		report.SchedulerConfig{
			Location: cfg.Scheduler.Location(),
			LockTTL:  cfg.Scheduler.LockTTL,
		},
		reports,
		generator,
		report.NewSMTPMailer(report.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			Secure:   cfg.SMTP.Secure,
			Timeout:  cfg.SMTP.Timeout,
		}),
		locker,
		logger,
	)

	privateKey, publicKey := keyFetchers(cfg.JWT)

	router := rest.NewMuxWithHandlers(&rest.RouterConfig{
		Health: handlers.Health(pool),
		Auth: handlers.NewAuthHandler(
			users,
			authn.NewPasswordAuthenticator(users),
			privateKey,
			handlers.TokenConfig{
				Issuer:   cfg.JWT.Issuer,
				Audience: cfg.JWT.Audience,
				TTL:      cfg.JWT.TokenTTL,
			},
			logger,
		),
		Account:     handlers.NewAccountHandler(users, logger),
		Orders:      handlers.NewOrderHandler(orders, logger),
		Clients:     handlers.NewClientHandler(clients, logger),
		Credentials: handlers.NewCredentialHandler(credentials, logger),
		Finances:    handlers.NewFinanceHandler(orders, logger),
		Reports:     handlers.NewReportHandler(reports, scheduler, generator, logger),
		Users:       handlers.NewUserHandler(users, logger),

		AuthenticationMiddleware: middlewares.NewJWTAuthMiddleware(middlewares.JWTConfig{
			KeyFetcher: publicKey,
			Issuer:     cfg.JWT.Issuer,
			Audience:   cfg.JWT.Audience,
			ClockSkew:  cfg.JWT.ClockSkew,
		}, logger),
		AuthorisationMiddleware: middlewares.NewAuthorizationMiddleware(enf, logger),
		SignInRateLimiter: middlewares.NewRateLimitMiddleware(
			cfg.RateLimit.SignInPerMinute,
			cfg.RateLimit.SignInBurst,
			logger,
		),
		RequestLogger: middlewares.NewRequestLogger(logger),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	if cfg.Scheduler.IsEnabled() {
		if err := scheduler.Start(ctx); err != nil {
			return err
		}
	} else {
		logger.Info("report_scheduler_disabled")
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server_starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("server_stopping")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		if cfg.Scheduler.IsEnabled() {
			err = errors.Join(err, scheduler.Stop(shutdownCtx))
		}
		return err
	})

	return g.Wait()
}

// keyFetchers reads keys from files when configured and from base64 environment variables otherwise.
func keyFetchers(cfg config.JWTConfig) (keyfetcher.PrivateKeyFetcher, keyfetcher.PublicKeyFetcher) {
	var private keyfetcher.PrivateKeyFetcher = keyfetcher.FromBase64Env(PrivateKeyEnv)
	if cfg.PrivateKeyFile != "" {
		private = keyfetcher.FromFile(cfg.PrivateKeyFile)
	}

	var public keyfetcher.PublicKeyFetcher = keyfetcher.FromBase64Env(PublicKeyEnv)
	if cfg.PublicKeyFile != "" {
		public = keyfetcher.FromFile(cfg.PublicKeyFile)
	}

	return private, public
}

// newLocker prefers Redis so replicas share run locks, and falls back to an in-process lock
// when Redis is not configured or unreachable.
func newLocker(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (report.Locker, func()) {
	if cfg.Addr == "" {
		logger.Info("report_lock_backend", "backend", "local")
		return report.NewLocalLocker(), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("report_lock_backend", "backend", "local", "redis_addr", cfg.Addr, "error", err)
		_ = client.Close()
		return report.NewLocalLocker(), func() {}
	}

	logger.Info("report_lock_backend", "backend", "redis", "redis_addr", cfg.Addr)
	return report.NewRedisLocker(client), func() { _ = client.Close() }
}
