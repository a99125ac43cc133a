package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/BackofficeGo/internal/auth"
	"github.com/utafrali/BackofficeGo/internal/config"
	"github.com/utafrali/BackofficeGo/internal/event"
	handlerhttp "github.com/utafrali/BackofficeGo/internal/handler/http"
	"github.com/utafrali/BackofficeGo/internal/repository/postgres"
	"github.com/utafrali/BackofficeGo/internal/service"
	"github.com/utafrali/BackofficeGo/migrations"
	"github.com/utafrali/BackofficeGo/pkg/database"
	"github.com/utafrali/BackofficeGo/pkg/health"
	"github.com/utafrali/BackofficeGo/pkg/kafka"
	"github.com/utafrali/BackofficeGo/pkg/middleware"
	"github.com/utafrali/BackofficeGo/pkg/tracing"
)

// App owns the service's long-lived resources and the HTTP server.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	pool     *pgxpool.Pool
	redis    *redis.Client
	producer *kafka.Producer
	server   *http.Server
	shutdown []func(context.Context) error
}

// New wires the whole service together.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	stopTracing, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: "1.0.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
		SampleRate:     cfg.Tracing.SampleRate,
		Enabled:        cfg.Tracing.Enabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.shutdown = append(a.shutdown, stopTracing)

	pool, err := database.NewPostgresPool(ctx, &cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	a.pool = pool

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	database.RegisterPoolMetrics(pool, cfg.ServiceName)

	if cfg.Redis.Enabled {
		client, err := database.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, product cache disabled",
				slog.String("error", err.Error()),
			)
		} else {
			a.redis = client
		}
	}

	var sender event.Sender
	if cfg.Kafka.Enabled {
		a.producer = kafka.NewProducer(kafka.DefaultProducerConfig(cfg.Kafka.Brokers), logger)
		sender = a.producer
	}
	publisher := event.NewPublisher(sender, logger)

	userRepo := postgres.NewUserRepository(pool)
	tokenRepo := postgres.NewTokenRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)

	codec := auth.NewTokenCodec(cfg.JWT.Secret)
	verifier := auth.NewCredentialVerifier()

	authSvc := service.NewAuthService(
		userRepo, tokenRepo, codec, verifier, publisher,
		cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL, logger,
	)
	customerSvc := service.NewCustomerService(customerRepo, logger)
	productSvc := service.NewProductService(productRepo, a.redis, logger)
	orderSvc := service.NewOrderService(orderRepo, customerRepo, productRepo, publisher, logger)

	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if a.redis != nil {
		healthHandler.Register("redis", func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		})
	}
	if a.producer != nil {
		healthHandler.Register("kafka", a.producer.Ping)
	}

	validate := func(ctx context.Context, token string) (*middleware.Claims, error) {
		user, err := authSvc.ValidateAccessToken(ctx, token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: user.ID,
			Email:  user.Email,
			Role:   string(user.Role),
		}, nil
	}

	router := handlerhttp.NewRouter(handlerhttp.RouterDeps{
		Auth:      handlerhttp.NewAuthHandler(authSvc, logger),
		Customers: handlerhttp.NewCustomerHandler(customerSvc, logger),
		Products:  handlerhttp.NewProductHandler(productSvc, logger),
		Orders:    handlerhttp.NewOrderHandler(orderSvc, logger),
		Health:    healthHandler,
		Validate:  validate,
		Service:   cfg.ServiceName,
		Logger:    logger,
	})

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return a, nil
}

// Run starts the HTTP server and blocks until the context is canceled
// or the server fails.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening",
			slog.String("addr", a.server.Addr),
		)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return a.Shutdown()
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}

// Shutdown stops the server and releases all resources.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	a.logger.Info("shutting down")

	var errs []error
	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close kafka producer: %w", err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis client: %w", err))
		}
	}
	a.pool.Close()

	for _, stop := range a.shutdown {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := stop(stopCtx); err != nil {
			errs = append(errs, err)
		}
		stopCancel()
	}

	return errors.Join(errs...)
}
