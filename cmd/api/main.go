// Command api serves the employee registry over HTTP.
//
//go:generate swag init -g cmd/api/main.go -d ../.. -o ../../docs
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/99minutos/employee-registry/internal/api"
	"github.com/99minutos/employee-registry/internal/api/handler"
	"github.com/99minutos/employee-registry/internal/api/middleware"
	"github.com/99minutos/employee-registry/internal/core/ports"
	"github.com/99minutos/employee-registry/internal/core/service"
	mongostore "github.com/99minutos/employee-registry/internal/infrastructure/db/mongo"
	pgstore "github.com/99minutos/employee-registry/internal/infrastructure/db/postgres"
	rediscache "github.com/99minutos/employee-registry/internal/infrastructure/db/redis"
	"github.com/99minutos/employee-registry/internal/infrastructure/queue"
	"github.com/99minutos/employee-registry/internal/pkg/config"
	"github.com/99minutos/employee-registry/pkg/logger"
)

// @title        Employee Registry API
// @version      1.0
// @description  CRUD, search and status management for employee records.
// @BasePath     /
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "employee-registry",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	repo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	health := map[string]handler.Pinger{"store": repo}

	var (
		cache        ports.EmployeeCache
		limiterStore limiter.Store = memory.NewStore()
	)
	if cfg.Redis.CacheEnabled {
		redisClient, err := rediscache.Connect(ctx, rediscache.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer redisClient.Close()

		employeeCache := rediscache.NewEmployeeCache(redisClient, cfg.Redis.CacheTTL)
		cache = employeeCache
		health["redis"] = employeeCache

		// Share rate-limit counters across replicas when Redis is available.
		limiterStore, err = redisstore.NewStoreWithOptions(redisClient, limiter.StoreOptions{Prefix: "ratelimit"})
		if err != nil {
			return fmt.Errorf("rate limit store: %w", err)
		}
	}

	rl, err := middleware.NewLimiter(limiterStore, cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("rate limit %q: %w", cfg.RateLimit, err)
	}

	// The serializer outlives the signal context; it stops only after the
	// HTTP server has drained.
	serialCtx, stopSerializer := context.WithCancel(context.Background())
	defer stopSerializer()
	serializer := queue.NewKeyedSerializer(cfg.Serializer.Workers, logger.Component("serializer"))
	serializer.Start(serialCtx)

	svc := service.NewEmployeeService(repo, cache, serializer, logger.Component("employee_service"))

	e := api.NewRouter(api.Dependencies{
		Service: svc,
		Health:  health,
		Limiter: rl,
		Logger:  logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	return drain(e.Shutdown, stopSerializer, cfg.ShutdownTimeout)
}

// drain shuts the HTTP server down within timeout and then stops the
// serializer, so requests still in flight can finish their mutations.
func drain(shutdown func(context.Context) error, stopSerializer context.CancelFunc, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	defer stopSerializer()

	return shutdown(ctx)
}

func openStore(ctx context.Context, cfg *config.Config) (ports.EmployeeRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := pgstore.NewPool(ctx, pgstore.Config{DSN: cfg.Postgres.DSN, MaxConns: cfg.Postgres.MaxConns})
		if err != nil {
			return nil, nil, err
		}
		return pgstore.NewEmployeeRepository(pool), pool.Close, nil

	default:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, err
		}
		repo := mongostore.NewEmployeeRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = mongostore.Disconnect(context.Background(), client)
			return nil, nil, fmt.Errorf("mongo indexes: %w", err)
		}
		closeFn := func() { _ = mongostore.Disconnect(context.Background(), client) }
		return repo, closeFn, nil
	}
}
