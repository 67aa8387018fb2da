package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"github.com/mvaleed/mjcatalog/internal/auth"
	"github.com/mvaleed/mjcatalog/internal/config"
	"github.com/mvaleed/mjcatalog/internal/event"
	"github.com/mvaleed/mjcatalog/internal/jobs"
	"github.com/mvaleed/mjcatalog/internal/service"
	"github.com/mvaleed/mjcatalog/internal/storage/cache"
	"github.com/mvaleed/mjcatalog/internal/storage/postgres"
	grpcTransport "github.com/mvaleed/mjcatalog/internal/transport/grpc"
	httpTransport "github.com/mvaleed/mjcatalog/internal/transport/http"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Setup structured logging
	logger := config.NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	// Run the application
	if err := run(cfg, logger); err != nil {
		logger.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("connecting to database")
	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	logger.Info("database connected")

	if cfg.IsDevelopment() {
		applied, err := db.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		logger.Info("migrations applied", "count", len(applied))
	}

	repos := db.Repositories()

	var (
		redisClient    *redis.Client
		redisPublisher *event.RedisPublisher
	)
	if cfg.CacheEnabled() {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()

		store := cache.NewStore(redisClient, cfg.CacheTTL, logger)
		if err := store.Ping(ctx); err != nil {
			// Reads fall through to Postgres while Redis is down.
			logger.Warn("redis unavailable at startup", "error", err)
		}
		repos = cache.Wrap(repos, store)
		redisPublisher = event.NewRedisPublisher(redisClient)
		logger.Info("read cache enabled", "ttl", cfg.CacheTTL)
	}

	// Initialize event publisher
	publisher, err := event.New(cfg.EventSink, logger, redisPublisher)
	if err != nil {
		return fmt.Errorf("create event publisher: %w", err)
	}
	defer publisher.Close()

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		SecretKey:      cfg.JWTSecretKey,
		AccessTokenTTL: cfg.AccessTokenTTL,
		Issuer:         "mjcatalog",
		Audience:       []string{"mjcatalog"},
	})

	var clients []auth.Client
	if cfg.APIClientSecretHash != "" {
		clients = append(clients, auth.Client{
			ID:         cfg.APIClientID,
			SecretHash: cfg.APIClientSecretHash,
			Scopes:     []string{auth.ScopeCatalogRead, auth.ScopeCatalogWrite},
		})
	} else {
		logger.Warn("API_CLIENT_SECRET_HASH is not set; token issuance is disabled")
	}

	catalog := service.New(repos, publisher, logger)
	authService := service.NewAuthService(clients, jwtManager, logger)

	scheduler, err := jobs.NewScheduler(catalog.History, cfg.HistoryRetention, cfg.HistoryPruneSchedule, logger)
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	scheduler.Start()

	errChan := make(chan error, 2)

	httpServer := httpTransport.NewServer(cfg, catalog, authService, logger)
	httpServer.AddHealthCheck("postgres", db.Ping)
	if redisClient != nil {
		httpServer.AddHealthCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		logger.Info("starting HTTP server", "addr", addr)
		if err := httpServer.ListenAndServe(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	// Start gRPC server
	grpcServer := grpcTransport.NewServer(catalog, authService, logger)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.GRPCPort)
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			errChan <- fmt.Errorf("gRPC listen: %w", err)
			return
		}
		logger.Info("starting gRPC server", "addr", addr)
		if err := grpcServer.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case runErr = <-errChan:
		logger.Error("server error", "error", runErr)
	}

	logger.Info("initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	shutdown(shutdownCtx, logger,
		component{"HTTP server", httpServer.Shutdown},
		component{"gRPC server", func(context.Context) error {
			grpcServer.GracefulStop()
			return nil
		}},
		component{"scheduler", scheduler.Stop},
	)

	cancel()

	logger.Info("shutdown complete")
	return runErr
}

// component is a running part of the server that can be stopped.
type component struct {
	name string
	stop func(context.Context) error
}

// shutdown stops every component in order. A failing stop is logged and
// does not prevent the rest from stopping.
func shutdown(ctx context.Context, logger *slog.Logger, components ...component) {
	for _, c := range components {
		if err := c.stop(ctx); err != nil {
			logger.Error(c.name+" shutdown error", "error", err)
		}
	}
}
