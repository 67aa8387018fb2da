// Command catalogctl administers the catalog: schema migrations, YAML seeding,
// prompt history pruning and API credentials.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/mvaleed/mjcatalog/internal/config"
	"github.com/mvaleed/mjcatalog/internal/event"
	"github.com/mvaleed/mjcatalog/internal/service"
	"github.com/mvaleed/mjcatalog/internal/storage/cache"
	"github.com/mvaleed/mjcatalog/internal/storage/postgres"
)

type cli struct {
	timeout time.Duration
	verbose bool

	loadConfig func() (*config.Config, error)
}

func main() {
	if err := newRootCmd(config.Load).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	c := &cli{loadConfig: loadConfig}

	root := &cobra.Command{
		Use:          "catalogctl",
		Short:        "Administer the prompt catalog",
		SilenceUsage: true,
	}
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 2*time.Minute, "Operation timeout")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log at debug level to stderr")

	root.AddCommand(
		c.migrateCmd(),
		c.seedCmd(),
		c.pruneHistoryCmd(),
		c.tokenCmd(),
		c.hashSecretCmd(),
	)
	return root
}

func (c *cli) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), c.timeout)
}

func (c *cli) logger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	if !c.verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	debug := *cfg
	debug.LogFormat = "text"
	debug.LogLevel = "debug"
	return config.NewLogger(&debug, cmd.ErrOrStderr())
}

// catalog connects to Postgres, and Redis when configured, and returns the
// catalog services with a cleanup func.
func (c *cli) catalog(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*service.Services, func(), error) {
	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	cleanup := []func(){db.Close}
	closeAll := func() {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	}

	repos := db.Repositories()
	var redisPublisher *event.RedisPublisher
	if cfg.CacheEnabled() {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		cleanup = append(cleanup, func() { _ = client.Close() })
		repos = cache.Wrap(repos, cache.NewStore(client, cfg.CacheTTL, logger))
		redisPublisher = event.NewRedisPublisher(client)
	}

	publisher, err := event.New(cfg.EventSink, logger, redisPublisher)
	if err != nil {
		closeAll()
		return nil, nil, fmt.Errorf("create event publisher: %w", err)
	}
	cleanup = append(cleanup, func() { _ = publisher.Close() })

	return service.New(repos, publisher, logger), closeAll, nil
}
