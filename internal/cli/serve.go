package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/qtranspile/internal/server"
	"github.com/matzehuels/qtranspile/pkg/cache"
	"github.com/matzehuels/qtranspile/pkg/observability"
	"github.com/matzehuels/qtranspile/pkg/pipeline"
	"github.com/matzehuels/qtranspile/pkg/store"
)

const (
	// defaultMemoryCacheSize bounds the in-process cache when no Redis URL
	// is configured.
	defaultMemoryCacheSize = 1024

	// defaultMongoDatabase is used when QTRANSPILE_MONGO_DB is unset.
	defaultMongoDatabase = "qtranspile"
)

// serveConfig is the service configuration read from the environment and
// flags.
type serveConfig struct {
	addr      string
	envFile   string
	redisURL  string
	mongoURI  string
	mongoDB   string
	cacheSize int
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var cfg serveConfig

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP compile service",
		Long: `Serve runs the HTTP compile service.

Configuration is read from the environment, optionally loaded from a .env
file first:

  QTRANSPILE_ADDR        listen address (default :8080)
  QTRANSPILE_REDIS_URL   shared result cache; in-memory LRU when unset
  QTRANSPILE_CACHE_SIZE  entries of the in-memory cache (default 1024)
  QTRANSPILE_MONGO_URI   result store; in-memory when unset
  QTRANSPILE_MONGO_DB    database of the result store (default qtranspile)

Flags take precedence over the environment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnv(cfg.envFile); err != nil {
				return err
			}
			if err := cfg.fromEnv(cmd); err != nil {
				return err
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&cfg.envFile, "env-file", ".env", "environment file loaded before reading configuration")

	return cmd
}

// loadEnv loads path into the environment. A missing file is not an error;
// variables already set win.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// fromEnv fills unset fields from QTRANSPILE_* variables.
func (cfg *serveConfig) fromEnv(cmd *cobra.Command) error {
	if v := os.Getenv(envPrefix + "ADDR"); v != "" && !cmd.Flags().Changed("addr") {
		cfg.addr = v
	}
	cfg.redisURL = os.Getenv(envPrefix + "REDIS_URL")
	cfg.mongoURI = os.Getenv(envPrefix + "MONGO_URI")
	cfg.mongoDB = os.Getenv(envPrefix + "MONGO_DB")
	if cfg.mongoDB == "" {
		cfg.mongoDB = defaultMongoDatabase
	}
	cfg.cacheSize = defaultMemoryCacheSize
	if v := os.Getenv(envPrefix + "CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid %sCACHE_SIZE %q", envPrefix, v)
		}
		cfg.cacheSize = n
	}
	return nil
}

// runServe wires the cache, the store and the metrics into a server and
// blocks until ctx ends.
func (c *CLI) runServe(ctx context.Context, cfg serveConfig) error {
	logger := loggerFromContext(ctx)

	rc, err := serveCache(ctx, cfg)
	if err != nil {
		return err
	}
	st, err := serveStore(ctx, cfg)
	if err != nil {
		rc.Close()
		return err
	}
	defer st.Close(context.WithoutCancel(ctx))

	hooks := observability.NewPrometheusHooks(prometheus.DefaultRegisterer)
	observability.SetPassHooks(hooks)
	observability.SetCompileHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)

	runner := pipeline.NewRunner(rc, nil, logger)
	defer runner.Close()

	printInfo("Starting %s service", appName)
	printKeyValue("Address", cfg.addr)
	printKeyValue("Cache", describeBackend(cfg.redisURL, "redis", fmt.Sprintf("memory (%d entries)", cfg.cacheSize)))
	printKeyValue("Store", describeBackend(cfg.mongoURI, "mongodb", "memory"))

	srv := server.New(server.Config{
		Addr:   cfg.addr,
		Runner: runner,
		Store:  st,
		Logger: logger,
	})
	return srv.ListenAndServe(ctx)
}

func serveCache(ctx context.Context, cfg serveConfig) (cache.Cache, error) {
	if cfg.redisURL == "" {
		return cache.NewMemoryCache(cfg.cacheSize)
	}
	rc, err := cache.DialRedis(ctx, cfg.redisURL)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return rc, nil
}

func serveStore(ctx context.Context, cfg serveConfig) (store.Store, error) {
	if cfg.mongoURI == "" {
		return store.NewMemoryStore(), nil
	}
	ms, err := store.DialMongo(ctx, cfg.mongoURI, cfg.mongoDB)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return ms, nil
}

// describeBackend names a configured backend without leaking credentials.
func describeBackend(url, kind, fallback string) string {
	if url == "" {
		return fallback
	}
	return kind
}
