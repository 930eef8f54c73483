package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/sliceplan/sliceplan/internal/api"
	"github.com/sliceplan/sliceplan/pkg/cache"
	"github.com/sliceplan/sliceplan/pkg/pipeline"
)

// serveCommand creates the `serve` command, which exposes the planning
// pipeline over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		redisAddr string
		redisDB   int
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the planning API over HTTP",
		Long: `Serve starts an HTTP server exposing POST /v1/plan, POST /v1/windowsize and
GET /healthz. By default plans are cached on disk; with --redis-addr the
cache moves to Redis so multiple instances share it.`,
		Example: `  sliceplan serve --addr :8080
  sliceplan serve --addr :8080 --redis-addr localhost:6379`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.serveCache(cmd.Context(), noCache, redisAddr, redisDB)
			if err != nil {
				return err
			}

			runner := pipeline.NewRunner(store, nil, c.Logger)
			defer runner.Close()

			srv := &http.Server{
				Addr:              addr,
				Handler:           api.NewServer(runner, c.Logger).Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				c.Logger.Info("listening", "addr", addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}

			c.Logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "", "redis address for a shared cache (host:port)")
	cmd.Flags().IntVar(&redisDB, "redis-db", 0, "redis database number")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching entirely")

	return cmd
}

// serveCache picks the cache backend for the server: null when disabled,
// Redis when an address is given, file cache otherwise.
func (c *CLI) serveCache(ctx context.Context, noCache bool, redisAddr string, redisDB int) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if redisAddr != "" {
		store, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: redisAddr, DB: redisDB})
		if err != nil {
			return nil, err
		}
		c.Logger.Info("using redis cache", "addr", redisAddr, "db", redisDB)
		return store, nil
	}
	return newCache(false)
}
