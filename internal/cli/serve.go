package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/qroute/internal/api"
	"github.com/matzehuels/qroute/pkg/cache"
	"github.com/matzehuels/qroute/pkg/pipeline"
	"github.com/matzehuels/qroute/pkg/store"
)

// serveCommand creates the serve command exposing the routing API over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		redisURL string
		redisDB  int
		mongoURI string
		mongoDB  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the routing API over HTTP",
		Long: `Serve the routing API over HTTP.

Without flags the server uses the local file cache and keeps routed runs in
memory. Point --redis at a Redis instance to share the result cache across
processes, and --mongo at a MongoDB instance to archive runs durably.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			resultCache, err := buildServeCache(ctx, redisURL, redisDB)
			if err != nil {
				return err
			}

			runStore, err := buildServeStore(ctx, mongoURI, mongoDB)
			if err != nil {
				_ = resultCache.Close()
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = runStore.Close(closeCtx)
			}()

			runner := pipeline.NewRunner(resultCache, logger)
			defer runner.Close()

			server := &http.Server{
				Addr:              addr,
				Handler:           api.NewServer(runner, runStore, logger).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", addr)
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisURL, "redis", "", "Redis address for the shared result cache, e.g. localhost:6379")
	cmd.Flags().IntVar(&redisDB, "redis-db", 0, "Redis database number")
	cmd.Flags().StringVar(&mongoURI, "mongo", "", "MongoDB URI for the run archive, e.g. mongodb://localhost:27017")
	cmd.Flags().StringVar(&mongoDB, "mongo-db", appName, "MongoDB database name")

	return cmd
}

// buildServeCache picks the result cache backend: Redis when configured,
// otherwise the local file cache.
func buildServeCache(ctx context.Context, redisURL string, redisDB int) (cache.Cache, error) {
	if redisURL != "" {
		rc, err := cache.NewRedisCache(ctx, redisURL, "", redisDB)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return rc, nil
	}
	return newCache(false)
}

// buildServeStore picks the run archive backend: MongoDB when configured,
// otherwise in-memory.
func buildServeStore(ctx context.Context, mongoURI, mongoDB string) (store.Store, error) {
	if mongoURI != "" {
		ms, err := store.NewMongoStore(ctx, mongoURI, mongoDB)
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		return ms, nil
	}
	return store.NewMemoryStore(), nil
}
