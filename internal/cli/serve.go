package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mlindahl/layernet/internal/server"
	"github.com/mlindahl/layernet/pkg/cache"
	"github.com/mlindahl/layernet/pkg/store"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		redisAddr string
		mongoURI  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the network HTTP API",
		Long: `Run the network HTTP API.

The server stores structural documents and serves compiled reports,
layouts, and rendered diagrams. Without --mongo it keeps networks in
memory; without --redis artifact caching is disabled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, redisAddr, mongoURI)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address for artifact caching (host:port)")
	cmd.Flags().StringVar(&mongoURI, "mongo", "", "MongoDB URI for network storage")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, redisAddr, mongoURI string) error {
	var (
		st  store.Store
		err error
	)
	if mongoURI != "" {
		st, err = store.NewMongoStore(ctx, store.MongoConfig{URI: mongoURI})
		if err != nil {
			return fmt.Errorf("connect store: %w", err)
		}
		c.Logger.Info("using mongo store")
	} else {
		st = store.NewMemoryStore()
		c.Logger.Warn("using in-memory store, networks are lost on restart")
	}
	defer st.Close(context.Background())

	var ca cache.Cache
	if redisAddr != "" {
		ca, err = cache.NewRedisCache(ctx, cache.RedisConfig{Addr: redisAddr})
		if err != nil {
			return fmt.Errorf("connect cache: %w", err)
		}
		c.Logger.Info("using redis cache", "addr", redisAddr)
	} else {
		ca = cache.NewNullCache()
	}
	defer ca.Close()

	return server.New(st, ca, c.Logger).ListenAndServe(ctx, addr)
}
