package cli

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vxgraph/pkg/observability"
	"github.com/matzehuels/vxgraph/pkg/server"
	"github.com/matzehuels/vxgraph/pkg/store"
)

// serveOpts holds the command-line flags for the serve command. Empty values
// fall back to the config file.
type serveOpts struct {
	addr     string
	redis    string
	mongo    string
	database string
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis over HTTP",
		Long: `Serve runs the HTTP API (POST /v1/analyze, GET /v1/reports, GET /v1/library)
with Prometheus metrics on /metrics. Reports are cached in Redis when --redis
is given and archived in MongoDB when --mongo is given; otherwise the config
file decides, with an in-memory archive as the last resort.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&opts.redis, "redis", "", "Redis address for the report cache")
	cmd.Flags().StringVar(&opts.mongo, "mongo", "", "MongoDB URI for the report archive")
	cmd.Flags().StringVar(&opts.database, "database", "", "MongoDB database (default vxgraph)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	logger := loggerFromContext(ctx)
	cfg, err := c.config()
	if err != nil {
		return err
	}
	applyServeFlags(&cfg, opts)

	runner, err := c.newRunner(ctx, cfg, false)
	if err != nil {
		return err
	}

	var st store.Store = store.NewMemoryStore()
	if cfg.Store.MongoURI != "" {
		st, err = store.NewMongoStore(ctx, store.MongoConfig{URI: cfg.Store.MongoURI, Database: cfg.Store.Database})
		if err != nil {
			runner.Close()
			return err
		}
		logger.Info("archiving reports in MongoDB", "database", cfg.Store.Database)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	hooks := observability.NewPrometheusHooks()
	hooks.MustRegister(reg)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetServerHooks(hooks)
	defer observability.Reset()

	srv := server.New(server.Config{
		Runner:   runner,
		Store:    st,
		Gatherer: reg,
		Logger:   logger,
	})
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Close(closeCtx); err != nil {
			logger.Warn("close backends", "error", err)
		}
	}()

	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}

// applyServeFlags lets flags override the config file.
func applyServeFlags(cfg *Config, opts serveOpts) {
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	if opts.redis != "" {
		cfg.Cache.Backend = backendRedis
		cfg.Cache.RedisAddr = opts.redis
	}
	if opts.mongo != "" {
		cfg.Store.MongoURI = opts.mongo
	}
	if opts.database != "" {
		cfg.Store.Database = opts.database
	}
}
