package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/vxgraph/pkg/cache"
	"github.com/matzehuels/vxgraph/pkg/document"
	"github.com/matzehuels/vxgraph/pkg/observability"
	"github.com/matzehuels/vxgraph/pkg/report"
)

const reportKeyType = "report"

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is the lifetime of cached reports; zero uses cache.TTLReport.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, [cache.NewNullCache] is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute analyzes doc and builds its report, reusing a cached report when
// the same document was analyzed with the same options.
func (r *Runner) Execute(ctx context.Context, doc *document.Document, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Stats: Stats{NodeCount: doc.NodeCount(), EdgeCount: doc.EdgeCount()},
	}
	key := r.Keyer.ReportKey(doc.Hash(), opts.ReportKeyOpts())
	hooks := observability.Cache()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if rep, err := report.Unmarshal(data); err == nil {
				hooks.OnCacheHit(ctx, reportKeyType)
				r.Logger.Debug("report cache hit", "document", doc.Name(), "report", rep.ID)
				result.Report = rep
				result.CacheInfo.ReportHit = true
				return result, nil
			}
		} else if err != nil {
			r.Logger.Warn("cache lookup failed", "error", err)
		}
		hooks.OnCacheMiss(ctx, reportKeyType)
	}

	start := time.Now()
	a, err := Analyze(ctx, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	result.Analysis = a
	result.Stats.StructureTime = time.Since(start)
	if a.Formats != nil {
		result.Stats.FormatsTime = a.Formats.Duration
		result.Stats.StructureTime -= a.Formats.Duration
	}

	result.Report = a.Report()
	stats := result.Report.Stats
	observability.Pipeline().OnDiagnostics(ctx, doc.Name(), stats.Errors, stats.Warnings)
	r.Logger.Info("analyzed document",
		"document", doc.Name(),
		"operators", stats.Operators,
		"images", stats.Images,
		"resolved", stats.Resolved,
		"errors", stats.Errors,
		"warnings", stats.Warnings,
		"duration", time.Since(start))

	if data, err := report.Marshal(result.Report); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.ttl()); err != nil {
			r.Logger.Warn("cache write failed", "error", err)
		} else {
			hooks.OnCacheSet(ctx, reportKeyType, len(data))
		}
	}
	return result, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return cache.TTLReport
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
