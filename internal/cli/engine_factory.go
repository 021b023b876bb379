package cli

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/internal/config"
	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/adapters/translation/file"
	"github.com/aretw0/lattice/pkg/adapters/translation/redis"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/observability"
	"github.com/aretw0/lattice/pkg/ports"
)

// Runtime bundles what every command needs: configuration, logger and engine.
type Runtime struct {
	Config *config.Config
	Logger *slog.Logger
	Engine *lattice.Engine

	metrics *prometheus.Registry
}

// NewRuntime builds the engine from cfg. Conversion events are always logged;
// when metrics are enabled they are also counted, and Close writes the
// textfile.
func NewRuntime(cfg *config.Config) (*Runtime, error) {
	logger := logging.NewWithOptions(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	rt := &Runtime{Config: cfg, Logger: logger}

	hooks := observability.LoggingHooks(logger)
	if cfg.Metrics.Enabled {
		rt.metrics = prometheus.NewRegistry()
		m, err := observability.NewMetrics(rt.metrics)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		hooks = observability.Chain(hooks, m.Hooks())
	}

	rt.Engine = lattice.New(
		lattice.WithLogger(logger),
		lattice.WithHooks(hooks),
		lattice.WithScratchDir(cfg.ScratchDir),
	)
	return rt, nil
}

// Import returns the configured import options.
func (r *Runtime) Import() domain.ImportOptions {
	return r.Config.Import
}

// Gatherer returns the metrics registry, or nil when metrics are disabled.
func (r *Runtime) Gatherer() prometheus.Gatherer {
	if r.metrics == nil {
		return nil
	}
	return r.metrics
}

// Close flushes the metrics textfile, if enabled.
func (r *Runtime) Close() error {
	if r.metrics == nil || r.Config.Metrics.Textfile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(r.Config.Metrics.Textfile, r.metrics); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", r.Config.Metrics.Textfile, err)
	}
	r.Logger.Debug("metrics written", "path", r.Config.Metrics.Textfile)
	return nil
}

// TranslationStore opens the configured translation backend. The returned
// close function releases its connection, if any.
func (r *Runtime) TranslationStore() (ports.TranslationStore, func() error, error) {
	tc := r.Config.Translations
	switch tc.Backend {
	case config.BackendFile, "":
		return file.New(tc.Dir, file.WithFormat(tc.Format)), func() error { return nil }, nil
	case config.BackendRedis:
		store := redis.New(tc.RedisAddr, tc.RedisPassword, tc.RedisDB,
			redis.WithPrefix(tc.Prefix),
			redis.WithTTL(tc.TTL),
		)
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown translation backend %q", tc.Backend)
	}
}
