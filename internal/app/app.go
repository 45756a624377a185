// Package app assembles the service graph shared by the haccpd and
// haccp-report binaries.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"haccpcore/internal/blob"
	"haccpcore/internal/config"
	"haccpcore/internal/core"
	"haccpcore/internal/export"
	"haccpcore/internal/metrics"
)

// App holds the wired components. Close releases the snapshot store.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Service  *core.Service
	Blob     blob.Store
	Exporter *export.Exporter
	Metrics  *metrics.Metrics
	Expvar   *core.ExpvarMetricsRecorder
	Tracer   *core.JSONTraceTracer
}

// NewLogger returns a JSON slog logger at the configured level.
func NewLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// New opens the snapshot store and blob archive named by cfg and loads the
// core service.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = NewLogger(cfg.LogLevel)
	}
	m := metrics.New()
	ev := core.NewExpvarMetricsRecorder("")
	var traceOut io.Writer
	if cfg.Trace {
		traceOut = os.Stderr
	}
	tracer := core.NewJSONTracer(traceOut)

	store, err := core.OpenSnapshotStore(ctx, cfg.StorageSettings())
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	svc, err := core.Open(ctx, store,
		core.WithLogger(logger.With("component", "haccp")),
		core.WithMetricsRecorder(metricsFanout{m, ev}),
		core.WithTracer(tracer),
		core.WithAuditRecorder(slogAudit{logger: logger.With("component", "audit")}),
		core.WithLimitPolicy(cfg.Policy()),
	)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	archive, err := blob.Open(ctx, cfg.BlobSettings())
	if err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("open report archive: %w", err)
	}
	exp := export.NewExporter(archive, svc,
		export.WithRestaurant(cfg.Restaurant),
		export.WithLogger(logger.With("component", "export")),
		export.WithRecorder(m),
	)

	logger.Info("haccp core ready",
		"storage", cfg.StorageSettings().Driver,
		"archive", archive.Driver(),
		"policy", cfg.Policy(),
		"restaurant", cfg.Restaurant,
	)
	return &App{
		Config:   cfg,
		Logger:   logger,
		Service:  svc,
		Blob:     archive,
		Exporter: exp,
		Metrics:  m,
		Expvar:   ev,
		Tracer:   tracer,
	}, nil
}

// Close releases the snapshot store.
func (a *App) Close() error {
	return a.Service.Close()
}
