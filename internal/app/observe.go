package app

import (
	"context"
	"log/slog"
	"time"

	"haccpcore/internal/core"
)

// metricsFanout forwards observations to every recorder.
type metricsFanout []core.MetricsRecorder

func (f metricsFanout) Observe(ctx context.Context, operation string, success bool, d time.Duration) {
	for _, r := range f {
		r.Observe(ctx, operation, success, d)
	}
}

// slogAudit writes audit entries to a dedicated logger.
type slogAudit struct {
	logger *slog.Logger
}

func (a slogAudit) Record(ctx context.Context, e core.AuditEntry) {
	level := slog.LevelInfo
	if e.Status == core.AuditStatusError {
		level = slog.LevelWarn
	}
	a.logger.Log(ctx, level, "audit",
		"operation", e.Operation,
		"entity", e.Entity,
		"action", e.Action,
		"entity_id", e.EntityID,
		"status", e.Status,
		"error", e.Error,
		"duration", e.Duration,
		"at", e.Timestamp,
	)
}
