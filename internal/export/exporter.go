package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"haccpcore/internal/blob"
	"haccpcore/pkg/domain"
)

// Format names an export rendering.
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
)

// Extension returns the object key suffix for the format.
func (f Format) Extension() string {
	if f == FormatCSV {
		return "csv"
	}
	return "txt"
}

func (f Format) contentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "text/plain; charset=utf-8"
}

// Write renders r in format f.
func Write(w io.Writer, f Format, r Report) error {
	switch f {
	case FormatText, "":
		return WriteText(w, r)
	case FormatCSV:
		return WriteCSV(w, r)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}

// SnapshotSource exposes the current state. *core.Service satisfies it.
type SnapshotSource interface {
	Snapshot() domain.Snapshot
}

// Exporter renders reports and archives them in a blob store.
type Exporter struct {
	store      blob.Store
	source     SnapshotSource
	restaurant string
	now        func() time.Time
	newRunID   func() string
	logger     *slog.Logger
	recorder   Recorder
}

// Recorder counts archived reports. *metrics.Metrics satisfies it.
type Recorder interface {
	IncrementReportsArchived(format string)
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithRestaurant scopes object keys to a restaurant.
func WithRestaurant(name string) Option {
	return func(e *Exporter) { e.restaurant = strings.TrimSpace(name) }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRunIDs overrides the generator of per-export key suffixes.
func WithRunIDs(fn func() string) Option {
	return func(e *Exporter) {
		if fn != nil {
			e.newRunID = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRecorder counts uploads on r.
func WithRecorder(r Recorder) Option {
	return func(e *Exporter) { e.recorder = r }
}

// NewExporter builds an Exporter over store and source.
func NewExporter(store blob.Store, source SnapshotSource, opts ...Option) *Exporter {
	e := &Exporter{
		store:    store,
		source:   source,
		now:      time.Now,
		newRunID: uuid.NewString,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result describes one archived report.
type Result struct {
	Format Format    `json:"format"`
	Info   blob.Info `json:"object"`
}

// Export renders the window for period in each requested format and uploads
// them concurrently. With no formats both text and CSV are written; repeated
// formats are written once. Every object of one export shares a run id in its
// key, so exports never collide with each other. When any upload fails the
// objects already written by this export are removed. Results follow the
// order of the de-duplicated formats.
func (e *Exporter) Export(ctx context.Context, period Period, formats ...Format) ([]Result, error) {
	now := e.now().UTC()
	window, err := WindowFor(period, now)
	if err != nil {
		return nil, err
	}
	formats = uniqueFormats(formats)
	if len(formats) == 0 {
		formats = []Format{FormatText, FormatCSV}
	}
	runID := e.newRunID()
	report := Build(e.source.Snapshot(), window)

	results := make([]Result, len(formats))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range formats {
		g.Go(func() error {
			var buf bytes.Buffer
			if err := Write(&buf, f, report); err != nil {
				return err
			}
			key := e.Key(now, runID, f)
			info, err := e.store.Put(gctx, key, &buf, blob.PutOptions{
				ContentType: f.contentType(),
				Metadata: map[string]string{
					"period": string(period),
					"start":  window.Start.Format(time.RFC3339),
					"end":    window.End.Format(time.RFC3339),
					"run":    runID,
				},
			})
			if err != nil {
				return fmt.Errorf("upload %s: %w", key, err)
			}
			results[i] = Result{Format: f, Info: info}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.rollback(ctx, results)
		e.logger.Error("export failed", "period", period, "run", runID, "error", err)
		return nil, err
	}
	if e.recorder != nil {
		for _, r := range results {
			e.recorder.IncrementReportsArchived(string(r.Format))
		}
	}
	e.logger.Info("export archived",
		"period", period,
		"run", runID,
		"temperature_logs", len(report.TemperatureLogs),
		"checklists", len(report.Checklists),
		"cooling_logs", len(report.CoolingLogs),
		"sanitation_logs", len(report.SanitationLogs),
		"monitoring_logs", len(report.MonitoringLogs),
		"corrective_actions", len(report.CorrectiveActions),
		"objects", len(results),
	)
	return results, nil
}

// rollback deletes the objects a failed export managed to upload.
func (e *Exporter) rollback(ctx context.Context, results []Result) {
	for _, r := range results {
		if r.Info.Key == "" {
			continue
		}
		if _, err := e.store.Delete(context.WithoutCancel(ctx), r.Info.Key); err != nil {
			e.logger.Warn("export rollback failed", "key", r.Info.Key, "error", err)
		}
	}
}

func uniqueFormats(in []Format) []Format {
	out := make([]Format, 0, len(in))
	seen := make(map[Format]struct{}, len(in))
	for _, f := range in {
		if f == "" {
			f = FormatText
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// Key returns the object key for the report of one export run generated at ts.
func (e *Exporter) Key(ts time.Time, runID string, f Format) string {
	name := ts.UTC().Format("20060102T150405Z")
	if runID != "" {
		name += "-" + runID
	}
	return path.Join(e.prefix(), name+"."+f.Extension())
}

func (e *Exporter) prefix() string {
	scope := e.restaurant
	if scope == "" {
		scope = "default"
	}
	return path.Join("reports", scope)
}

// List returns archived reports for the exporter's restaurant.
func (e *Exporter) List(ctx context.Context) ([]blob.Info, error) {
	return e.store.List(ctx, e.prefix()+"/")
}
