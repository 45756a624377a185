package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"haccpcore/internal/templates"
	"haccpcore/pkg/domain"
)

// Logger captures the structured logging methods used by the service. It is
// satisfied by *slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Clock supplies the current time for timestamps stamped by the service.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now returns the function result in UTC, or the current UTC time when nil.
func (f ClockFunc) Now() time.Time {
	if f == nil {
		return time.Now().UTC()
	}
	return f().UTC()
}

// AuditStatus records whether an audited operation succeeded.
type AuditStatus string

// Audit outcomes.
const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusError   AuditStatus = "error"
)

// AuditEntry describes one mutating service call.
type AuditEntry struct {
	Operation string
	Entity    domain.EntityType
	Action    domain.Action
	EntityID  string
	Status    AuditStatus
	Error     string
	Duration  time.Duration
	Timestamp time.Time
}

// AuditRecorder receives audit entries for mutating operations.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

// MetricsRecorder observes the outcome and latency of service operations.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// TraceSpan ends a traced operation.
type TraceSpan interface {
	End(err error)
}

// Tracer starts spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

type noopAuditRecorder struct{}

func (noopAuditRecorder) Record(context.Context, AuditEntry) {}

type noopMetricsRecorder struct{}

func (noopMetricsRecorder) Observe(context.Context, string, bool, time.Duration) {}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}

// TemplateSource resolves templates by id. *templates.Catalog satisfies it.
type TemplateSource interface {
	List() []domain.HACCPTemplate
	Find(id string) (domain.HACCPTemplate, bool)
}

type serviceOptions struct {
	clock     Clock
	logger    Logger
	audit     AuditRecorder
	metrics   MetricsRecorder
	tracer    Tracer
	templates TemplateSource
	engine    *domain.RulesEngine
	policy    LimitPolicy
	newID     func() string
}

func defaultServiceOptions() serviceOptions {
	return serviceOptions{
		clock:     ClockFunc(nil),
		logger:    noopLogger{},
		audit:     noopAuditRecorder{},
		metrics:   noopMetricsRecorder{},
		tracer:    noopTracer{},
		templates: templates.Default(),
		policy:    LimitPolicyTrust,
		newID:     uuid.NewString,
	}
}

// Option customises a Service.
type Option func(*serviceOptions)

// WithClock overrides the time source.
func WithClock(clock Clock) Option {
	return func(o *serviceOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger Logger) Option {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithAuditRecorder sets the audit sink for mutating operations.
func WithAuditRecorder(recorder AuditRecorder) Option {
	return func(o *serviceOptions) {
		if recorder != nil {
			o.audit = recorder
		}
	}
}

// WithMetricsRecorder sets the metrics sink.
func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(o *serviceOptions) {
		if recorder != nil {
			o.metrics = recorder
		}
	}
}

// WithTracer sets the tracer.
func WithTracer(tracer Tracer) Option {
	return func(o *serviceOptions) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithTemplates replaces the built-in template catalog.
func WithTemplates(source TemplateSource) Option {
	return func(o *serviceOptions) {
		if source != nil {
			o.templates = source
		}
	}
}

// WithRulesEngine replaces the monitoring rules engine.
func WithRulesEngine(engine *domain.RulesEngine) Option {
	return func(o *serviceOptions) {
		if engine != nil {
			o.engine = engine
		}
	}
}

// WithLimitPolicy selects how readings without a matching critical limit are treated.
func WithLimitPolicy(policy LimitPolicy) Option {
	return func(o *serviceOptions) {
		if policy != "" {
			o.policy = policy
		}
	}
}

// WithIDGenerator overrides identifier generation.
func WithIDGenerator(fn func() string) Option {
	return func(o *serviceOptions) {
		if fn != nil {
			o.newID = fn
		}
	}
}

// Service owns the HACCP collections and exposes every plan, editor,
// monitoring, corrective-action and facility logging operation. Mutations
// apply to a cloned snapshot which is written to the SnapshotStore and then
// committed.
type Service struct {
	mu    sync.RWMutex
	state domain.Snapshot
	store domain.SnapshotStore

	clock     Clock
	logger    Logger
	audit     AuditRecorder
	metrics   MetricsRecorder
	tracer    Tracer
	templates TemplateSource
	engine    *domain.RulesEngine
	policy    LimitPolicy
	newID     func() string
}

// NewService constructs a service persisting through store. A nil store keeps
// state in memory only. Call Load to hydrate from an existing snapshot.
func NewService(store domain.SnapshotStore, opts ...Option) *Service {
	cfg := defaultServiceOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.engine == nil {
		cfg.engine = NewDefaultRulesEngine()
	}
	return &Service{
		store:     store,
		clock:     cfg.clock,
		logger:    cfg.logger,
		audit:     cfg.audit,
		metrics:   cfg.metrics,
		tracer:    cfg.tracer,
		templates: cfg.templates,
		engine:    cfg.engine,
		policy:    cfg.policy,
		newID:     cfg.newID,
	}
}

// Open constructs a service and loads the persisted snapshot.
func Open(ctx context.Context, store domain.SnapshotStore, opts ...Option) (*Service, error) {
	svc := NewService(store, opts...)
	if err := svc.Load(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

// Load replaces in-memory state with the snapshot held by the store.
func (s *Service) Load(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	snapshot, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	s.mu.Lock()
	s.state = snapshot
	s.mu.Unlock()
	s.logger.Info("haccp snapshot loaded",
		"plans", len(snapshot.Plans),
		"monitoring_logs", len(snapshot.MonitoringLogs),
		"corrective_actions", len(snapshot.CorrectiveActionLogs),
		"temperature_logs", len(snapshot.TemperatureLogs),
		"cooling_logs", len(snapshot.CoolingLogs),
		"sanitation_tasks", len(snapshot.SanitationTasks))
	return nil
}

// Close releases the underlying store.
func (s *Service) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// Policy reports the active limit policy.
func (s *Service) Policy() LimitPolicy { return s.policy }

// Rules lists the registered monitoring rules.
func (s *Service) Rules() []string { return s.engine.Rules() }

// Templates lists the available plan templates.
func (s *Service) Templates() []domain.HACCPTemplate { return s.templates.List() }

// Snapshot returns a deep copy of the current state.
func (s *Service) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

type auditMetadata struct {
	entity domain.EntityType
	action domain.Action
}

var auditOperations = map[string]auditMetadata{
	"create_plan":               {domain.EntityPlan, domain.ActionCreate},
	"create_plan_from_template": {domain.EntityPlan, domain.ActionCreate},
	"update_plan":               {domain.EntityPlan, domain.ActionUpdate},
	"delete_plan":               {domain.EntityPlan, domain.ActionDelete},
	"add_hazard":                {domain.EntityHazard, domain.ActionCreate},
	"update_hazard":             {domain.EntityHazard, domain.ActionUpdate},
	"delete_hazard":             {domain.EntityHazard, domain.ActionDelete},
	"add_ccp":                   {domain.EntityCCP, domain.ActionCreate},
	"update_ccp":                {domain.EntityCCP, domain.ActionUpdate},
	"delete_ccp":                {domain.EntityCCP, domain.ActionDelete},
	"add_monitoring_log":        {domain.EntityMonitoringLog, domain.ActionCreate},
	"verify_monitoring_log":     {domain.EntityMonitoringLog, domain.ActionVerify},
	"add_corrective_action":     {domain.EntityCorrectiveAction, domain.ActionCreate},
	"verify_corrective_action":  {domain.EntityCorrectiveAction, domain.ActionVerify},
	"complete_follow_up":        {domain.EntityCorrectiveAction, domain.ActionFollowUp},
	"add_equipment":             {domain.EntityEquipment, domain.ActionCreate},
	"update_equipment":          {domain.EntityEquipment, domain.ActionUpdate},
	"delete_equipment":          {domain.EntityEquipment, domain.ActionDelete},
	"add_temperature_log":       {domain.EntityTemperatureLog, domain.ActionCreate},
	"mark_alert_read":           {domain.EntityAlert, domain.ActionAcknowledge},
	"clear_alert":               {domain.EntityAlert, domain.ActionDelete},
	"start_cooling_log":         {domain.EntityCoolingLog, domain.ActionCreate},
	"add_cooling_reading":       {domain.EntityCoolingLog, domain.ActionUpdate},
	"complete_cooling_log":      {domain.EntityCoolingLog, domain.ActionComplete},
	"add_checklist":             {domain.EntityChecklist, domain.ActionCreate},
	"add_checklist_item":        {domain.EntityChecklistItem, domain.ActionCreate},
	"update_checklist_item":     {domain.EntityChecklistItem, domain.ActionComplete},
	"add_sanitation_task":       {domain.EntitySanitationTask, domain.ActionCreate},
	"update_sanitation_task":    {domain.EntitySanitationTask, domain.ActionUpdate},
	"delete_sanitation_task":    {domain.EntitySanitationTask, domain.ActionDelete},
	"complete_sanitation_task":  {domain.EntitySanitationTask, domain.ActionComplete},
}

func (s *Service) recordAudit(ctx context.Context, operation, entityID string, duration time.Duration, opErr error) {
	meta, ok := auditOperations[operation]
	if !ok {
		return
	}
	entry := AuditEntry{
		Operation: operation,
		Entity:    meta.entity,
		Action:    meta.action,
		EntityID:  entityID,
		Status:    AuditStatusSuccess,
		Duration:  duration,
		Timestamp: s.clock.Now(),
	}
	if opErr != nil {
		entry.Status = AuditStatusError
		entry.Error = opErr.Error()
	}
	s.audit.Record(ctx, entry)
}

// run wraps an operation with tracing, metrics, audit and logging. fn returns
// the id of the entity it touched.
func (s *Service) run(ctx context.Context, operation string, fn func(ctx context.Context) (string, error)) error {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, operation)
	entityID, err := fn(ctx)
	duration := time.Since(start)
	span.End(err)
	s.metrics.Observe(ctx, operation, err == nil, duration)
	s.recordAudit(ctx, operation, entityID, duration, err)
	if err != nil {
		if isCallerError(err) {
			s.logger.Warn("haccp operation rejected", "operation", operation, "entity_id", entityID, "error", err)
		} else {
			s.logger.Error("haccp operation failed", "operation", operation, "entity_id", entityID, "error", err)
		}
		return err
	}
	s.logger.Debug("haccp operation completed", "operation", operation, "entity_id", entityID, "duration", duration)
	return nil
}

func isCallerError(err error) bool {
	var rv domain.RuleViolationError
	var ti templates.TemplateIndexError
	return domain.IsNotFound(err) || domain.IsInvalidInput(err) || domain.IsReferentialViolation(err) ||
		errors.As(err, &rv) || errors.As(err, &ti)
}
