package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"haccpcore/pkg/domain"
)

// LimitPolicy decides how a reading without a matching critical limit is
// evaluated.
type LimitPolicy string

const (
	// LimitPolicyTrust keeps the caller-supplied withinLimits flag for readings
	// the CCP defines no limit for.
	LimitPolicyTrust LimitPolicy = "trust"
	// LimitPolicyStrict rejects readings the CCP defines no limit for.
	LimitPolicyStrict LimitPolicy = "strict"
)

// ParseLimitPolicy maps a configuration value to a LimitPolicy. Empty selects trust.
func ParseLimitPolicy(v string) (LimitPolicy, error) {
	switch LimitPolicy(strings.ToLower(strings.TrimSpace(v))) {
	case "", LimitPolicyTrust:
		return LimitPolicyTrust, nil
	case LimitPolicyStrict:
		return LimitPolicyStrict, nil
	default:
		return "", fmt.Errorf("unknown limit policy %q", v)
	}
}

// Corrective-action text raised for out-of-limit monitoring.
const (
	autoActionTaken       = "Corrective action required"
	autoDescriptionPrefix = "Parameters outside critical limits: "
)

// MonitoringInput is one monitoring event submitted against a CCP.
type MonitoringInput struct {
	CCPID       string                     `json:"ccpId"`
	Parameters  []domain.MonitoringReading `json:"parameters"`
	Notes       string                     `json:"notes,omitempty"`
	MonitoredBy string                     `json:"monitoredBy"`
}

// MonitoringOutcome is the result of AddMonitoringLog. CorrectiveAction is set
// when at least one reading was out of limits.
type MonitoringOutcome struct {
	Log              domain.CCPMonitoringLog     `json:"log"`
	CorrectiveAction *domain.CorrectiveActionLog `json:"correctiveAction,omitempty"`
	Violations       []domain.Violation          `json:"violations,omitempty"`
}

// MonitoringFilter narrows ListMonitoringLogs. Zero values match everything.
type MonitoringFilter struct {
	CCPID  string
	PlanID string
	Since  time.Time
	Until  time.Time
}

// Evaluate computes withinLimits for each reading from the CCP's critical
// limits. Readings are matched to limits by parameter name, ignoring case and
// surrounding space. A reading with no matching limit keeps its supplied flag
// under LimitPolicyTrust and fails with ErrUnknownParameter under
// LimitPolicyStrict. The input slice is not modified.
func Evaluate(ccp domain.CriticalControlPoint, readings []domain.MonitoringReading, policy LimitPolicy) ([]domain.MonitoringReading, error) {
	out := make([]domain.MonitoringReading, len(readings))
	for i, r := range readings {
		if strings.TrimSpace(r.Parameter) == "" {
			return nil, domain.ErrInvalidInput{Field: fmt.Sprintf("parameters[%d].parameter", i), Reason: "required"}
		}
		limit, ok := ccp.LimitFor(r.Parameter)
		switch {
		case ok:
			r.WithinLimits = limit.Within(r.Value)
			if r.Units == "" {
				r.Units = limit.Units
			}
		case policy == LimitPolicyStrict:
			return nil, domain.ErrUnknownParameter{CCPID: ccp.ID, Parameter: r.Parameter}
		}
		out[i] = r
	}
	return out, nil
}

// maybeTriggerCorrectiveAction builds the pending corrective action for a
// monitoring log with out-of-limit readings. It reports false when every
// reading is within limits.
func maybeTriggerCorrectiveAction(log domain.CCPMonitoringLog, id string) (domain.CorrectiveActionLog, bool) {
	deviations := log.OutOfLimits()
	if len(deviations) == 0 {
		return domain.CorrectiveActionLog{}, false
	}
	parts := make([]string, len(deviations))
	for i, d := range deviations {
		parts[i] = domain.FormatReading(d)
	}
	return domain.CorrectiveActionLog{
		ID:               id,
		CCPID:            log.CCPID,
		MonitoringLogID:  log.ID,
		Timestamp:        log.Timestamp,
		Description:      autoDescriptionPrefix + strings.Join(parts, ", "),
		ActionTaken:      autoActionTaken,
		TakenBy:          log.MonitoredBy,
		FollowUpRequired: true,
	}, true
}

// AddMonitoringLog records a monitoring event. Readings are evaluated against
// the CCP's limits, then the rules engine runs; when any reading is out of
// limits a corrective action is raised and committed together with the log.
func (s *Service) AddMonitoringLog(ctx context.Context, in MonitoringInput) (MonitoringOutcome, error) {
	var outcome MonitoringOutcome
	err := s.run(ctx, "add_monitoring_log", func(ctx context.Context) (string, error) {
		err := s.mutate(ctx, func(tx *Transaction) error {
			if len(in.Parameters) == 0 {
				return domain.ErrInvalidInput{Field: "parameters", Reason: "at least one reading required"}
			}
			_, ccp, err := tx.ccp(in.CCPID)
			if err != nil {
				return err
			}
			readings, err := Evaluate(ccp, in.Parameters, s.policy)
			if err != nil {
				return err
			}
			res, err := s.engine.Evaluate(ctx, ccp, readings)
			if err != nil {
				return err
			}
			if res.HasBlocking() {
				return domain.RuleViolationError{Result: res}
			}

			log := domain.CCPMonitoringLog{
				ID:          tx.newID(),
				CCPID:       ccp.ID,
				Timestamp:   tx.now,
				Parameters:  readings,
				Notes:       in.Notes,
				MonitoredBy: in.MonitoredBy,
			}
			tx.state.MonitoringLogs = append(tx.state.MonitoringLogs, log)
			outcome = MonitoringOutcome{Log: log.Clone(), Violations: res.Violations}

			if action, ok := maybeTriggerCorrectiveAction(log, tx.newID()); ok {
				tx.state.CorrectiveActionLogs = append(tx.state.CorrectiveActionLogs, action)
				cp := action.Clone()
				outcome.CorrectiveAction = &cp
			}
			return nil
		})
		return outcome.Log.ID, err
	})
	if err != nil {
		return MonitoringOutcome{}, err
	}
	if outcome.CorrectiveAction != nil {
		s.logger.Warn("critical limit deviation",
			"ccp_id", outcome.Log.CCPID,
			"monitoring_log_id", outcome.Log.ID,
			"corrective_action_id", outcome.CorrectiveAction.ID,
			"description", outcome.CorrectiveAction.Description)
	}
	return outcome, nil
}

// VerifyMonitoringLog marks a log verified. Verification is one-way; verifying
// an already verified log keeps the original verifier and time.
func (s *Service) VerifyMonitoringLog(ctx context.Context, logID, verifiedBy string) (domain.CCPMonitoringLog, error) {
	var verified domain.CCPMonitoringLog
	err := s.run(ctx, "verify_monitoring_log", func(ctx context.Context) (string, error) {
		return logID, s.mutate(ctx, func(tx *Transaction) error {
			if strings.TrimSpace(verifiedBy) == "" {
				return domain.ErrInvalidInput{Field: "verifiedBy", Reason: "required"}
			}
			idx := monitoringIndex(&tx.state, logID)
			if idx < 0 {
				return domain.ErrNotFound{Entity: domain.EntityMonitoringLog, ID: logID}
			}
			log := &tx.state.MonitoringLogs[idx]
			if !log.Verified {
				now := tx.now
				log.Verified = true
				log.VerifiedBy = verifiedBy
				log.VerifiedAt = &now
			}
			verified = log.Clone()
			return nil
		})
	})
	if err != nil {
		return domain.CCPMonitoringLog{}, err
	}
	return verified, nil
}

// GetMonitoringLog returns the monitoring log with the given id.
func (s *Service) GetMonitoringLog(_ context.Context, id string) (domain.CCPMonitoringLog, error) {
	var (
		out   domain.CCPMonitoringLog
		found bool
	)
	s.view(func(state *domain.Snapshot) {
		if idx := monitoringIndex(state, id); idx >= 0 {
			out, found = state.MonitoringLogs[idx].Clone(), true
		}
	})
	if !found {
		return domain.CCPMonitoringLog{}, domain.ErrNotFound{Entity: domain.EntityMonitoringLog, ID: id}
	}
	return out, nil
}

// ListMonitoringLogs returns logs in the order they were recorded.
func (s *Service) ListMonitoringLogs(_ context.Context, filter MonitoringFilter) []domain.CCPMonitoringLog {
	var out []domain.CCPMonitoringLog
	s.view(func(state *domain.Snapshot) {
		ccps := planCCPSet(state, filter.PlanID)
		out = make([]domain.CCPMonitoringLog, 0, len(state.MonitoringLogs))
		for _, l := range state.MonitoringLogs {
			if filter.CCPID != "" && l.CCPID != filter.CCPID {
				continue
			}
			if ccps != nil {
				if _, ok := ccps[l.CCPID]; !ok {
					continue
				}
			}
			if !inWindow(l.Timestamp, filter.Since, filter.Until) {
				continue
			}
			out = append(out, l.Clone())
		}
	})
	return out
}

// planCCPSet returns the CCP ids of a plan, or nil when planID is empty. An
// unknown plan yields an empty non-nil set so that nothing matches.
func planCCPSet(state *domain.Snapshot, planID string) map[string]struct{} {
	if planID == "" {
		return nil
	}
	set := map[string]struct{}{}
	for _, p := range state.Plans {
		if p.ID != planID {
			continue
		}
		for _, c := range p.CriticalControlPoints {
			set[c.ID] = struct{}{}
		}
	}
	return set
}

func inWindow(ts, since, until time.Time) bool {
	if !since.IsZero() && ts.Before(since) {
		return false
	}
	if !until.IsZero() && ts.After(until) {
		return false
	}
	return true
}
