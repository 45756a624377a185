package core

import (
	"context"
	"fmt"
	"strings"

	"haccpcore/pkg/domain"
)

// NewUnmeasuredLimitRule returns the rule noting critical limits of the CCP
// that a monitoring event did not measure.
func NewUnmeasuredLimitRule() domain.Rule {
	return unmeasuredLimitRule{}
}

type unmeasuredLimitRule struct{}

func (unmeasuredLimitRule) Name() string { return "unmeasured_limit" }

func (unmeasuredLimitRule) Evaluate(_ context.Context, ccp domain.CriticalControlPoint, readings []domain.MonitoringReading) (domain.Result, error) {
	measured := make(map[string]struct{}, len(readings))
	for _, r := range readings {
		measured[strings.ToLower(strings.TrimSpace(r.Parameter))] = struct{}{}
	}
	res := domain.Result{}
	for _, l := range ccp.CriticalLimits {
		if _, ok := measured[strings.ToLower(strings.TrimSpace(l.Parameter))]; ok {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:      "unmeasured_limit",
			Severity:  domain.SeverityLog,
			Message:   fmt.Sprintf("%s has no reading for %s", ccp.Step, l.Parameter),
			Entity:    domain.EntityCCP,
			EntityID:  ccp.ID,
			Parameter: l.Parameter,
		})
	}
	return res, nil
}
