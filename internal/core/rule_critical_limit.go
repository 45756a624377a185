package core

import (
	"context"
	"fmt"

	"haccpcore/pkg/domain"
)

// NewCriticalLimitRule returns the rule reporting every out-of-limit reading
// as a warning. Warnings are stored and raise a corrective action.
func NewCriticalLimitRule() domain.Rule {
	return criticalLimitRule{}
}

type criticalLimitRule struct{}

func (criticalLimitRule) Name() string { return "critical_limit" }

func (criticalLimitRule) Evaluate(_ context.Context, ccp domain.CriticalControlPoint, readings []domain.MonitoringReading) (domain.Result, error) {
	res := domain.Result{}
	for _, r := range readings {
		if r.WithinLimits {
			continue
		}
		msg := fmt.Sprintf("%s at %s reported outside critical limits", domain.FormatReading(r), ccp.Step)
		if limit, ok := ccp.LimitFor(r.Parameter); ok {
			msg = fmt.Sprintf("%s at %s outside critical limit %s", domain.FormatReading(r), ccp.Step, limit.Describe())
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:      "critical_limit",
			Severity:  domain.SeverityWarn,
			Message:   msg,
			Entity:    domain.EntityCCP,
			EntityID:  ccp.ID,
			Parameter: r.Parameter,
		})
	}
	return res, nil
}
