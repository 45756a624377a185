package core

import (
	"context"
	"strings"
	"testing"

	"haccpcore/pkg/domain"
)

func TestDefaultRulesEngineRegistration(t *testing.T) {
	svc := newTestService()
	got := strings.Join(svc.Rules(), ",")
	if got != "critical_limit,unmeasured_limit" {
		t.Fatalf("unexpected rules %s", got)
	}
	if svc.Policy() != LimitPolicyTrust {
		t.Fatalf("expected trust policy by default")
	}
}

func TestCriticalLimitRuleMessages(t *testing.T) {
	ccp := soupPlan().CriticalControlPoints[0]
	res, err := NewCriticalLimitRule().Evaluate(context.Background(), ccp, []domain.MonitoringReading{
		reading("Internal Temperature", 150, "°F", false),
		reading("Colour", 2, "", false),
		reading("Internal Temperature", 170, "°F", true),
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 2 {
		t.Fatalf("expected 2 violations, got %d", len(res.Violations))
	}
	if !strings.Contains(res.Violations[0].Message, "min 165 °F") {
		t.Fatalf("expected limit description, got %q", res.Violations[0].Message)
	}
	if !strings.Contains(res.Violations[1].Message, "reported outside critical limits") {
		t.Fatalf("expected unmatched wording, got %q", res.Violations[1].Message)
	}
	if res.HasBlocking() {
		t.Fatalf("critical limit rule must not block")
	}
}

func TestUnmeasuredLimitRule(t *testing.T) {
	ccp := soupPlan().CriticalControlPoints[0]
	ccp.CriticalLimits = append(ccp.CriticalLimits, domain.CriticalLimit{Parameter: "Time", Units: "min"})
	res, err := NewUnmeasuredLimitRule().Evaluate(context.Background(), ccp, []domain.MonitoringReading{
		reading(" internal temperature", 170, "", true),
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 1 || res.Violations[0].Parameter != "Time" || res.Violations[0].Severity != domain.SeverityLog {
		t.Fatalf("unexpected violations %+v", res.Violations)
	}
}
