package core

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"haccpcore/pkg/domain"
)

// seqIDs returns a deterministic id generator: id-1, id-2, ...
func seqIDs() func() string {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestService(opts ...Option) *Service {
	base := []Option{WithIDGenerator(seqIDs()), WithClock(newStepClock())}
	return NewService(nil, append(base, opts...)...)
}

// soupPlan is a plan with two hazards and one CCP bounded at 165 °F.
func soupPlan() domain.HACCPPlan {
	return domain.HACCPPlan{
		Name:    "Soup Kitchen",
		Product: "Soup",
		Hazards: []domain.Hazard{
			{ID: "h-bio", Name: "Salmonella", Type: domain.HazardBiological},
			{ID: "h-phys", Name: "Bone fragments", Type: domain.HazardPhysical},
		},
		CriticalControlPoints: []domain.CriticalControlPoint{{
			ID:      "ccp-cook",
			Step:    "Cooking",
			Hazards: []string{"h-bio", "h-phys"},
			CriticalLimits: []domain.CriticalLimit{
				{Parameter: "Internal Temperature", Minimum: domain.Float(165), Units: "°F"},
			},
		}},
	}
}

func mustCreatePlan(t *testing.T, svc *Service, plan domain.HACCPPlan) domain.HACCPPlan {
	t.Helper()
	created, err := svc.CreatePlan(t.Context(), plan)
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	return created
}

func reading(param string, value float64, units string, within bool) domain.MonitoringReading {
	return domain.MonitoringReading{Parameter: param, Value: value, Units: units, WithinLimits: within}
}
