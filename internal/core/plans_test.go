package core

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"haccpcore/internal/templates"
	"haccpcore/pkg/domain"
)

func TestCreatePlanAssignsIDsAndTimestamps(t *testing.T) {
	clock := newStepClock()
	svc := newTestService(WithClock(clock))
	plan := mustCreatePlan(t, svc, soupPlan())

	if plan.ID != "id-1" {
		t.Fatalf("expected generated id, got %s", plan.ID)
	}
	if !plan.CreatedAt.Equal(clock.Now()) || !plan.UpdatedAt.Equal(clock.Now()) {
		t.Fatalf("expected timestamps at clock time, got %v / %v", plan.CreatedAt, plan.UpdatedAt)
	}
	ccp := plan.CriticalControlPoints[0]
	if ccp.CriticalLimits[0].ID == "" {
		t.Fatalf("expected limit id to be assigned")
	}
	if got := svc.ListPlans(context.Background(), PlanFilter{}); len(got) != 1 {
		t.Fatalf("expected one plan, got %d", len(got))
	}
}

func TestCreatePlanValidation(t *testing.T) {
	svc := newTestService()
	cases := map[string]func(p *domain.HACCPPlan){
		"missing name":      func(p *domain.HACCPPlan) { p.Name = " " },
		"missing product":   func(p *domain.HACCPPlan) { p.Product = "" },
		"bad hazard type":   func(p *domain.HACCPPlan) { p.Hazards[0].Type = "radioactive" },
		"duplicate hazards": func(p *domain.HACCPPlan) { p.Hazards[1].ID = p.Hazards[0].ID },
		"min above max": func(p *domain.HACCPPlan) {
			p.CriticalControlPoints[0].CriticalLimits[0].Maximum = domain.Float(100)
		},
	}
	for name, mutate := range cases {
		plan := soupPlan()
		mutate(&plan)
		if _, err := svc.CreatePlan(context.Background(), plan); !domain.IsInvalidInput(err) {
			t.Fatalf("%s: expected invalid input, got %v", name, err)
		}
	}
	if got := svc.ListPlans(context.Background(), PlanFilter{}); len(got) != 0 {
		t.Fatalf("rejected plans must not be stored, got %d", len(got))
	}
}

func TestCreatePlanRejectsDanglingHazardReference(t *testing.T) {
	svc := newTestService()
	plan := soupPlan()
	plan.CriticalControlPoints[0].Hazards = []string{"h-bio", "h-missing"}
	_, err := svc.CreatePlan(context.Background(), plan)
	if !domain.IsReferentialViolation(err) {
		t.Fatalf("expected referential violation, got %v", err)
	}
}

func TestCreatePlanRejectsCCPIDOwnedByAnotherPlan(t *testing.T) {
	svc := newTestService()
	mustCreatePlan(t, svc, soupPlan())
	if _, err := svc.CreatePlan(context.Background(), soupPlan()); !domain.IsInvalidInput(err) {
		t.Fatalf("expected ccp id collision to be rejected, got %v", err)
	}
}

func TestUpdatePlanPreservesCreatedAt(t *testing.T) {
	clock := newStepClock()
	svc := newTestService(WithClock(clock))
	plan := mustCreatePlan(t, svc, soupPlan())
	clock.advance(time.Hour)

	plan.Name = "Soup Kitchen v2"
	plan.CreatedAt = time.Time{}
	plan.UpdatedAt = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	updated, err := svc.UpdatePlan(context.Background(), plan)
	if err != nil {
		t.Fatalf("update plan: %v", err)
	}
	if updated.Name != "Soup Kitchen v2" {
		t.Fatalf("expected name updated, got %s", updated.Name)
	}
	if updated.CreatedAt.Equal(updated.UpdatedAt) || !updated.UpdatedAt.Equal(clock.Now()) {
		t.Fatalf("unexpected timestamps created=%v updated=%v", updated.CreatedAt, updated.UpdatedAt)
	}
	if updated.UpdatedAt.Before(updated.CreatedAt) {
		t.Fatalf("updatedAt must not precede createdAt")
	}
}

func TestUpdatePlanUnknownIDLeavesStateUnchanged(t *testing.T) {
	svc := newTestService()
	mustCreatePlan(t, svc, soupPlan())
	before := svc.Snapshot()

	ghost := soupPlan()
	ghost.ID = "ghost"
	ghost.CriticalControlPoints = nil
	_, err := svc.UpdatePlan(context.Background(), ghost)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if !reflect.DeepEqual(before, svc.Snapshot()) {
		t.Fatalf("state changed after failed update")
	}
}

func TestDeletePlanRetainsLogs(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	plan := mustCreatePlan(t, svc, soupPlan())
	if _, err := svc.AddMonitoringLog(ctx, MonitoringInput{
		CCPID:      "ccp-cook",
		Parameters: []domain.MonitoringReading{reading("Internal Temperature", 150, "°F", true)},
	}); err != nil {
		t.Fatalf("add monitoring log: %v", err)
	}
	if err := svc.DeletePlan(ctx, plan.ID); err != nil {
		t.Fatalf("delete plan: %v", err)
	}
	if _, err := svc.GetPlan(ctx, plan.ID); !domain.IsNotFound(err) {
		t.Fatalf("expected plan gone, got %v", err)
	}
	snap := svc.Snapshot()
	if len(snap.MonitoringLogs) != 1 || len(snap.CorrectiveActionLogs) != 1 {
		t.Fatalf("expected logs retained, got %d/%d", len(snap.MonitoringLogs), len(snap.CorrectiveActionLogs))
	}
	if err := svc.DeletePlan(ctx, plan.ID); !domain.IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestCreatePlanFromTemplateHasNoDanglingReferences(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	for _, tpl := range svc.Templates() {
		plan, err := svc.CreatePlanFromTemplate(ctx, tpl.ID, "")
		if err != nil {
			t.Fatalf("create from %s: %v", tpl.ID, err)
		}
		if plan.Name != tpl.Name || !plan.Active {
			t.Fatalf("expected active plan named after template, got %+v", plan)
		}
		hazards := map[string]bool{}
		for _, h := range plan.Hazards {
			hazards[h.ID] = true
		}
		for _, c := range plan.CriticalControlPoints {
			for _, ref := range c.Hazards {
				if !hazards[ref] {
					t.Fatalf("template %s: ccp %s references missing hazard %s", tpl.ID, c.ID, ref)
				}
			}
		}
	}
}

func TestCreatePlanFromTemplateNaming(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	plan, err := svc.CreatePlanFromTemplate(ctx, templates.ColdFoodStorageID, "  Walk-in Cooler  ")
	if err != nil {
		t.Fatalf("create from template: %v", err)
	}
	if plan.Name != "Walk-in Cooler" {
		t.Fatalf("expected trimmed custom name, got %q", plan.Name)
	}
	if plan.CriticalControlPoints[0].ID != templates.CCPID(plan.ID, 0) {
		t.Fatalf("unexpected ccp id %s", plan.CriticalControlPoints[0].ID)
	}
	if _, err := svc.CreatePlanFromTemplate(ctx, "template-99", ""); !domain.IsNotFound(err) {
		t.Fatalf("expected not found for unknown template, got %v", err)
	}
}

func TestCreatePlanFromTemplateIndexError(t *testing.T) {
	broken := templates.NewCatalog(domain.HACCPTemplate{
		ID:      "broken",
		Name:    "Broken",
		Product: "X",
		Hazards: []domain.Hazard{{Name: "H", Type: domain.HazardChemical}},
		CriticalControlPoints: []domain.TemplateCCP{
			{Step: "Step", HazardIndices: []int{3}},
		},
	})
	svc := newTestService(WithTemplates(broken))
	_, err := svc.CreatePlanFromTemplate(context.Background(), "broken", "")
	var idxErr templates.TemplateIndexError
	if !errors.As(err, &idxErr) {
		t.Fatalf("expected template index error, got %v", err)
	}
	if len(svc.ListPlans(context.Background(), PlanFilter{})) != 0 {
		t.Fatalf("no plan should be stored")
	}
}

func TestListPlansActiveOnly(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	mustCreatePlan(t, svc, soupPlan())
	if _, err := svc.CreatePlanFromTemplate(ctx, templates.HotFoodPreparationID, ""); err != nil {
		t.Fatalf("create from template: %v", err)
	}
	if got := svc.ListPlans(ctx, PlanFilter{ActiveOnly: true}); len(got) != 1 {
		t.Fatalf("expected one active plan, got %d", len(got))
	}
}

func TestFindCCPAndGetPlanReturnCopies(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	plan := mustCreatePlan(t, svc, soupPlan())

	owner, ccp, err := svc.FindCCP(ctx, "ccp-cook")
	if err != nil {
		t.Fatalf("find ccp: %v", err)
	}
	if owner.ID != plan.ID || ccp.Step != "Cooking" {
		t.Fatalf("unexpected ccp lookup %s/%s", owner.ID, ccp.Step)
	}
	ccp.Hazards[0] = "mutated"
	got, _ := svc.GetPlan(ctx, plan.ID)
	if got.CriticalControlPoints[0].Hazards[0] == "mutated" {
		t.Fatalf("returned ccp aliases stored state")
	}
	if _, _, err := svc.FindCCP(ctx, "nope"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
