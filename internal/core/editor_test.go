package core

import (
	"context"
	"testing"
	"time"

	"haccpcore/pkg/domain"
)

func TestDeleteHazardPrunesCCPReferences(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	plan := mustCreatePlan(t, svc, soupPlan())

	if err := svc.DeleteHazard(ctx, plan.ID, "h-bio"); err != nil {
		t.Fatalf("delete hazard: %v", err)
	}
	got, err := svc.GetPlan(ctx, plan.ID)
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	if _, ok := got.FindHazard("h-bio"); ok {
		t.Fatalf("hazard still present")
	}
	for _, c := range got.CriticalControlPoints {
		for _, ref := range c.Hazards {
			if ref == "h-bio" {
				t.Fatalf("ccp %s still references deleted hazard", c.ID)
			}
		}
	}
	if refs := got.CriticalControlPoints[0].Hazards; len(refs) != 1 || refs[0] != "h-phys" {
		t.Fatalf("expected remaining reference h-phys, got %v", refs)
	}
	if err := svc.DeleteHazard(ctx, plan.ID, "h-bio"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAddAndUpdateHazard(t *testing.T) {
	ctx := context.Background()
	clock := newStepClock()
	svc := newTestService(WithClock(clock))
	plan := mustCreatePlan(t, svc, soupPlan())

	added, err := svc.AddHazardToPlan(ctx, plan.ID, domain.Hazard{ID: "ignored", Name: "Peanut", Type: domain.HazardAllergen})
	if err != nil {
		t.Fatalf("add hazard: %v", err)
	}
	if added.ID == "ignored" || added.ID == "" {
		t.Fatalf("expected a generated hazard id, got %q", added.ID)
	}

	added.Description = "Cross contact from satay"
	if _, err := svc.UpdateHazard(ctx, plan.ID, added); err != nil {
		t.Fatalf("update hazard: %v", err)
	}
	got, _ := svc.GetPlan(ctx, plan.ID)
	h, ok := got.FindHazard(added.ID)
	if !ok || h.Description != "Cross contact from satay" {
		t.Fatalf("expected updated hazard, got %+v", h)
	}

	if _, err := svc.UpdateHazard(ctx, plan.ID, domain.Hazard{ID: "missing", Name: "x", Type: domain.HazardChemical}); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.AddHazardToPlan(ctx, "missing-plan", added); !domain.IsNotFound(err) {
		t.Fatalf("expected plan not found, got %v", err)
	}
	if _, err := svc.AddHazardToPlan(ctx, plan.ID, domain.Hazard{Name: "x"}); !domain.IsInvalidInput(err) {
		t.Fatalf("expected invalid hazard type, got %v", err)
	}
}

func TestAddCCPValidatesHazardReferences(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	plan := mustCreatePlan(t, svc, soupPlan())

	_, err := svc.AddCCPToPlan(ctx, plan.ID, domain.CriticalControlPoint{Step: "Cooling", Hazards: []string{"nope"}})
	if !domain.IsReferentialViolation(err) {
		t.Fatalf("expected referential violation, got %v", err)
	}

	ccp, err := svc.AddCCPToPlan(ctx, plan.ID, domain.CriticalControlPoint{
		Step:    "Cooling",
		Hazards: []string{"h-bio", "h-bio"},
		CriticalLimits: []domain.CriticalLimit{
			{Parameter: "Cooling Time", Maximum: domain.Float(2), Units: "hours"},
		},
		ControlMeasures: []domain.ControlMeasure{{Description: "Ice bath"}},
	})
	if err != nil {
		t.Fatalf("add ccp: %v", err)
	}
	if len(ccp.Hazards) != 1 {
		t.Fatalf("expected duplicate refs collapsed, got %v", ccp.Hazards)
	}
	if ccp.ControlMeasures[0].ID == "" || ccp.CriticalLimits[0].ID == "" {
		t.Fatalf("expected nested ids assigned")
	}
	got, _ := svc.GetPlan(ctx, plan.ID)
	if len(got.CriticalControlPoints) != 2 {
		t.Fatalf("expected two ccps, got %d", len(got.CriticalControlPoints))
	}
}

func TestUpdateAndDeleteCCP(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	plan := mustCreatePlan(t, svc, soupPlan())

	ccp := plan.CriticalControlPoints[0]
	ccp.RecordkeepingProcedures = "Log every batch"
	updated, err := svc.UpdateCCP(ctx, plan.ID, ccp)
	if err != nil {
		t.Fatalf("update ccp: %v", err)
	}
	if updated.RecordkeepingProcedures != "Log every batch" {
		t.Fatalf("expected update applied")
	}

	ccp.Hazards = append(ccp.Hazards, "ghost")
	if _, err := svc.UpdateCCP(ctx, plan.ID, ccp); !domain.IsReferentialViolation(err) {
		t.Fatalf("expected referential violation, got %v", err)
	}
	if _, err := svc.UpdateCCP(ctx, plan.ID, domain.CriticalControlPoint{ID: "missing", Step: "x"}); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := svc.DeleteCCP(ctx, plan.ID, ccp.ID); err != nil {
		t.Fatalf("delete ccp: %v", err)
	}
	if _, _, err := svc.FindCCP(ctx, ccp.ID); !domain.IsNotFound(err) {
		t.Fatalf("expected ccp gone, got %v", err)
	}
	if err := svc.DeleteCCP(ctx, plan.ID, ccp.ID); !domain.IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestEditorTouchesUpdatedAt(t *testing.T) {
	ctx := context.Background()
	clock := newStepClock()
	svc := newTestService(WithClock(clock))
	plan := mustCreatePlan(t, svc, soupPlan())
	clock.advance(30 * time.Minute)

	if _, err := svc.AddHazardToPlan(ctx, plan.ID, domain.Hazard{Name: "Glass", Type: domain.HazardPhysical}); err != nil {
		t.Fatalf("add hazard: %v", err)
	}
	got, _ := svc.GetPlan(ctx, plan.ID)
	if !got.UpdatedAt.Equal(clock.Now()) || !got.CreatedAt.Equal(plan.CreatedAt) {
		t.Fatalf("unexpected timestamps created=%v updated=%v", got.CreatedAt, got.UpdatedAt)
	}
}
