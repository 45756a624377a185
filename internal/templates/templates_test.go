package templates

import (
	"errors"
	"testing"

	"haccpcore/pkg/domain"
)

func TestDefaultCatalogListsBuiltins(t *testing.T) {
	list := Default().List()
	if len(list) != 3 {
		t.Fatalf("expected 3 templates, got %d", len(list))
	}
	wantIDs := []string{HotFoodPreparationID, ColdFoodStorageID, CoolingProcessID}
	for i, id := range wantIDs {
		if list[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, list[i].ID)
		}
	}
}

func TestFindReturnsDeepCopy(t *testing.T) {
	cat := Default()
	tpl, ok := cat.Find(HotFoodPreparationID)
	if !ok {
		t.Fatalf("expected hot food template")
	}
	tpl.Name = "mutated"
	tpl.CriticalControlPoints[0].HazardIndices[0] = 99
	*tpl.CriticalControlPoints[0].CriticalLimits[0].Minimum = 0

	again, _ := cat.Find(HotFoodPreparationID)
	if again.Name != "Hot Food Preparation HACCP Plan" {
		t.Fatalf("catalog name mutated: %s", again.Name)
	}
	if again.CriticalControlPoints[0].HazardIndices[0] != 0 {
		t.Fatalf("catalog hazard indices mutated")
	}
	if *again.CriticalControlPoints[0].CriticalLimits[0].Minimum != 165 {
		t.Fatalf("catalog limit mutated")
	}
	if _, ok := cat.Find("template-404"); ok {
		t.Fatalf("unexpected template found")
	}
}

func TestResolveCoolingTemplate(t *testing.T) {
	tpl, ok := Default().Find(CoolingProcessID)
	if !ok {
		t.Fatalf("expected cooling template")
	}
	plan, err := Resolve(tpl, "plan-1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(plan.Hazards) != 2 || len(plan.CriticalControlPoints) != 2 {
		t.Fatalf("unexpected shape: %d hazards, %d ccps", len(plan.Hazards), len(plan.CriticalControlPoints))
	}
	if plan.Hazards[0].ID != "plan-1-hazard-0" || plan.Hazards[1].ID != "plan-1-hazard-1" {
		t.Fatalf("unexpected hazard ids: %s, %s", plan.Hazards[0].ID, plan.Hazards[1].ID)
	}
	steps := []string{"Initial Cooling", "Final Cooling"}
	for i, ccp := range plan.CriticalControlPoints {
		if ccp.ID != CCPID("plan-1", i) {
			t.Fatalf("unexpected ccp id %s", ccp.ID)
		}
		if ccp.Step != steps[i] {
			t.Fatalf("unexpected step %s", ccp.Step)
		}
		for _, ref := range ccp.Hazards {
			if _, ok := plan.FindHazard(ref); !ok {
				t.Fatalf("ccp %s references missing hazard %s", ccp.ID, ref)
			}
		}
	}
	if plan.Name != tpl.Name || plan.Product != tpl.Product {
		t.Fatalf("expected template metadata copied")
	}
}

func TestResolveAllBuiltinsHaveNoDanglingRefs(t *testing.T) {
	for _, tpl := range Default().List() {
		plan, err := Resolve(tpl, "p")
		if err != nil {
			t.Fatalf("%s: %v", tpl.ID, err)
		}
		for _, ccp := range plan.CriticalControlPoints {
			if len(ccp.Hazards) == 0 {
				t.Fatalf("%s: ccp %s has no hazards", tpl.ID, ccp.Step)
			}
			for _, ref := range ccp.Hazards {
				if _, ok := plan.FindHazard(ref); !ok {
					t.Fatalf("%s: dangling hazard %s", tpl.ID, ref)
				}
			}
		}
	}
}

func TestResolveOutOfRangeIndex(t *testing.T) {
	tpl := domain.HACCPTemplate{
		ID:      "broken",
		Hazards: []domain.Hazard{{Name: "only", Type: domain.HazardPhysical}},
		CriticalControlPoints: []domain.TemplateCCP{
			{Step: "ok", HazardIndices: []int{0}},
			{Step: "bad", HazardIndices: []int{0, 3}},
		},
	}
	_, err := Resolve(tpl, "p")
	var idxErr TemplateIndexError
	if !errors.As(err, &idxErr) {
		t.Fatalf("expected TemplateIndexError, got %v", err)
	}
	if idxErr.CCPIndex != 1 || idxErr.Index != 3 || idxErr.Hazards != 1 {
		t.Fatalf("unexpected error detail %+v", idxErr)
	}

	tpl.CriticalControlPoints[1].HazardIndices = []int{-1}
	if _, err := Resolve(tpl, "p"); !errors.As(err, &idxErr) {
		t.Fatalf("expected negative index rejected, got %v", err)
	}
}

func TestResolveDoesNotShareTemplateSlices(t *testing.T) {
	tpl, _ := Default().Find(HotFoodPreparationID)
	plan, err := Resolve(tpl, "p")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	plan.ProcessFlow[0] = "changed"
	if tpl.ProcessFlow[0] != "Receiving" {
		t.Fatalf("resolved plan shares process flow with template")
	}
}
