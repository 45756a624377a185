package core

import (
	"context"
	"testing"
	"time"

	"haccpcore/pkg/domain"
)

func TestDashboardStartsPending(t *testing.T) {
	svc := newTestService()
	d := svc.Dashboard(context.Background())
	if d.Temperature != AreaPending || d.Cooling != AreaPending || d.HACCP != AreaPending {
		t.Fatalf("expected pending areas, got %+v", d)
	}
	if d.Sanitation != AreaCompleted {
		t.Fatalf("expected sanitation completed with no tasks, got %s", d.Sanitation)
	}
	for kind, status := range d.Checklists {
		if status != AreaPending {
			t.Fatalf("expected %s checklist pending, got %s", kind, status)
		}
	}
}

func TestDashboardTracksTodaysWork(t *testing.T) {
	ctx := context.Background()
	clock := newStepClock()
	svc := newTestService(WithClock(clock))

	eq := mustAddEquipment(t, svc, walkIn())
	if _, err := svc.AddTemperatureLog(ctx, TemperatureInput{EquipmentID: eq.ID, Temperature: 48}); err != nil {
		t.Fatalf("add log: %v", err)
	}
	open, _ := svc.AddChecklist(ctx, ChecklistInput{Name: "Open", Type: domain.ChecklistOpening, Items: []string{"Lights"}})
	if _, err := svc.AddChecklist(ctx, ChecklistInput{Name: "Close", Type: domain.ChecklistClosing, Items: []string{"Lock"}}); err != nil {
		t.Fatalf("add checklist: %v", err)
	}
	if _, err := svc.UpdateChecklistItem(ctx, open.ID, open.Items[0].ID, ChecklistItemUpdate{Completed: true, CompletedBy: "Ana"}); err != nil {
		t.Fatalf("tick: %v", err)
	}
	cooling, _ := svc.StartCoolingLog(ctx, CoolingInput{FoodItem: "Stock"})
	if _, err := svc.AddSanitationTask(ctx, domain.SanitationTask{Name: "Floors", Frequency: domain.SanitationDaily}); err != nil {
		t.Fatalf("add task: %v", err)
	}
	plan := soupPlan()
	plan.Active = true
	mustCreatePlan(t, svc, plan)

	d := svc.Dashboard(ctx)
	if d.Temperature != AreaCompleted || d.OutOfRangeToday != 1 || d.UnreadAlerts != 1 {
		t.Fatalf("unexpected temperature summary %+v", d)
	}
	if d.Checklists[domain.ChecklistOpening] != AreaCompleted || d.Checklists[domain.ChecklistClosing] != AreaInProgress || d.Checklists[domain.ChecklistCritical] != AreaPending {
		t.Fatalf("unexpected checklist summary %+v", d.Checklists)
	}
	if d.Cooling != AreaInProgress || d.ActiveCooling != 1 {
		t.Fatalf("expected cooling in progress, got %+v", d)
	}
	if d.Sanitation != AreaCompleted || d.HACCP != AreaCompleted {
		t.Fatalf("expected sanitation and haccp completed, got %s / %s", d.Sanitation, d.HACCP)
	}

	if _, err := svc.CompleteCoolingLog(ctx, cooling.ID); err != nil {
		t.Fatalf("complete cooling: %v", err)
	}
	clock.advance(2 * time.Hour)
	if _, err := svc.AddMonitoringLog(ctx, MonitoringInput{
		CCPID:       "ccp-cook",
		Parameters:  []domain.MonitoringReading{reading("Internal Temperature", 170, "°F", true)},
		MonitoredBy: "Ana",
	}); err != nil {
		t.Fatalf("add monitoring log: %v", err)
	}
	d = svc.Dashboard(ctx)
	if d.Cooling != AreaCompleted || d.Sanitation != AreaInProgress || d.HACCP != AreaInProgress {
		t.Fatalf("expected cooling done, sanitation due soon and haccp awaiting verification, got %+v", d)
	}

	clock.advance(24 * time.Hour)
	d = svc.Dashboard(ctx)
	if d.Temperature != AreaPending || d.Sanitation != AreaPending || d.OverdueTasks != 1 {
		t.Fatalf("expected next day pending with overdue task, got %+v", d)
	}
}
