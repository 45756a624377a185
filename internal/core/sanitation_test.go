package core

import (
	"context"
	"testing"
	"time"

	"haccpcore/pkg/domain"
)

func TestSanitationTaskScheduleAndCompletion(t *testing.T) {
	ctx := context.Background()
	clock := newStepClock()
	svc := newTestService(WithClock(clock))

	task, err := svc.AddSanitationTask(ctx, domain.SanitationTask{
		Name:      "Degrease hood",
		Frequency: domain.SanitationDaily,
		Area:      domain.AreaKitchen,
	})
	if err != nil {
		t.Fatalf("add task: %v", err)
	}
	wantDue := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	if !task.Active || !task.NextDue.Equal(wantDue) {
		t.Fatalf("expected active task due %v, got %+v", wantDue, task)
	}
	if task.DueState(clock.Now()) != domain.DueUpcoming {
		t.Fatalf("expected upcoming 25h out, got %s", task.DueState(clock.Now()))
	}

	clock.advance(26 * time.Hour)
	overdue, err := svc.ListSanitationTasks(ctx, SanitationDueOverdue)
	if err != nil || len(overdue) != 1 {
		t.Fatalf("expected one overdue task, got %+v (%v)", overdue, err)
	}

	if _, err := svc.CompleteSanitationTask(ctx, task.ID, SanitationCompletion{}); !domain.IsInvalidInput(err) {
		t.Fatalf("expected completedBy required, got %v", err)
	}
	log, err := svc.CompleteSanitationTask(ctx, task.ID, SanitationCompletion{CompletedBy: "Luis", Notes: "filters soaked"})
	if err != nil {
		t.Fatalf("complete task: %v", err)
	}
	if log.TaskID != task.ID || !log.Timestamp.Equal(clock.Now()) {
		t.Fatalf("unexpected log %+v", log)
	}

	got, err := svc.GetSanitationTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.LastCompleted == nil || !got.LastCompleted.Equal(clock.Now()) {
		t.Fatalf("expected last completed stamped, got %v", got.LastCompleted)
	}
	if want := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC); !got.NextDue.Equal(want) {
		t.Fatalf("expected rescheduled to %v, got %v", want, got.NextDue)
	}
	if done, _ := svc.ListSanitationTasks(ctx, SanitationDueCompleted); len(done) != 1 {
		t.Fatalf("expected task completed today, got %d", len(done))
	}
	if overdue, _ := svc.ListSanitationTasks(ctx, SanitationDueOverdue); len(overdue) != 0 {
		t.Fatalf("expected nothing overdue after completion, got %d", len(overdue))
	}
	if _, err := svc.ListSanitationTasks(ctx, "someday"); !domain.IsInvalidInput(err) {
		t.Fatalf("expected unknown filter rejected, got %v", err)
	}
}

func TestSanitationTaskValidationAndUpdate(t *testing.T) {
	ctx := context.Background()
	clock := newStepClock()
	svc := newTestService(WithClock(clock))

	if _, err := svc.AddSanitationTask(ctx, domain.SanitationTask{Name: "Mop", Frequency: "hourly"}); !domain.IsInvalidInput(err) {
		t.Fatalf("expected invalid frequency, got %v", err)
	}
	if _, err := svc.AddSanitationTask(ctx, domain.SanitationTask{Name: "Mop", Frequency: domain.SanitationDaily, Area: "roof"}); !domain.IsInvalidInput(err) {
		t.Fatalf("expected invalid area, got %v", err)
	}

	custom, err := svc.AddSanitationTask(ctx, domain.SanitationTask{Name: "Ice machine", Frequency: domain.SanitationCustom})
	if err != nil {
		t.Fatalf("add custom task: %v", err)
	}
	if custom.CustomDays != domain.DefaultCustomDays || custom.Area != domain.AreaOther {
		t.Fatalf("expected defaults applied, got %+v", custom)
	}
	if want := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC); !custom.NextDue.Equal(want) {
		t.Fatalf("expected due %v, got %v", want, custom.NextDue)
	}

	if _, err := svc.CompleteSanitationTask(ctx, custom.ID, SanitationCompletion{CompletedBy: "Ana"}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	stored, _ := svc.GetSanitationTask(ctx, custom.ID)

	edit := custom
	edit.AssignedTo = "Night crew"
	edit.NextDue = time.Time{}
	edit.LastCompleted = nil
	updated, err := svc.UpdateSanitationTask(ctx, edit)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.AssignedTo != "Night crew" || !updated.NextDue.Equal(stored.NextDue) || updated.LastCompleted == nil {
		t.Fatalf("expected schedule and history kept, got %+v", updated)
	}

	edit.Active = false
	if _, err := svc.UpdateSanitationTask(ctx, edit); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if all, _ := svc.ListSanitationTasks(ctx, SanitationDueAll); len(all) != 0 {
		t.Fatalf("expected inactive task hidden, got %d", len(all))
	}

	if err := svc.DeleteSanitationTask(ctx, custom.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetSanitationTask(ctx, custom.ID); !domain.IsNotFound(err) {
		t.Fatalf("expected task gone, got %v", err)
	}
	if logs := svc.ListSanitationLogs(ctx, SanitationLogFilter{TaskID: custom.ID}); len(logs) != 1 {
		t.Fatalf("expected completion log retained, got %d", len(logs))
	}
	if _, err := svc.UpdateSanitationTask(ctx, edit); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
