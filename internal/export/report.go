// Package export renders food-safety records for a date window as a
// plain-text report or CSV and archives them in the blob store.
package export

import (
	"fmt"
	"strings"
	"time"

	"haccpcore/pkg/domain"
)

// Period names a reporting window ending now.
type Period string

const (
	PeriodDay     Period = "day"
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
)

// Window is an inclusive time range.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether ts falls inside the window, bounds included.
func (w Window) Contains(ts time.Time) bool {
	return !ts.Before(w.Start) && !ts.After(w.End)
}

// WindowFor returns the window for period ending at now. Windows start at
// midnight of now's day, stepped back by the period length.
func WindowFor(period Period, now time.Time) (Window, error) {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	var start time.Time
	switch Period(strings.ToLower(string(period))) {
	case PeriodDay, "":
		start = today
	case PeriodWeek:
		start = today.AddDate(0, 0, -7)
	case PeriodMonth:
		start = today.AddDate(0, -1, 0)
	case PeriodQuarter:
		start = today.AddDate(0, -3, 0)
	default:
		return Window{}, fmt.Errorf("unknown period %q", period)
	}
	return Window{Start: start, End: now}, nil
}

// Report holds the records that fall inside a window, with plan, CCP,
// equipment and task names resolved for display.
type Report struct {
	Window            Window
	TemperatureLogs   []domain.TemperatureLog
	Checklists        []domain.Checklist
	CoolingLogs       []domain.CoolingLog
	SanitationLogs    []domain.SanitationLog
	MonitoringLogs    []domain.CCPMonitoringLog
	CorrectiveActions []domain.CorrectiveActionLog

	ccpNames       map[string]ccpLabel
	equipmentNames map[string]string
	taskNames      map[string]string
}

type ccpLabel struct {
	plan string
	step string
}

// Build selects the records of snap that fall inside w. Checklists are
// selected by their date and cooling logs by their start time. Records whose
// CCP, equipment or task no longer exists are kept and labelled unknown.
func Build(snap domain.Snapshot, w Window) Report {
	r := Report{
		Window:         w,
		ccpNames:       map[string]ccpLabel{},
		equipmentNames: make(map[string]string, len(snap.Equipment)),
		taskNames:      make(map[string]string, len(snap.SanitationTasks)),
	}
	for _, p := range snap.Plans {
		for _, c := range p.CriticalControlPoints {
			r.ccpNames[c.ID] = ccpLabel{plan: p.Name, step: c.Step}
		}
	}
	for _, e := range snap.Equipment {
		r.equipmentNames[e.ID] = e.Name
	}
	for _, t := range snap.SanitationTasks {
		r.taskNames[t.ID] = t.Name
	}
	for _, l := range snap.TemperatureLogs {
		if w.Contains(l.Timestamp) {
			r.TemperatureLogs = append(r.TemperatureLogs, l)
		}
	}
	for _, c := range snap.Checklists {
		if w.Contains(c.Date) {
			r.Checklists = append(r.Checklists, c.Clone())
		}
	}
	for _, l := range snap.CoolingLogs {
		if w.Contains(l.StartTime) {
			r.CoolingLogs = append(r.CoolingLogs, l.Clone())
		}
	}
	for _, l := range snap.SanitationLogs {
		if w.Contains(l.Timestamp) {
			r.SanitationLogs = append(r.SanitationLogs, l)
		}
	}
	for _, l := range snap.MonitoringLogs {
		if w.Contains(l.Timestamp) {
			r.MonitoringLogs = append(r.MonitoringLogs, l.Clone())
		}
	}
	for _, l := range snap.CorrectiveActionLogs {
		if w.Contains(l.Timestamp) {
			r.CorrectiveActions = append(r.CorrectiveActions, l.Clone())
		}
	}
	return r
}

// Labels returns the plan name and CCP step for a CCP id, falling back to
// "Unknown Plan" / "Unknown CCP".
func (r Report) Labels(ccpID string) (plan, ccp string) {
	label, ok := r.ccpNames[ccpID]
	if !ok {
		return "Unknown Plan", "Unknown CCP"
	}
	return label.plan, label.step
}

// EquipmentName resolves an equipment id, or "Unknown" once it is deleted.
func (r Report) EquipmentName(id string) string {
	return orUnknown(r.equipmentNames[id])
}

// TaskName resolves a sanitation task id, or "Unknown Task".
func (r Report) TaskName(id string) string {
	if name, ok := r.taskNames[id]; ok {
		return name
	}
	return "Unknown Task"
}

// ccpStep is the CCP step for a cooling log, empty when unlinked.
func (r Report) ccpStep(ccpID string) string {
	if ccpID == "" {
		return ""
	}
	_, step := r.Labels(ccpID)
	return step
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func formatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04")
}

func formatClock(t time.Time) string {
	return t.UTC().Format("15:04:05")
}
