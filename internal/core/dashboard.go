package core

import (
	"context"
	"time"

	"haccpcore/pkg/domain"
)

// AreaStatus is the day's progress in one area of the kitchen.
type AreaStatus string

const (
	AreaPending    AreaStatus = "pending"
	AreaInProgress AreaStatus = "in_progress"
	AreaCompleted  AreaStatus = "completed"
)

// Dashboard summarises today's food-safety work.
type Dashboard struct {
	Date        time.Time                           `json:"date"`
	Temperature AreaStatus                          `json:"temperature"`
	Checklists  map[domain.ChecklistType]AreaStatus `json:"checklists"`
	Cooling     AreaStatus                          `json:"cooling"`
	Sanitation  AreaStatus                          `json:"sanitation"`
	HACCP       AreaStatus                          `json:"haccp"`

	UnreadAlerts    int `json:"unreadAlerts"`
	OverdueTasks    int `json:"overdueTasks"`
	ActiveCooling   int `json:"activeCooling"`
	OutOfRangeToday int `json:"outOfRangeToday"`
}

// Dashboard computes per-area status for the current day.
//
// Temperature is completed once any reading was taken today. A checklist
// type is pending with no checklist today, in progress while today's
// checklist has open items and completed otherwise. Cooling is in progress
// while any batch is still cooling, completed when a batch finished today and
// pending otherwise. Sanitation is pending with an overdue task, in progress
// with a task due within DueSoonWindow and completed otherwise. HACCP is
// pending without an active plan and in progress while monitoring logs await
// verification or corrective actions are open.
func (s *Service) Dashboard(_ context.Context) Dashboard {
	now := s.clock.Now()
	d := Dashboard{
		Date:        now,
		Temperature: AreaPending,
		Checklists: map[domain.ChecklistType]AreaStatus{
			domain.ChecklistOpening:  AreaPending,
			domain.ChecklistClosing:  AreaPending,
			domain.ChecklistCritical: AreaPending,
		},
		Cooling:    AreaPending,
		Sanitation: AreaCompleted,
		HACCP:      AreaPending,
	}
	s.view(func(state *domain.Snapshot) {
		for _, l := range state.TemperatureLogs {
			if !sameDay(l.Timestamp, now) {
				continue
			}
			d.Temperature = AreaCompleted
			if !l.WithinRange {
				d.OutOfRangeToday++
			}
		}

		for _, c := range state.Checklists {
			if !sameDay(c.Date, now) {
				continue
			}
			switch {
			case c.Completed:
				d.Checklists[c.Type] = AreaCompleted
			case d.Checklists[c.Type] != AreaCompleted:
				d.Checklists[c.Type] = AreaInProgress
			}
		}

		for _, l := range state.CoolingLogs {
			switch {
			case !l.Completed:
				d.ActiveCooling++
			case l.CompletedAt != nil && sameDay(*l.CompletedAt, now) && d.Cooling == AreaPending:
				d.Cooling = AreaCompleted
			}
		}
		if d.ActiveCooling > 0 {
			d.Cooling = AreaInProgress
		}

		dueSoon := false
		for _, t := range state.SanitationTasks {
			switch t.DueState(now) {
			case domain.DueOverdue:
				d.OverdueTasks++
			case domain.DueSoon:
				dueSoon = true
			}
		}
		switch {
		case d.OverdueTasks > 0:
			d.Sanitation = AreaPending
		case dueSoon:
			d.Sanitation = AreaInProgress
		}

		for _, a := range state.Alerts {
			if !a.Read {
				d.UnreadAlerts++
			}
		}

		d.HACCP = haccpStatus(state)
	})
	return d
}

func haccpStatus(state *domain.Snapshot) AreaStatus {
	active := false
	for _, p := range state.Plans {
		if p.Active {
			active = true
			break
		}
	}
	if !active {
		return AreaPending
	}
	for _, l := range state.MonitoringLogs {
		if !l.Verified {
			return AreaInProgress
		}
	}
	for _, l := range state.CorrectiveActionLogs {
		if !l.Closed() {
			return AreaInProgress
		}
	}
	return AreaCompleted
}
