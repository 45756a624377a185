package core

import (
	"context"
	"time"

	"haccpcore/pkg/domain"
)

// PlanStatus summarises monitoring and corrective-action activity for a plan.
type PlanStatus struct {
	PlanID                string     `json:"planId"`
	PlanName              string     `json:"planName"`
	Active                bool       `json:"active"`
	Hazards               int        `json:"hazards"`
	CCPs                  int        `json:"ccps"`
	MonitoringLogs        int        `json:"monitoringLogs"`
	UnverifiedLogs        int        `json:"unverifiedLogs"`
	OutOfLimitLogs        int        `json:"outOfLimitLogs"`
	OpenCorrectiveActions int        `json:"openCorrectiveActions"`
	LastMonitoredAt       *time.Time `json:"lastMonitoredAt,omitempty"`
	// LinkedEquipment counts distinct equipment monitored by the plan's CCPs.
	LinkedEquipment       int        `json:"linkedEquipment"`
	OutOfRangeTemperature int        `json:"outOfRangeTemperature"`
	ActiveCoolingLogs     int        `json:"activeCoolingLogs"`
}

// PlanStatus computes dashboard counts for one plan.
func (s *Service) PlanStatus(_ context.Context, planID string) (PlanStatus, error) {
	var (
		status PlanStatus
		found  bool
	)
	s.view(func(state *domain.Snapshot) {
		for _, p := range state.Plans {
			if p.ID == planID {
				status = PlanStatus{
					PlanID:   p.ID,
					PlanName: p.Name,
					Active:   p.Active,
					Hazards:  len(p.Hazards),
					CCPs:     len(p.CriticalControlPoints),
				}
				found = true
				break
			}
		}
		if !found {
			return
		}
		ccps := planCCPSet(state, planID)
		for _, l := range state.MonitoringLogs {
			if _, ok := ccps[l.CCPID]; !ok {
				continue
			}
			status.MonitoringLogs++
			if !l.Verified {
				status.UnverifiedLogs++
			}
			if len(l.OutOfLimits()) > 0 {
				status.OutOfLimitLogs++
			}
			if status.LastMonitoredAt == nil || l.Timestamp.After(*status.LastMonitoredAt) {
				ts := l.Timestamp
				status.LastMonitoredAt = &ts
			}
		}
		for _, l := range state.CorrectiveActionLogs {
			if _, ok := ccps[l.CCPID]; ok && !l.Closed() {
				status.OpenCorrectiveActions++
			}
		}
		equipment := planEquipmentSet(state, planID)
		status.LinkedEquipment = len(equipment)
		for _, l := range state.TemperatureLogs {
			if _, ok := equipment[l.EquipmentID]; ok && !l.WithinRange {
				status.OutOfRangeTemperature++
			}
		}
		for _, l := range state.CoolingLogs {
			if _, ok := ccps[l.CCPID]; ok && !l.Completed {
				status.ActiveCoolingLogs++
			}
		}
	})
	if !found {
		return PlanStatus{}, domain.ErrNotFound{Entity: domain.EntityPlan, ID: planID}
	}
	return status, nil
}

func planEquipmentSet(state *domain.Snapshot, planID string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, p := range state.Plans {
		if p.ID != planID {
			continue
		}
		for _, c := range p.CriticalControlPoints {
			for _, id := range c.LinkedTemperatureEquipment {
				set[id] = struct{}{}
			}
		}
	}
	return set
}
