package domain

import "time"

func cloneTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneFloatPtr(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneLimits(in []CriticalLimit) []CriticalLimit {
	if in == nil {
		return nil
	}
	out := make([]CriticalLimit, len(in))
	for i, l := range in {
		l.Minimum = cloneFloatPtr(l.Minimum)
		l.Maximum = cloneFloatPtr(l.Maximum)
		out[i] = l
	}
	return out
}

// Clone returns a deep copy of the CCP.
func (c CriticalControlPoint) Clone() CriticalControlPoint {
	cp := c
	cp.Hazards = cloneStrings(c.Hazards)
	cp.ControlMeasures = append([]ControlMeasure(nil), c.ControlMeasures...)
	cp.CriticalLimits = cloneLimits(c.CriticalLimits)
	cp.MonitoringProcedures = append([]MonitoringProcedure(nil), c.MonitoringProcedures...)
	cp.CorrectiveActions = append([]CorrectiveAction(nil), c.CorrectiveActions...)
	cp.VerificationActivities = append([]VerificationActivity(nil), c.VerificationActivities...)
	cp.LinkedTemperatureEquipment = cloneStrings(c.LinkedTemperatureEquipment)
	return cp
}

// Clone returns a deep copy of the plan including hazards and CCPs.
func (p HACCPPlan) Clone() HACCPPlan {
	cp := p
	cp.ProcessFlow = cloneStrings(p.ProcessFlow)
	cp.Hazards = append([]Hazard(nil), p.Hazards...)
	if p.CriticalControlPoints != nil {
		cp.CriticalControlPoints = make([]CriticalControlPoint, len(p.CriticalControlPoints))
		for i, c := range p.CriticalControlPoints {
			cp.CriticalControlPoints[i] = c.Clone()
		}
	}
	return cp
}

// Clone returns a deep copy of the monitoring log.
func (l CCPMonitoringLog) Clone() CCPMonitoringLog {
	cp := l
	cp.Parameters = append([]MonitoringReading(nil), l.Parameters...)
	cp.VerifiedAt = cloneTimePtr(l.VerifiedAt)
	return cp
}

// Clone returns a deep copy of the corrective-action log.
func (l CorrectiveActionLog) Clone() CorrectiveActionLog {
	cp := l
	cp.VerifiedAt = cloneTimePtr(l.VerifiedAt)
	cp.FollowUpCompletedAt = cloneTimePtr(l.FollowUpCompletedAt)
	return cp
}

// Clone returns a deep copy of the template.
func (t HACCPTemplate) Clone() HACCPTemplate {
	cp := t
	cp.ProcessFlow = cloneStrings(t.ProcessFlow)
	cp.Hazards = append([]Hazard(nil), t.Hazards...)
	if t.CriticalControlPoints != nil {
		cp.CriticalControlPoints = make([]TemplateCCP, len(t.CriticalControlPoints))
		for i, c := range t.CriticalControlPoints {
			c.HazardIndices = append([]int(nil), c.HazardIndices...)
			c.ControlMeasures = append([]ControlMeasure(nil), c.ControlMeasures...)
			c.CriticalLimits = cloneLimits(c.CriticalLimits)
			c.MonitoringProcedures = append([]MonitoringProcedure(nil), c.MonitoringProcedures...)
			c.CorrectiveActions = append([]CorrectiveAction(nil), c.CorrectiveActions...)
			c.VerificationActivities = append([]VerificationActivity(nil), c.VerificationActivities...)
			cp.CriticalControlPoints[i] = c
		}
	}
	return cp
}
