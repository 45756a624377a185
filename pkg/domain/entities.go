// Package domain defines the HACCP entities, value types, derived workflow
// state, and rule evaluation primitives shared by haccpcore.
package domain

import "time"

// EntityType identifies the type of record tracked by the core.
type EntityType string

// Supported entity type identifiers used in errors, audit entries and persistence buckets.
const (
	// EntityPlan identifies a HACCP plan.
	EntityPlan EntityType = "plan"
	// EntityHazard identifies a hazard owned by a plan.
	EntityHazard EntityType = "hazard"
	// EntityCCP identifies a critical control point owned by a plan.
	EntityCCP EntityType = "ccp"
	// EntityTemplate identifies a read-only plan template.
	EntityTemplate EntityType = "template"
	// EntityMonitoringLog identifies a CCP monitoring record.
	EntityMonitoringLog EntityType = "monitoring_log"
	// EntityCorrectiveAction identifies a corrective-action record.
	EntityCorrectiveAction EntityType = "corrective_action"
)

// HazardType classifies a food-safety hazard.
type HazardType string

// Canonical hazard classes.
const (
	HazardBiological HazardType = "biological"
	HazardChemical   HazardType = "chemical"
	HazardPhysical   HazardType = "physical"
	HazardAllergen   HazardType = "allergen"
)

// Valid reports whether t is one of the four recognised hazard classes.
func (t HazardType) Valid() bool {
	switch t {
	case HazardBiological, HazardChemical, HazardPhysical, HazardAllergen:
		return true
	}
	return false
}

// Hazard is owned by exactly one plan.
type Hazard struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Type        HazardType `json:"type"`
	Description string     `json:"description"`
}

// ControlMeasure describes how a hazard is kept in check at a CCP.
type ControlMeasure struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// CriticalLimit bounds a monitored parameter. Nil bounds are open.
type CriticalLimit struct {
	ID        string   `json:"id"`
	Parameter string   `json:"parameter"`
	Minimum   *float64 `json:"minimum,omitempty"`
	Maximum   *float64 `json:"maximum,omitempty"`
	Units     string   `json:"units"`
}

// MonitoringProcedure states who checks a CCP and how often.
type MonitoringProcedure struct {
	ID                string `json:"id"`
	Description       string `json:"description"`
	Frequency         string `json:"frequency"`
	ResponsiblePerson string `json:"responsiblePerson"`
}

// CorrectiveAction is the planned remedy when a critical limit is breached.
type CorrectiveAction struct {
	ID                string `json:"id"`
	Description       string `json:"description"`
	ResponsiblePerson string `json:"responsiblePerson"`
}

// VerificationActivity describes a periodic check that the plan works.
type VerificationActivity struct {
	ID                string `json:"id"`
	Description       string `json:"description"`
	Frequency         string `json:"frequency"`
	ResponsiblePerson string `json:"responsiblePerson"`
}

// CriticalControlPoint is a process step where control is essential.
// Hazards holds ids of hazards in the owning plan.
type CriticalControlPoint struct {
	ID                         string                 `json:"id"`
	Step                       string                 `json:"step"`
	Hazards                    []string               `json:"hazards"`
	ControlMeasures            []ControlMeasure       `json:"controlMeasures"`
	CriticalLimits             []CriticalLimit        `json:"criticalLimits"`
	MonitoringProcedures       []MonitoringProcedure  `json:"monitoringProcedures"`
	CorrectiveActions          []CorrectiveAction     `json:"correctiveActions"`
	VerificationActivities     []VerificationActivity `json:"verificationActivities"`
	RecordkeepingProcedures    string                 `json:"recordkeepingProcedures"`
	LinkedTemperatureEquipment []string               `json:"linkedTemperatureEquipment,omitempty"`
	LinkedCoolingProcesses     bool                   `json:"linkedCoolingProcesses,omitempty"`
}

// HACCPPlan owns its hazards and critical control points.
type HACCPPlan struct {
	ID                    string                 `json:"id"`
	Name                  string                 `json:"name"`
	Description           string                 `json:"description"`
	Product               string                 `json:"product"`
	IntendedUse           string                 `json:"intendedUse"`
	ProcessFlow           []string               `json:"processFlow"`
	Hazards               []Hazard               `json:"hazards"`
	CriticalControlPoints []CriticalControlPoint `json:"criticalControlPoints"`
	Active                bool                   `json:"active"`
	CreatedAt             time.Time              `json:"createdAt"`
	UpdatedAt             time.Time              `json:"updatedAt"`
}

// FindHazard returns the hazard with the given id.
func (p HACCPPlan) FindHazard(id string) (Hazard, bool) {
	for _, h := range p.Hazards {
		if h.ID == id {
			return h, true
		}
	}
	return Hazard{}, false
}

// FindCCP returns the critical control point with the given id.
func (p HACCPPlan) FindCCP(id string) (CriticalControlPoint, bool) {
	for _, c := range p.CriticalControlPoints {
		if c.ID == id {
			return c, true
		}
	}
	return CriticalControlPoint{}, false
}

// MonitoringReading is one measured parameter inside a monitoring event.
type MonitoringReading struct {
	Parameter    string  `json:"parameter"`
	Value        float64 `json:"value"`
	Units        string  `json:"units"`
	WithinLimits bool    `json:"withinLimits"`
}

// CCPMonitoringLog records a monitoring event. Only the verification fields
// change after creation.
type CCPMonitoringLog struct {
	ID          string              `json:"id"`
	CCPID       string              `json:"ccpId"`
	Timestamp   time.Time           `json:"timestamp"`
	Parameters  []MonitoringReading `json:"parameters"`
	Notes       string              `json:"notes,omitempty"`
	MonitoredBy string              `json:"monitoredBy"`
	Verified    bool                `json:"verified"`
	VerifiedBy  string              `json:"verifiedBy,omitempty"`
	VerifiedAt  *time.Time          `json:"verifiedAt,omitempty"`
}

// OutOfLimits returns the readings that breached their critical limit.
func (l CCPMonitoringLog) OutOfLimits() []MonitoringReading {
	var out []MonitoringReading
	for _, p := range l.Parameters {
		if !p.WithinLimits {
			out = append(out, p)
		}
	}
	return out
}

// CorrectiveActionLog tracks a remedy through verification and follow-up.
// The two axes move independently.
type CorrectiveActionLog struct {
	ID                  string     `json:"id"`
	CCPID               string     `json:"ccpId"`
	MonitoringLogID     string     `json:"monitoringLogId,omitempty"`
	Timestamp           time.Time  `json:"timestamp"`
	Description         string     `json:"description"`
	ActionTaken         string     `json:"actionTaken"`
	TakenBy             string     `json:"takenBy"`
	Verified            bool       `json:"verified"`
	VerifiedBy          string     `json:"verifiedBy,omitempty"`
	VerifiedAt          *time.Time `json:"verifiedAt,omitempty"`
	FollowUpRequired    bool       `json:"followUpRequired"`
	FollowUpDescription string     `json:"followUpDescription,omitempty"`
	FollowUpCompleted   bool       `json:"followUpCompleted"`
	FollowUpCompletedBy string     `json:"followUpCompletedBy,omitempty"`
	FollowUpCompletedAt *time.Time `json:"followUpCompletedAt,omitempty"`
}

// TemplateCCP mirrors CriticalControlPoint but references hazards by their
// position in the template's hazard list.
type TemplateCCP struct {
	Step                    string                 `json:"step"`
	HazardIndices           []int                  `json:"hazardIndices"`
	ControlMeasures         []ControlMeasure       `json:"controlMeasures"`
	CriticalLimits          []CriticalLimit        `json:"criticalLimits"`
	MonitoringProcedures    []MonitoringProcedure  `json:"monitoringProcedures"`
	CorrectiveActions       []CorrectiveAction     `json:"correctiveActions"`
	VerificationActivities  []VerificationActivity `json:"verificationActivities"`
	RecordkeepingProcedures string                 `json:"recordkeepingProcedures"`
}

// HACCPTemplate is read-only seed data shaping a new plan.
type HACCPTemplate struct {
	ID                    string        `json:"id"`
	Name                  string        `json:"name"`
	Description           string        `json:"description"`
	Product               string        `json:"product"`
	IntendedUse           string        `json:"intendedUse"`
	ProcessFlow           []string      `json:"processFlow"`
	Hazards               []Hazard      `json:"hazards"`
	CriticalControlPoints []TemplateCCP `json:"criticalControlPoints"`
}

// Action indicates the type of modification performed.
type Action string

// Change actions recorded in audit entries.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionVerify Action = "verify"
	// ActionFollowUp marks completion of a corrective-action follow-up.
	ActionFollowUp Action = "follow_up"
	// ActionComplete closes a cooling log, ticks a checklist item or records a
	// sanitation task as done.
	ActionComplete Action = "complete"
	// ActionAcknowledge marks an alert as read.
	ActionAcknowledge Action = "acknowledge"
)
