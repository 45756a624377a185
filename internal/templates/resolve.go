package templates

import (
	"fmt"

	"haccpcore/pkg/domain"
)

// TemplateIndexError reports a template CCP whose hazard index does not point
// into the template's hazard list.
type TemplateIndexError struct {
	TemplateID string
	CCPIndex   int
	Index      int
	Hazards    int
}

func (e TemplateIndexError) Error() string {
	return fmt.Sprintf("template %s ccp %d: hazard index %d out of range [0,%d)", e.TemplateID, e.CCPIndex, e.Index, e.Hazards)
}

// HazardID returns the id minted for the i-th template hazard of a plan.
func HazardID(planID string, i int) string {
	return fmt.Sprintf("%s-hazard-%d", planID, i)
}

// CCPID returns the id minted for the i-th template CCP of a plan.
func CCPID(planID string, i int) string {
	return fmt.Sprintf("%s-ccp-%d", planID, i)
}

// Resolve builds the content of a plan with the given id from a template.
// Hazard indices are mapped to the minted hazard ids in the same pass that
// mints them, so a plan produced here never holds a dangling hazard reference.
// Timestamps, name and active flag are left to the caller.
func Resolve(t domain.HACCPTemplate, planID string) (domain.HACCPPlan, error) {
	t = t.Clone()
	plan := domain.HACCPPlan{
		ID:          planID,
		Name:        t.Name,
		Description: t.Description,
		Product:     t.Product,
		IntendedUse: t.IntendedUse,
		ProcessFlow: t.ProcessFlow,
	}

	hazardIDs := make([]string, len(t.Hazards))
	plan.Hazards = make([]domain.Hazard, len(t.Hazards))
	for i, h := range t.Hazards {
		hazardIDs[i] = HazardID(planID, i)
		h.ID = hazardIDs[i]
		plan.Hazards[i] = h
	}

	plan.CriticalControlPoints = make([]domain.CriticalControlPoint, len(t.CriticalControlPoints))
	for i, tc := range t.CriticalControlPoints {
		refs := make([]string, 0, len(tc.HazardIndices))
		for _, idx := range tc.HazardIndices {
			if idx < 0 || idx >= len(hazardIDs) {
				return domain.HACCPPlan{}, TemplateIndexError{TemplateID: t.ID, CCPIndex: i, Index: idx, Hazards: len(hazardIDs)}
			}
			refs = append(refs, hazardIDs[idx])
		}
		plan.CriticalControlPoints[i] = domain.CriticalControlPoint{
			ID:                      CCPID(planID, i),
			Step:                    tc.Step,
			Hazards:                 refs,
			ControlMeasures:         tc.ControlMeasures,
			CriticalLimits:          tc.CriticalLimits,
			MonitoringProcedures:    tc.MonitoringProcedures,
			CorrectiveActions:       tc.CorrectiveActions,
			VerificationActivities:  tc.VerificationActivities,
			RecordkeepingProcedures: tc.RecordkeepingProcedures,
		}
	}
	return plan, nil
}
