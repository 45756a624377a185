package core

import (
	"context"
	"strings"

	"haccpcore/pkg/domain"
)

// AddHazardToPlan appends a hazard to the plan under a fresh id.
func (s *Service) AddHazardToPlan(ctx context.Context, planID string, hazard domain.Hazard) (domain.Hazard, error) {
	var created domain.Hazard
	err := s.run(ctx, "add_hazard", func(ctx context.Context) (string, error) {
		err := s.mutate(ctx, func(tx *Transaction) error {
			p, err := tx.plan(planID)
			if err != nil {
				return err
			}
			if err := validateHazard(hazard); err != nil {
				return err
			}
			hazard.ID = tx.newID()
			p.Hazards = append(p.Hazards, hazard)
			tx.touch(p)
			created = hazard
			return nil
		})
		return created.ID, err
	})
	if err != nil {
		return domain.Hazard{}, err
	}
	return created, nil
}

// UpdateHazard replaces the hazard with the same id inside the plan.
func (s *Service) UpdateHazard(ctx context.Context, planID string, hazard domain.Hazard) (domain.Hazard, error) {
	err := s.run(ctx, "update_hazard", func(ctx context.Context) (string, error) {
		return hazard.ID, s.mutate(ctx, func(tx *Transaction) error {
			p, err := tx.plan(planID)
			if err != nil {
				return err
			}
			if err := validateHazard(hazard); err != nil {
				return err
			}
			for i := range p.Hazards {
				if p.Hazards[i].ID == hazard.ID {
					p.Hazards[i] = hazard
					tx.touch(p)
					return nil
				}
			}
			return domain.ErrNotFound{Entity: domain.EntityHazard, ID: hazard.ID}
		})
	})
	if err != nil {
		return domain.Hazard{}, err
	}
	return hazard, nil
}

// DeleteHazard removes a hazard and prunes its id from every CCP of the plan
// in the same commit.
func (s *Service) DeleteHazard(ctx context.Context, planID, hazardID string) error {
	return s.run(ctx, "delete_hazard", func(ctx context.Context) (string, error) {
		return hazardID, s.mutate(ctx, func(tx *Transaction) error {
			p, err := tx.plan(planID)
			if err != nil {
				return err
			}
			idx := -1
			for i := range p.Hazards {
				if p.Hazards[i].ID == hazardID {
					idx = i
					break
				}
			}
			if idx < 0 {
				return domain.ErrNotFound{Entity: domain.EntityHazard, ID: hazardID}
			}
			p.Hazards = append(p.Hazards[:idx], p.Hazards[idx+1:]...)
			for i := range p.CriticalControlPoints {
				p.CriticalControlPoints[i].Hazards = removeString(p.CriticalControlPoints[i].Hazards, hazardID)
			}
			tx.touch(p)
			return nil
		})
	})
}

// AddCCPToPlan appends a CCP to the plan under a fresh id. Its hazard ids
// must exist in the plan.
func (s *Service) AddCCPToPlan(ctx context.Context, planID string, ccp domain.CriticalControlPoint) (domain.CriticalControlPoint, error) {
	var created domain.CriticalControlPoint
	err := s.run(ctx, "add_ccp", func(ctx context.Context) (string, error) {
		err := s.mutate(ctx, func(tx *Transaction) error {
			p, err := tx.plan(planID)
			if err != nil {
				return err
			}
			c := ccp.Clone()
			c.ID = tx.newID()
			if err := tx.prepareCCP(*p, &c); err != nil {
				return err
			}
			p.CriticalControlPoints = append(p.CriticalControlPoints, c)
			tx.touch(p)
			created = c.Clone()
			return nil
		})
		return created.ID, err
	})
	if err != nil {
		return domain.CriticalControlPoint{}, err
	}
	return created, nil
}

// UpdateCCP replaces the CCP with the same id inside the plan.
func (s *Service) UpdateCCP(ctx context.Context, planID string, ccp domain.CriticalControlPoint) (domain.CriticalControlPoint, error) {
	var updated domain.CriticalControlPoint
	err := s.run(ctx, "update_ccp", func(ctx context.Context) (string, error) {
		return ccp.ID, s.mutate(ctx, func(tx *Transaction) error {
			p, err := tx.plan(planID)
			if err != nil {
				return err
			}
			for i := range p.CriticalControlPoints {
				if p.CriticalControlPoints[i].ID != ccp.ID {
					continue
				}
				c := ccp.Clone()
				if err := tx.prepareCCP(*p, &c); err != nil {
					return err
				}
				p.CriticalControlPoints[i] = c
				tx.touch(p)
				updated = c.Clone()
				return nil
			}
			return domain.ErrNotFound{Entity: domain.EntityCCP, ID: ccp.ID}
		})
	})
	if err != nil {
		return domain.CriticalControlPoint{}, err
	}
	return updated, nil
}

// DeleteCCP removes a CCP from the plan. Logs referencing it are retained.
func (s *Service) DeleteCCP(ctx context.Context, planID, ccpID string) error {
	return s.run(ctx, "delete_ccp", func(ctx context.Context) (string, error) {
		return ccpID, s.mutate(ctx, func(tx *Transaction) error {
			p, err := tx.plan(planID)
			if err != nil {
				return err
			}
			for i := range p.CriticalControlPoints {
				if p.CriticalControlPoints[i].ID == ccpID {
					p.CriticalControlPoints = append(p.CriticalControlPoints[:i], p.CriticalControlPoints[i+1:]...)
					tx.touch(p)
					return nil
				}
			}
			return domain.ErrNotFound{Entity: domain.EntityCCP, ID: ccpID}
		})
	})
}

func validateHazard(h domain.Hazard) error {
	if strings.TrimSpace(h.Name) == "" {
		return domain.ErrInvalidInput{Field: "hazard.name", Reason: "required"}
	}
	if !h.Type.Valid() {
		return domain.ErrInvalidInput{Field: "hazard.type", Reason: "must be biological, chemical, physical or allergen"}
	}
	return nil
}

// prepareCCP collapses duplicate hazard and equipment ids, rejects references
// to hazards missing from plan or to unregistered equipment, and assigns ids
// to nested items that lack one.
func (tx *Transaction) prepareCCP(plan domain.HACCPPlan, c *domain.CriticalControlPoint) error {
	if strings.TrimSpace(c.Step) == "" {
		return domain.ErrInvalidInput{Field: "ccp.step", Reason: "required"}
	}
	refs := make([]string, 0, len(c.Hazards))
	seen := make(map[string]struct{}, len(c.Hazards))
	for _, ref := range c.Hazards {
		if _, dup := seen[ref]; dup {
			continue
		}
		if _, ok := plan.FindHazard(ref); !ok {
			return domain.ErrReferentialViolation{
				Entity:   domain.EntityCCP,
				ID:       c.ID,
				Ref:      domain.EntityHazard,
				RefID:    ref,
				Relation: "references",
			}
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}
	c.Hazards = refs

	if len(c.LinkedTemperatureEquipment) > 0 {
		linked := make([]string, 0, len(c.LinkedTemperatureEquipment))
		seenEq := make(map[string]struct{}, len(c.LinkedTemperatureEquipment))
		for _, ref := range c.LinkedTemperatureEquipment {
			if _, dup := seenEq[ref]; dup {
				continue
			}
			if equipmentIndex(&tx.state, ref) < 0 {
				return domain.ErrReferentialViolation{
					Entity:   domain.EntityCCP,
					ID:       c.ID,
					Ref:      domain.EntityEquipment,
					RefID:    ref,
					Relation: "monitors",
				}
			}
			seenEq[ref] = struct{}{}
			linked = append(linked, ref)
		}
		c.LinkedTemperatureEquipment = linked
	}

	for i := range c.CriticalLimits {
		l := &c.CriticalLimits[i]
		if strings.TrimSpace(l.Parameter) == "" {
			return domain.ErrInvalidInput{Field: "criticalLimits.parameter", Reason: "required"}
		}
		if l.Minimum != nil && l.Maximum != nil && *l.Minimum > *l.Maximum {
			return domain.ErrInvalidInput{Field: "criticalLimits", Reason: l.Parameter + " minimum exceeds maximum"}
		}
		if l.ID == "" {
			l.ID = tx.newID()
		}
	}
	for i := range c.ControlMeasures {
		if c.ControlMeasures[i].ID == "" {
			c.ControlMeasures[i].ID = tx.newID()
		}
	}
	for i := range c.MonitoringProcedures {
		if c.MonitoringProcedures[i].ID == "" {
			c.MonitoringProcedures[i].ID = tx.newID()
		}
	}
	for i := range c.CorrectiveActions {
		if c.CorrectiveActions[i].ID == "" {
			c.CorrectiveActions[i].ID = tx.newID()
		}
	}
	for i := range c.VerificationActivities {
		if c.VerificationActivities[i].ID == "" {
			c.VerificationActivities[i].ID = tx.newID()
		}
	}
	return nil
}

func removeString(in []string, target string) []string {
	out := in[:0]
	for _, v := range in {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}
