package core

import (
	"context"
	"strings"

	"haccpcore/internal/templates"
	"haccpcore/pkg/domain"
)

// PlanFilter narrows ListPlans.
type PlanFilter struct {
	ActiveOnly bool
}

// CreatePlan stores a new plan with a fresh id and creation timestamps.
// Hazards and nested CCP items without ids are assigned one; CCP hazard
// references must point at hazards of the same plan.
func (s *Service) CreatePlan(ctx context.Context, plan domain.HACCPPlan) (domain.HACCPPlan, error) {
	var created domain.HACCPPlan
	err := s.run(ctx, "create_plan", func(ctx context.Context) (string, error) {
		err := s.mutate(ctx, func(tx *Transaction) error {
			p := plan.Clone()
			p.ID = tx.newID()
			if err := tx.preparePlan(&p); err != nil {
				return err
			}
			p.CreatedAt = tx.now
			p.UpdatedAt = tx.now
			tx.state.Plans = append(tx.state.Plans, p)
			created = p.Clone()
			return nil
		})
		return created.ID, err
	})
	if err != nil {
		return domain.HACCPPlan{}, err
	}
	return created, nil
}

// UpdatePlan replaces the stored plan with the same id. createdAt is kept and
// updatedAt is set to now regardless of the supplied value. An unknown id
// returns ErrNotFound and leaves the collection untouched.
func (s *Service) UpdatePlan(ctx context.Context, plan domain.HACCPPlan) (domain.HACCPPlan, error) {
	var updated domain.HACCPPlan
	err := s.run(ctx, "update_plan", func(ctx context.Context) (string, error) {
		return plan.ID, s.mutate(ctx, func(tx *Transaction) error {
			idx, err := tx.planIndex(plan.ID)
			if err != nil {
				return err
			}
			p := plan.Clone()
			if err := tx.preparePlan(&p); err != nil {
				return err
			}
			p.CreatedAt = tx.state.Plans[idx].CreatedAt
			tx.touch(&p)
			tx.state.Plans[idx] = p
			updated = p.Clone()
			return nil
		})
	})
	if err != nil {
		return domain.HACCPPlan{}, err
	}
	return updated, nil
}

// DeletePlan removes a plan with its hazards and CCPs. Monitoring and
// corrective-action logs that reference its CCPs are retained.
func (s *Service) DeletePlan(ctx context.Context, id string) error {
	return s.run(ctx, "delete_plan", func(ctx context.Context) (string, error) {
		return id, s.mutate(ctx, func(tx *Transaction) error {
			idx, err := tx.planIndex(id)
			if err != nil {
				return err
			}
			tx.state.Plans = append(tx.state.Plans[:idx], tx.state.Plans[idx+1:]...)
			return nil
		})
	})
}

// CreatePlanFromTemplate instantiates a template as a new active plan. Hazard
// and CCP ids are minted under the new plan id. An empty name falls back to
// the template name.
func (s *Service) CreatePlanFromTemplate(ctx context.Context, templateID, name string) (domain.HACCPPlan, error) {
	var created domain.HACCPPlan
	err := s.run(ctx, "create_plan_from_template", func(ctx context.Context) (string, error) {
		tpl, ok := s.templates.Find(templateID)
		if !ok {
			return "", domain.ErrNotFound{Entity: domain.EntityTemplate, ID: templateID}
		}
		err := s.mutate(ctx, func(tx *Transaction) error {
			plan, err := templates.Resolve(tpl, tx.newID())
			if err != nil {
				return err
			}
			if n := strings.TrimSpace(name); n != "" {
				plan.Name = n
			}
			plan.Active = true
			plan.CreatedAt = tx.now
			plan.UpdatedAt = tx.now
			tx.state.Plans = append(tx.state.Plans, plan)
			created = plan.Clone()
			return nil
		})
		return created.ID, err
	})
	if err != nil {
		return domain.HACCPPlan{}, err
	}
	return created, nil
}

// GetPlan returns the plan with the given id.
func (s *Service) GetPlan(_ context.Context, id string) (domain.HACCPPlan, error) {
	var (
		out   domain.HACCPPlan
		found bool
	)
	s.view(func(state *domain.Snapshot) {
		for _, p := range state.Plans {
			if p.ID == id {
				out, found = p.Clone(), true
				return
			}
		}
	})
	if !found {
		return domain.HACCPPlan{}, domain.ErrNotFound{Entity: domain.EntityPlan, ID: id}
	}
	return out, nil
}

// ListPlans returns plans in creation order.
func (s *Service) ListPlans(_ context.Context, filter PlanFilter) []domain.HACCPPlan {
	var out []domain.HACCPPlan
	s.view(func(state *domain.Snapshot) {
		out = make([]domain.HACCPPlan, 0, len(state.Plans))
		for _, p := range state.Plans {
			if filter.ActiveOnly && !p.Active {
				continue
			}
			out = append(out, p.Clone())
		}
	})
	return out
}

// FindCCP returns a CCP together with its owning plan.
func (s *Service) FindCCP(_ context.Context, ccpID string) (domain.HACCPPlan, domain.CriticalControlPoint, error) {
	var (
		plan domain.HACCPPlan
		ccp  domain.CriticalControlPoint
		ok   bool
	)
	s.view(func(state *domain.Snapshot) {
		var pi, ci int
		pi, ci, ok = findCCP(state, ccpID)
		if ok {
			plan = state.Plans[pi].Clone()
			ccp = plan.CriticalControlPoints[ci]
		}
	})
	if !ok {
		return domain.HACCPPlan{}, domain.CriticalControlPoint{}, domain.ErrNotFound{Entity: domain.EntityCCP, ID: ccpID}
	}
	return plan, ccp, nil
}

// preparePlan validates required fields, assigns missing nested ids and
// checks that every CCP hazard reference resolves inside the plan.
func (tx *Transaction) preparePlan(p *domain.HACCPPlan) error {
	if strings.TrimSpace(p.Name) == "" {
		return domain.ErrInvalidInput{Field: "name", Reason: "required"}
	}
	if strings.TrimSpace(p.Product) == "" {
		return domain.ErrInvalidInput{Field: "product", Reason: "required"}
	}
	seen := make(map[string]struct{}, len(p.Hazards))
	for i := range p.Hazards {
		h := &p.Hazards[i]
		if err := validateHazard(*h); err != nil {
			return err
		}
		if h.ID == "" {
			h.ID = tx.newID()
		}
		if _, dup := seen[h.ID]; dup {
			return domain.ErrInvalidInput{Field: "hazards", Reason: "duplicate id " + h.ID}
		}
		seen[h.ID] = struct{}{}
	}
	ccpIDs := make(map[string]struct{}, len(p.CriticalControlPoints))
	for i := range p.CriticalControlPoints {
		c := &p.CriticalControlPoints[i]
		if c.ID == "" {
			c.ID = tx.newID()
		}
		if _, dup := ccpIDs[c.ID]; dup {
			return domain.ErrInvalidInput{Field: "criticalControlPoints", Reason: "duplicate id " + c.ID}
		}
		ccpIDs[c.ID] = struct{}{}
		if pi, _, taken := findCCP(&tx.state, c.ID); taken && tx.state.Plans[pi].ID != p.ID {
			return domain.ErrInvalidInput{Field: "criticalControlPoints", Reason: "id " + c.ID + " belongs to another plan"}
		}
		if err := tx.prepareCCP(*p, c); err != nil {
			return err
		}
	}
	return nil
}
