package core

import (
	"context"
	"strings"
	"time"

	"haccpcore/pkg/domain"
)

// ChecklistInput creates a checklist dated now. Items start unticked.
type ChecklistInput struct {
	Name  string               `json:"name"`
	Type  domain.ChecklistType `json:"type"`
	Items []string             `json:"items"`
}

// ChecklistItemUpdate ticks or unticks an item.
type ChecklistItemUpdate struct {
	Completed   bool   `json:"isCompleted"`
	CompletedBy string `json:"completedBy,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// ChecklistFilter narrows ListChecklists. On selects checklists dated on the
// same calendar day.
type ChecklistFilter struct {
	Type domain.ChecklistType
	On   time.Time
}

// AddChecklist stores a new checklist. Empty item texts are skipped.
func (s *Service) AddChecklist(ctx context.Context, in ChecklistInput) (domain.Checklist, error) {
	var created domain.Checklist
	err := s.run(ctx, "add_checklist", func(ctx context.Context) (string, error) {
		err := s.mutate(ctx, func(tx *Transaction) error {
			if strings.TrimSpace(in.Name) == "" {
				return domain.ErrInvalidInput{Field: "checklist.name", Reason: "required"}
			}
			if !in.Type.Valid() {
				return domain.ErrInvalidInput{Field: "checklist.type", Reason: "must be opening, closing or critical"}
			}
			c := domain.Checklist{
				ID:    tx.newID(),
				Name:  in.Name,
				Type:  in.Type,
				Date:  tx.now,
				Items: []domain.ChecklistItem{},
			}
			for _, text := range in.Items {
				if strings.TrimSpace(text) == "" {
					continue
				}
				c.Items = append(c.Items, domain.ChecklistItem{ID: tx.newID(), Text: text})
			}
			tx.state.Checklists = append(tx.state.Checklists, c)
			created = c.Clone()
			return nil
		})
		return created.ID, err
	})
	if err != nil {
		return domain.Checklist{}, err
	}
	return created, nil
}

// AddChecklistItem appends an unticked item, which reopens a completed
// checklist.
func (s *Service) AddChecklistItem(ctx context.Context, checklistID, text string) (domain.Checklist, error) {
	var updated domain.Checklist
	err := s.run(ctx, "add_checklist_item", func(ctx context.Context) (string, error) {
		return checklistID, s.mutate(ctx, func(tx *Transaction) error {
			if strings.TrimSpace(text) == "" {
				return domain.ErrInvalidInput{Field: "item.text", Reason: "required"}
			}
			c, err := tx.checklist(checklistID)
			if err != nil {
				return err
			}
			c.Items = append(c.Items, domain.ChecklistItem{ID: tx.newID(), Text: text})
			c.Completed = c.AllItemsCompleted()
			updated = c.Clone()
			return nil
		})
	})
	if err != nil {
		return domain.Checklist{}, err
	}
	return updated, nil
}

// UpdateChecklistItem ticks or unticks one item and recomputes whether the
// checklist is complete. Ticking stamps the time and author; unticking
// clears them.
func (s *Service) UpdateChecklistItem(ctx context.Context, checklistID, itemID string, upd ChecklistItemUpdate) (domain.Checklist, error) {
	var updated domain.Checklist
	err := s.run(ctx, "update_checklist_item", func(ctx context.Context) (string, error) {
		return itemID, s.mutate(ctx, func(tx *Transaction) error {
			c, err := tx.checklist(checklistID)
			if err != nil {
				return err
			}
			for i := range c.Items {
				it := &c.Items[i]
				if it.ID != itemID {
					continue
				}
				it.Completed = upd.Completed
				it.Notes = upd.Notes
				if upd.Completed {
					now := tx.now
					it.CompletedAt = &now
					it.CompletedBy = upd.CompletedBy
				} else {
					it.CompletedAt = nil
					it.CompletedBy = ""
				}
				c.Completed = c.AllItemsCompleted()
				updated = c.Clone()
				return nil
			}
			return domain.ErrNotFound{Entity: domain.EntityChecklistItem, ID: itemID}
		})
	})
	if err != nil {
		return domain.Checklist{}, err
	}
	return updated, nil
}

// GetChecklist returns the checklist with the given id.
func (s *Service) GetChecklist(_ context.Context, id string) (domain.Checklist, error) {
	var (
		out   domain.Checklist
		found bool
	)
	s.view(func(state *domain.Snapshot) {
		if idx := checklistIndex(state, id); idx >= 0 {
			out, found = state.Checklists[idx].Clone(), true
		}
	})
	if !found {
		return domain.Checklist{}, domain.ErrNotFound{Entity: domain.EntityChecklist, ID: id}
	}
	return out, nil
}

// ListChecklists returns checklists in creation order.
func (s *Service) ListChecklists(_ context.Context, filter ChecklistFilter) []domain.Checklist {
	var out []domain.Checklist
	s.view(func(state *domain.Snapshot) {
		out = make([]domain.Checklist, 0, len(state.Checklists))
		for _, c := range state.Checklists {
			if filter.Type != "" && c.Type != filter.Type {
				continue
			}
			if !filter.On.IsZero() && !sameDay(c.Date, filter.On) {
				continue
			}
			out = append(out, c.Clone())
		}
	})
	return out
}

func (tx *Transaction) checklist(id string) (*domain.Checklist, error) {
	idx := checklistIndex(&tx.state, id)
	if idx < 0 {
		return nil, domain.ErrNotFound{Entity: domain.EntityChecklist, ID: id}
	}
	return &tx.state.Checklists[idx], nil
}

func checklistIndex(state *domain.Snapshot, id string) int {
	for i := range state.Checklists {
		if state.Checklists[i].ID == id {
			return i
		}
	}
	return -1
}

// sameDay compares calendar days in UTC.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
