package core

import (
	"context"

	"haccpcore/pkg/domain"
)

// AlertFilter narrows ListAlerts.
type AlertFilter struct {
	UnreadOnly bool
	Type       domain.AlertType
}

// raiseAlert appends an unread alert to the transaction and returns it.
func (tx *Transaction) raiseAlert(kind domain.AlertType, title, message string, relatedType domain.EntityType, relatedID string) domain.Alert {
	alert := domain.Alert{
		ID:              tx.newID(),
		Title:           title,
		Message:         message,
		Type:            kind,
		Timestamp:       tx.now,
		RelatedItemID:   relatedID,
		RelatedItemType: relatedType,
	}
	tx.state.Alerts = append(tx.state.Alerts, alert)
	return alert
}

// ListAlerts returns alerts newest first.
func (s *Service) ListAlerts(_ context.Context, filter AlertFilter) []domain.Alert {
	var out []domain.Alert
	s.view(func(state *domain.Snapshot) {
		out = make([]domain.Alert, 0, len(state.Alerts))
		for i := len(state.Alerts) - 1; i >= 0; i-- {
			a := state.Alerts[i]
			if filter.UnreadOnly && a.Read {
				continue
			}
			if filter.Type != "" && a.Type != filter.Type {
				continue
			}
			out = append(out, a)
		}
	})
	return out
}

// MarkAlertRead acknowledges an alert. Marking a read alert again is a no-op.
func (s *Service) MarkAlertRead(ctx context.Context, id string) (domain.Alert, error) {
	var marked domain.Alert
	err := s.run(ctx, "mark_alert_read", func(ctx context.Context) (string, error) {
		return id, s.mutate(ctx, func(tx *Transaction) error {
			idx := alertIndex(&tx.state, id)
			if idx < 0 {
				return domain.ErrNotFound{Entity: domain.EntityAlert, ID: id}
			}
			tx.state.Alerts[idx].Read = true
			marked = tx.state.Alerts[idx]
			return nil
		})
	})
	if err != nil {
		return domain.Alert{}, err
	}
	return marked, nil
}

// ClearAlert removes an alert.
func (s *Service) ClearAlert(ctx context.Context, id string) error {
	return s.run(ctx, "clear_alert", func(ctx context.Context) (string, error) {
		return id, s.mutate(ctx, func(tx *Transaction) error {
			idx := alertIndex(&tx.state, id)
			if idx < 0 {
				return domain.ErrNotFound{Entity: domain.EntityAlert, ID: id}
			}
			tx.state.Alerts = append(tx.state.Alerts[:idx], tx.state.Alerts[idx+1:]...)
			return nil
		})
	})
}

func alertIndex(state *domain.Snapshot, id string) int {
	for i := range state.Alerts {
		if state.Alerts[i].ID == id {
			return i
		}
	}
	return -1
}
