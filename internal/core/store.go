package core

import (
	"context"
	"fmt"
	"time"

	"haccpcore/pkg/domain"
)

// Transaction is a mutable copy of the service state. Changes become visible
// only when the enclosing mutate call returns without error.
type Transaction struct {
	state domain.Snapshot
	now   time.Time
	newID func() string
}

// mutate runs fn against a cloned snapshot, writes the result through the
// store and only then commits it. A failed save discards the transaction, so
// an operation that returns an error never changes state. Writes are
// serialised by the service lock so the store observes snapshots in commit
// order.
func (s *Service) mutate(ctx context.Context, fn func(tx *Transaction) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Transaction{
		state: s.state.Clone(),
		now:   s.clock.Now(),
		newID: s.newID,
	}
	if err := fn(tx); err != nil {
		return err
	}
	if s.store != nil {
		if err := s.store.Save(ctx, tx.state); err != nil {
			return fmt.Errorf("persist snapshot: %w", err)
		}
	}
	s.state = tx.state
	return nil
}

// view runs fn against the committed state under a read lock. fn must not
// retain or mutate the snapshot.
func (s *Service) view(fn func(state *domain.Snapshot)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.state)
}

func (tx *Transaction) planIndex(id string) (int, error) {
	for i := range tx.state.Plans {
		if tx.state.Plans[i].ID == id {
			return i, nil
		}
	}
	return -1, domain.ErrNotFound{Entity: domain.EntityPlan, ID: id}
}

func (tx *Transaction) plan(id string) (*domain.HACCPPlan, error) {
	idx, err := tx.planIndex(id)
	if err != nil {
		return nil, err
	}
	return &tx.state.Plans[idx], nil
}

// touch advances updatedAt, never letting it fall behind createdAt.
func (tx *Transaction) touch(p *domain.HACCPPlan) {
	p.UpdatedAt = tx.now
	if p.UpdatedAt.Before(p.CreatedAt) {
		p.UpdatedAt = p.CreatedAt
	}
}

// findCCP locates a CCP across all plans.
func findCCP(state *domain.Snapshot, ccpID string) (planIdx, ccpIdx int, ok bool) {
	if ccpID == "" {
		return -1, -1, false
	}
	for pi := range state.Plans {
		for ci := range state.Plans[pi].CriticalControlPoints {
			if state.Plans[pi].CriticalControlPoints[ci].ID == ccpID {
				return pi, ci, true
			}
		}
	}
	return -1, -1, false
}

func (tx *Transaction) ccp(ccpID string) (domain.HACCPPlan, domain.CriticalControlPoint, error) {
	pi, ci, ok := findCCP(&tx.state, ccpID)
	if !ok {
		return domain.HACCPPlan{}, domain.CriticalControlPoint{}, domain.ErrNotFound{Entity: domain.EntityCCP, ID: ccpID}
	}
	plan := tx.state.Plans[pi]
	return plan, plan.CriticalControlPoints[ci], nil
}

func monitoringIndex(state *domain.Snapshot, id string) int {
	for i := range state.MonitoringLogs {
		if state.MonitoringLogs[i].ID == id {
			return i
		}
	}
	return -1
}

func correctiveIndex(state *domain.Snapshot, id string) int {
	for i := range state.CorrectiveActionLogs {
		if state.CorrectiveActionLogs[i].ID == id {
			return i
		}
	}
	return -1
}
