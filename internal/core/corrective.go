package core

import (
	"context"
	"strings"

	"haccpcore/pkg/domain"
)

// CorrectiveActionInput describes a manually recorded corrective action.
type CorrectiveActionInput struct {
	CCPID               string `json:"ccpId"`
	MonitoringLogID     string `json:"monitoringLogId,omitempty"`
	Description         string `json:"description"`
	ActionTaken         string `json:"actionTaken"`
	TakenBy             string `json:"takenBy"`
	FollowUpRequired    bool   `json:"followUpRequired"`
	FollowUpDescription string `json:"followUpDescription,omitempty"`
}

// CorrectiveStatusFilter selects corrective actions by verification state.
type CorrectiveStatusFilter string

// Status filters accepted by ListCorrectiveActions.
const (
	CorrectiveAll      CorrectiveStatusFilter = "all"
	CorrectivePending  CorrectiveStatusFilter = "pending"
	CorrectiveVerified CorrectiveStatusFilter = "verified"
	// CorrectiveOpen matches records that are not yet closed.
	CorrectiveOpen CorrectiveStatusFilter = "open"
)

// CorrectiveFilter narrows ListCorrectiveActions. Zero values match everything.
type CorrectiveFilter struct {
	PlanID string
	CCPID  string
	Status CorrectiveStatusFilter
}

func (f CorrectiveFilter) match(l domain.CorrectiveActionLog) bool {
	if f.CCPID != "" && l.CCPID != f.CCPID {
		return false
	}
	switch f.Status {
	case CorrectivePending:
		return !l.Verified
	case CorrectiveVerified:
		return l.Verified
	case CorrectiveOpen:
		return !l.Closed()
	}
	return true
}

// AddCorrectiveActionLog records a corrective action against an existing CCP.
// A referenced monitoring log must exist and belong to the same CCP.
func (s *Service) AddCorrectiveActionLog(ctx context.Context, in CorrectiveActionInput) (domain.CorrectiveActionLog, error) {
	var created domain.CorrectiveActionLog
	err := s.run(ctx, "add_corrective_action", func(ctx context.Context) (string, error) {
		err := s.mutate(ctx, func(tx *Transaction) error {
			if strings.TrimSpace(in.Description) == "" {
				return domain.ErrInvalidInput{Field: "description", Reason: "required"}
			}
			if _, _, err := tx.ccp(in.CCPID); err != nil {
				return err
			}
			if in.MonitoringLogID != "" {
				idx := monitoringIndex(&tx.state, in.MonitoringLogID)
				if idx < 0 {
					return domain.ErrNotFound{Entity: domain.EntityMonitoringLog, ID: in.MonitoringLogID}
				}
				if owner := tx.state.MonitoringLogs[idx].CCPID; owner != in.CCPID {
					return domain.ErrInvalidInput{Field: "monitoringLogId", Reason: "log belongs to ccp " + owner}
				}
			}
			created = domain.CorrectiveActionLog{
				ID:                  tx.newID(),
				CCPID:               in.CCPID,
				MonitoringLogID:     in.MonitoringLogID,
				Timestamp:           tx.now,
				Description:         in.Description,
				ActionTaken:         in.ActionTaken,
				TakenBy:             in.TakenBy,
				FollowUpRequired:    in.FollowUpRequired,
				FollowUpDescription: in.FollowUpDescription,
			}
			tx.state.CorrectiveActionLogs = append(tx.state.CorrectiveActionLogs, created)
			return nil
		})
		return created.ID, err
	})
	if err != nil {
		return domain.CorrectiveActionLog{}, err
	}
	return created.Clone(), nil
}

// VerifyCorrectiveAction marks a corrective action verified. It does not
// depend on follow-up state; a repeated call keeps the first attribution.
func (s *Service) VerifyCorrectiveAction(ctx context.Context, logID, verifiedBy string) (domain.CorrectiveActionLog, error) {
	return s.transitionCorrective(ctx, "verify_corrective_action", logID, verifiedBy, func(l *domain.CorrectiveActionLog, tx *Transaction) {
		if l.Verified {
			return
		}
		now := tx.now
		l.Verified = true
		l.VerifiedBy = verifiedBy
		l.VerifiedAt = &now
	})
}

// CompleteFollowUp marks the follow-up of a corrective action completed. A
// non-empty description replaces the stored follow-up description. A repeated
// call keeps the first completer and time.
func (s *Service) CompleteFollowUp(ctx context.Context, logID, completedBy, description string) (domain.CorrectiveActionLog, error) {
	return s.transitionCorrective(ctx, "complete_follow_up", logID, completedBy, func(l *domain.CorrectiveActionLog, tx *Transaction) {
		if description != "" {
			l.FollowUpDescription = description
		}
		if l.FollowUpCompleted {
			return
		}
		now := tx.now
		l.FollowUpCompleted = true
		l.FollowUpCompletedBy = completedBy
		l.FollowUpCompletedAt = &now
	})
}

func (s *Service) transitionCorrective(ctx context.Context, operation, logID, actor string, apply func(*domain.CorrectiveActionLog, *Transaction)) (domain.CorrectiveActionLog, error) {
	var out domain.CorrectiveActionLog
	err := s.run(ctx, operation, func(ctx context.Context) (string, error) {
		return logID, s.mutate(ctx, func(tx *Transaction) error {
			if strings.TrimSpace(actor) == "" {
				return domain.ErrInvalidInput{Field: "actor", Reason: "required"}
			}
			idx := correctiveIndex(&tx.state, logID)
			if idx < 0 {
				return domain.ErrNotFound{Entity: domain.EntityCorrectiveAction, ID: logID}
			}
			l := &tx.state.CorrectiveActionLogs[idx]
			apply(l, tx)
			out = l.Clone()
			return nil
		})
	})
	if err != nil {
		return domain.CorrectiveActionLog{}, err
	}
	return out, nil
}

// GetCorrectiveAction returns the corrective action with the given id.
func (s *Service) GetCorrectiveAction(_ context.Context, id string) (domain.CorrectiveActionLog, error) {
	var (
		out   domain.CorrectiveActionLog
		found bool
	)
	s.view(func(state *domain.Snapshot) {
		if idx := correctiveIndex(state, id); idx >= 0 {
			out, found = state.CorrectiveActionLogs[idx].Clone(), true
		}
	})
	if !found {
		return domain.CorrectiveActionLog{}, domain.ErrNotFound{Entity: domain.EntityCorrectiveAction, ID: id}
	}
	return out, nil
}

// ListCorrectiveActions returns corrective actions in the order they were raised.
func (s *Service) ListCorrectiveActions(_ context.Context, filter CorrectiveFilter) []domain.CorrectiveActionLog {
	var out []domain.CorrectiveActionLog
	s.view(func(state *domain.Snapshot) {
		ccps := planCCPSet(state, filter.PlanID)
		out = make([]domain.CorrectiveActionLog, 0, len(state.CorrectiveActionLogs))
		for _, l := range state.CorrectiveActionLogs {
			if ccps != nil {
				if _, ok := ccps[l.CCPID]; !ok {
					continue
				}
			}
			if !filter.match(l) {
				continue
			}
			out = append(out, l.Clone())
		}
	})
	return out
}
