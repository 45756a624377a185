package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"haccpcore/pkg/domain"
)

// DefaultCoolingWindow is the target cooling time when none is given.
const DefaultCoolingWindow = 4 * time.Hour

const coolingAlertTitle = "Cooling Alert"

// CoolingInput starts a cooling log. A zero StartTime means now and a zero
// TargetEndTime means StartTime plus DefaultCoolingWindow. CCPID, when set,
// must name a CCP linked to cooling processes.
type CoolingInput struct {
	FoodItem      string    `json:"foodItem"`
	CCPID         string    `json:"ccpId,omitempty"`
	StartTime     time.Time `json:"startTime,omitzero"`
	TargetEndTime time.Time `json:"targetEndTime,omitzero"`
	Notes         string    `json:"notes,omitempty"`
	StartedBy     string    `json:"startedBy,omitempty"`
}

// CoolingOutcome is the result of AddCoolingReading. Alert is set when the
// reading took the batch off track.
type CoolingOutcome struct {
	Log   domain.CoolingLog `json:"log"`
	Alert *domain.Alert     `json:"alert,omitempty"`
}

// CoolingFilter narrows ListCoolingLogs.
type CoolingFilter struct {
	ActiveOnly bool
	CCPID      string
}

// StartCoolingLog opens a cooling log with no readings.
func (s *Service) StartCoolingLog(ctx context.Context, in CoolingInput) (domain.CoolingLog, error) {
	var created domain.CoolingLog
	err := s.run(ctx, "start_cooling_log", func(ctx context.Context) (string, error) {
		err := s.mutate(ctx, func(tx *Transaction) error {
			if strings.TrimSpace(in.FoodItem) == "" {
				return domain.ErrInvalidInput{Field: "foodItem", Reason: "required"}
			}
			if in.CCPID != "" {
				_, ccp, err := tx.ccp(in.CCPID)
				if err != nil {
					return err
				}
				if !ccp.LinkedCoolingProcesses {
					return domain.ErrInvalidInput{Field: "ccpId", Reason: fmt.Sprintf("ccp %s is not linked to cooling processes", ccp.ID)}
				}
			}
			start := in.StartTime
			if start.IsZero() {
				start = tx.now
			}
			target := in.TargetEndTime
			if target.IsZero() {
				target = start.Add(DefaultCoolingWindow)
			}
			if !target.After(start) {
				return domain.ErrInvalidInput{Field: "targetEndTime", Reason: "must be after startTime"}
			}
			created = domain.CoolingLog{
				ID:            tx.newID(),
				FoodItem:      in.FoodItem,
				CCPID:         in.CCPID,
				StartTime:     start.UTC(),
				TargetEndTime: target.UTC(),
				Readings:      []domain.CoolingReading{},
				Notes:         in.Notes,
				StartedBy:     in.StartedBy,
			}
			tx.state.CoolingLogs = append(tx.state.CoolingLogs, created)
			created = created.Clone()
			return nil
		})
		return created.ID, err
	})
	if err != nil {
		return domain.CoolingLog{}, err
	}
	return created, nil
}

// AddCoolingReading appends a reading stamped now. Completed logs reject new
// readings. When the reading moves the batch off track a warning alert is
// raised in the same commit.
func (s *Service) AddCoolingReading(ctx context.Context, logID string, temperature float64) (CoolingOutcome, error) {
	var outcome CoolingOutcome
	err := s.run(ctx, "add_cooling_reading", func(ctx context.Context) (string, error) {
		return logID, s.mutate(ctx, func(tx *Transaction) error {
			idx := coolingIndex(&tx.state, logID)
			if idx < 0 {
				return domain.ErrNotFound{Entity: domain.EntityCoolingLog, ID: logID}
			}
			log := &tx.state.CoolingLogs[idx]
			if log.Completed {
				return domain.ErrInvalidInput{Field: "cooling log", Reason: "already completed"}
			}
			wasOnTrack := log.OnTrack()
			log.Readings = append(log.Readings, domain.CoolingReading{Temperature: temperature, Timestamp: tx.now})
			outcome = CoolingOutcome{Log: log.Clone()}
			if wasOnTrack && !log.OnTrack() {
				alert := tx.raiseAlert(domain.AlertWarning, coolingAlertTitle,
					fmt.Sprintf("%s cooling may not be progressing as expected (%s)", log.FoodItem, domain.FormatTemperature(temperature)),
					domain.EntityCoolingLog, log.ID)
				outcome.Alert = &alert
			}
			return nil
		})
	})
	if err != nil {
		return CoolingOutcome{}, err
	}
	if outcome.Alert != nil {
		s.logger.Warn("cooling off track", "cooling_log_id", logID, "alert_id", outcome.Alert.ID)
	}
	return outcome, nil
}

// CompleteCoolingLog closes a cooling log. Completion is one-way; completing
// again keeps the original completion time.
func (s *Service) CompleteCoolingLog(ctx context.Context, logID string) (domain.CoolingLog, error) {
	var completed domain.CoolingLog
	err := s.run(ctx, "complete_cooling_log", func(ctx context.Context) (string, error) {
		return logID, s.mutate(ctx, func(tx *Transaction) error {
			idx := coolingIndex(&tx.state, logID)
			if idx < 0 {
				return domain.ErrNotFound{Entity: domain.EntityCoolingLog, ID: logID}
			}
			log := &tx.state.CoolingLogs[idx]
			if !log.Completed {
				now := tx.now
				log.Completed = true
				log.CompletedAt = &now
			}
			completed = log.Clone()
			return nil
		})
	})
	if err != nil {
		return domain.CoolingLog{}, err
	}
	return completed, nil
}

// GetCoolingLog returns the cooling log with the given id.
func (s *Service) GetCoolingLog(_ context.Context, id string) (domain.CoolingLog, error) {
	var (
		out   domain.CoolingLog
		found bool
	)
	s.view(func(state *domain.Snapshot) {
		if idx := coolingIndex(state, id); idx >= 0 {
			out, found = state.CoolingLogs[idx].Clone(), true
		}
	})
	if !found {
		return domain.CoolingLog{}, domain.ErrNotFound{Entity: domain.EntityCoolingLog, ID: id}
	}
	return out, nil
}

// ListCoolingLogs returns cooling logs in the order they were started.
func (s *Service) ListCoolingLogs(_ context.Context, filter CoolingFilter) []domain.CoolingLog {
	var out []domain.CoolingLog
	s.view(func(state *domain.Snapshot) {
		out = make([]domain.CoolingLog, 0, len(state.CoolingLogs))
		for _, l := range state.CoolingLogs {
			if filter.ActiveOnly && l.Completed {
				continue
			}
			if filter.CCPID != "" && l.CCPID != filter.CCPID {
				continue
			}
			out = append(out, l.Clone())
		}
	})
	return out
}

func coolingIndex(state *domain.Snapshot, id string) int {
	for i := range state.CoolingLogs {
		if state.CoolingLogs[i].ID == id {
			return i
		}
	}
	return -1
}
