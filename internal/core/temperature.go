package core

import (
	"context"
	"strings"
	"time"

	"haccpcore/pkg/domain"
)

// TemperatureInput is one equipment temperature check.
type TemperatureInput struct {
	EquipmentID string  `json:"equipmentId"`
	Temperature float64 `json:"temperature"`
	Notes       string  `json:"notes,omitempty"`
	RecordedBy  string  `json:"recordedBy,omitempty"`
}

// TemperatureOutcome is the result of AddTemperatureLog. Alert is set when
// the reading was out of range.
type TemperatureOutcome struct {
	Log   domain.TemperatureLog `json:"log"`
	Alert *domain.Alert         `json:"alert,omitempty"`
}

// TemperatureFilter narrows ListTemperatureLogs. Zero values match everything.
type TemperatureFilter struct {
	EquipmentID    string
	OutOfRangeOnly bool
	Since          time.Time
	Until          time.Time
}

const temperatureAlertTitle = "Temperature Alert"

// AddEquipment registers a cooler or freezer with a fresh id.
func (s *Service) AddEquipment(ctx context.Context, eq domain.Equipment) (domain.Equipment, error) {
	var created domain.Equipment
	err := s.run(ctx, "add_equipment", func(ctx context.Context) (string, error) {
		err := s.mutate(ctx, func(tx *Transaction) error {
			if err := validateEquipment(eq); err != nil {
				return err
			}
			created = eq
			created.ID = tx.newID()
			tx.state.Equipment = append(tx.state.Equipment, created)
			return nil
		})
		return created.ID, err
	})
	if err != nil {
		return domain.Equipment{}, err
	}
	return created, nil
}

// UpdateEquipment replaces the equipment with the same id. Existing logs keep
// the range verdict they were recorded with.
func (s *Service) UpdateEquipment(ctx context.Context, eq domain.Equipment) (domain.Equipment, error) {
	err := s.run(ctx, "update_equipment", func(ctx context.Context) (string, error) {
		return eq.ID, s.mutate(ctx, func(tx *Transaction) error {
			idx := equipmentIndex(&tx.state, eq.ID)
			if idx < 0 {
				return domain.ErrNotFound{Entity: domain.EntityEquipment, ID: eq.ID}
			}
			if err := validateEquipment(eq); err != nil {
				return err
			}
			tx.state.Equipment[idx] = eq
			return nil
		})
	})
	if err != nil {
		return domain.Equipment{}, err
	}
	return eq, nil
}

// DeleteEquipment removes equipment and unlinks it from every CCP that
// monitors it. Temperature logs are retained.
func (s *Service) DeleteEquipment(ctx context.Context, id string) error {
	return s.run(ctx, "delete_equipment", func(ctx context.Context) (string, error) {
		return id, s.mutate(ctx, func(tx *Transaction) error {
			idx := equipmentIndex(&tx.state, id)
			if idx < 0 {
				return domain.ErrNotFound{Entity: domain.EntityEquipment, ID: id}
			}
			tx.state.Equipment = append(tx.state.Equipment[:idx], tx.state.Equipment[idx+1:]...)
			for pi := range tx.state.Plans {
				p := &tx.state.Plans[pi]
				changed := false
				for ci := range p.CriticalControlPoints {
					c := &p.CriticalControlPoints[ci]
					before := len(c.LinkedTemperatureEquipment)
					c.LinkedTemperatureEquipment = removeString(c.LinkedTemperatureEquipment, id)
					changed = changed || len(c.LinkedTemperatureEquipment) != before
				}
				if changed {
					tx.touch(p)
				}
			}
			return nil
		})
	})
}

// GetEquipment returns the equipment with the given id.
func (s *Service) GetEquipment(_ context.Context, id string) (domain.Equipment, error) {
	var (
		out   domain.Equipment
		found bool
	)
	s.view(func(state *domain.Snapshot) {
		if idx := equipmentIndex(state, id); idx >= 0 {
			out, found = state.Equipment[idx], true
		}
	})
	if !found {
		return domain.Equipment{}, domain.ErrNotFound{Entity: domain.EntityEquipment, ID: id}
	}
	return out, nil
}

// ListEquipment returns equipment in registration order.
func (s *Service) ListEquipment(_ context.Context) []domain.Equipment {
	var out []domain.Equipment
	s.view(func(state *domain.Snapshot) {
		out = append([]domain.Equipment{}, state.Equipment...)
	})
	return out
}

// AddTemperatureLog records a reading and computes whether it lies in the
// equipment's safe range. An out-of-range reading raises a danger alert in
// the same commit.
func (s *Service) AddTemperatureLog(ctx context.Context, in TemperatureInput) (TemperatureOutcome, error) {
	var outcome TemperatureOutcome
	err := s.run(ctx, "add_temperature_log", func(ctx context.Context) (string, error) {
		err := s.mutate(ctx, func(tx *Transaction) error {
			idx := equipmentIndex(&tx.state, in.EquipmentID)
			if idx < 0 {
				return domain.ErrNotFound{Entity: domain.EntityEquipment, ID: in.EquipmentID}
			}
			eq := tx.state.Equipment[idx]
			log := domain.TemperatureLog{
				ID:          tx.newID(),
				EquipmentID: eq.ID,
				Temperature: in.Temperature,
				Timestamp:   tx.now,
				WithinRange: eq.Within(in.Temperature),
				Notes:       in.Notes,
				RecordedBy:  in.RecordedBy,
			}
			tx.state.TemperatureLogs = append(tx.state.TemperatureLogs, log)
			outcome = TemperatureOutcome{Log: log}
			if !log.WithinRange {
				alert := tx.raiseAlert(domain.AlertDanger, temperatureAlertTitle,
					domain.TemperatureAlertMessage(eq, in.Temperature), domain.EntityTemperatureLog, log.ID)
				outcome.Alert = &alert
			}
			return nil
		})
		return outcome.Log.ID, err
	})
	if err != nil {
		return TemperatureOutcome{}, err
	}
	if outcome.Alert != nil {
		s.logger.Warn("temperature out of range",
			"equipment_id", outcome.Log.EquipmentID,
			"temperature_log_id", outcome.Log.ID,
			"alert_id", outcome.Alert.ID,
			"message", outcome.Alert.Message)
	}
	return outcome, nil
}

// ListTemperatureLogs returns readings in the order they were recorded.
func (s *Service) ListTemperatureLogs(_ context.Context, filter TemperatureFilter) []domain.TemperatureLog {
	var out []domain.TemperatureLog
	s.view(func(state *domain.Snapshot) {
		out = make([]domain.TemperatureLog, 0, len(state.TemperatureLogs))
		for _, l := range state.TemperatureLogs {
			if filter.EquipmentID != "" && l.EquipmentID != filter.EquipmentID {
				continue
			}
			if filter.OutOfRangeOnly && l.WithinRange {
				continue
			}
			if !inWindow(l.Timestamp, filter.Since, filter.Until) {
				continue
			}
			out = append(out, l)
		}
	})
	return out
}

func validateEquipment(eq domain.Equipment) error {
	if strings.TrimSpace(eq.Name) == "" {
		return domain.ErrInvalidInput{Field: "equipment.name", Reason: "required"}
	}
	if !eq.Type.Valid() {
		return domain.ErrInvalidInput{Field: "equipment.type", Reason: "must be cooler or freezer"}
	}
	if eq.MinTemp > eq.MaxTemp {
		return domain.ErrInvalidInput{Field: "equipment.minTemp", Reason: "exceeds maxTemp"}
	}
	return nil
}

func equipmentIndex(state *domain.Snapshot, id string) int {
	for i := range state.Equipment {
		if state.Equipment[i].ID == id {
			return i
		}
	}
	return -1
}
